package face

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const defaultRecognizerTimeout = 10 * time.Second

// ExecRecognizer runs an external recognizer program as Command Args... imagePath and parses its stdout.
type ExecRecognizer struct {
	Command string
	Args    []string
	// Env is appended to the current environment.
	Env     []string
	Timeout time.Duration
}

// Recognize implements Recognizer. A timeout, non-zero exit or unusable output yields ErrRecognitionFailed.
func (r *ExecRecognizer) Recognize(ctx context.Context, imagePath string) (Verdict, error) {
	if r.Command == "" {
		return Verdict{}, fmt.Errorf("%w: recognizer command not configured", ErrRecognitionFailed)
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultRecognizerTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := make([]string, 0, len(r.Args)+1)
	args = append(args, r.Args...)
	args = append(args, imagePath)
	cmd := exec.CommandContext(ctx, r.Command, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Verdict{}, fmt.Errorf("%w: recognizer timed out after %s", ErrRecognitionFailed, timeout)
	}
	if err != nil {
		// Recognizers often print a JSON error line before exiting non-zero.
		if lastLine(stdout.Bytes()) != "" {
			if _, perr := parseVerdict(stdout.Bytes()); perr != nil {
				return Verdict{}, perr
			}
		}
		return Verdict{}, fmt.Errorf("%w: %v: %s", ErrRecognitionFailed, err, truncate(lastLine(stderr.Bytes()), 200))
	}
	return parseVerdict(stdout.Bytes())
}
