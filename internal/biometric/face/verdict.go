package face

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"biometric-attendance/backend/internal/biometric"
)

// recognizerOutput is the JSON line a recognizer prints last.
type recognizerOutput struct {
	Status     string               `json:"status"`
	StudentID  biometric.FlexibleID `json:"student_id"`
	Confidence *float64             `json:"confidence"`
	Message    string               `json:"message"`
}

// parseVerdict reads the last non-empty line of out as the recognizer's JSON answer.
// Earlier lines (model loading chatter) are ignored.
func parseVerdict(out []byte) (Verdict, error) {
	line := lastLine(out)
	if line == "" {
		return Verdict{}, fmt.Errorf("%w: recognizer printed nothing", ErrRecognitionFailed)
	}
	var o recognizerOutput
	if err := json.Unmarshal([]byte(line), &o); err != nil {
		return Verdict{}, fmt.Errorf("%w: unparseable recognizer output %q", ErrRecognitionFailed, truncate(line, 120))
	}
	if !strings.EqualFold(o.Status, "success") {
		msg := o.Message
		if msg == "" {
			msg = "status " + o.Status
		}
		return Verdict{}, fmt.Errorf("%w: %s", ErrRecognitionFailed, msg)
	}
	if o.StudentID == "" {
		return Verdict{}, fmt.Errorf("%w: success without student_id", ErrRecognitionFailed)
	}
	return Verdict{StudentID: o.StudentID.String(), Confidence: o.Confidence}, nil
}

func lastLine(out []byte) string {
	lines := bytes.Split(out, []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(string(lines[i])); l != "" {
			return l
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
