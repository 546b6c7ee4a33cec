// Package face prepares captured face images and asks a recognizer who is in them.
package face

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
)

// DefaultMaxImageBytes caps a single captured image (5 MB).
const DefaultMaxImageBytes = 5 << 20

var (
	// ErrInvalidImage means the upload is empty, too large, or not a jpeg, png or webp image.
	ErrInvalidImage = errors.New("face: invalid image")
	// ErrRecognitionFailed means the recognizer could not name a student. Transient; the caller may retry.
	ErrRecognitionFailed = errors.New("face: recognition failed")
)

// Image is one captured image as uploaded.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Verdict is the recognizer's answer for one image.
type Verdict struct {
	StudentID  string
	Confidence *float64
}

// Recognizer identifies the student in the image stored at imagePath.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (Verdict, error)
}

// Matcher validates, normalizes and stages a captured image for a Recognizer.
type Matcher struct {
	recognizer Recognizer
	maxBytes   int64
	tempDir    string
}

// NewMatcher returns a matcher. maxBytes <= 0 uses DefaultMaxImageBytes; empty tempDir uses os.TempDir.
func NewMatcher(recognizer Recognizer, maxBytes int64, tempDir string) *Matcher {
	if maxBytes <= 0 || maxBytes > DefaultMaxImageBytes {
		maxBytes = DefaultMaxImageBytes
	}
	return &Matcher{recognizer: recognizer, maxBytes: maxBytes, tempDir: tempDir}
}

// Match identifies the student in img. The image is rejected with ErrInvalidImage before the recognizer
// runs; the staged temp file is removed on every return path.
func (m *Matcher) Match(ctx context.Context, img Image) (Verdict, error) {
	if len(img.Data) == 0 {
		return Verdict{}, fmt.Errorf("%w: empty upload", ErrInvalidImage)
	}
	if int64(len(img.Data)) > m.maxBytes {
		return Verdict{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrInvalidImage, len(img.Data), m.maxBytes)
	}
	decoded, err := decode(img.Data)
	if err != nil {
		return Verdict{}, err
	}

	f, err := os.CreateTemp(m.tempDir, "face-*.jpg")
	if err != nil {
		return Verdict{}, fmt.Errorf("face: create temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Printf("face: remove temp image %s: %v", path, rmErr)
		}
	}()
	if err := encodeNormalized(f, decoded); err != nil {
		_ = f.Close()
		return Verdict{}, fmt.Errorf("face: stage image: %w", err)
	}
	if err := f.Close(); err != nil {
		return Verdict{}, fmt.Errorf("face: stage image: %w", err)
	}

	v, err := m.recognizer.Recognize(ctx, path)
	if err != nil {
		if errors.Is(err, ErrRecognitionFailed) {
			return Verdict{}, err
		}
		return Verdict{}, fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	if v.StudentID == "" {
		return Verdict{}, fmt.Errorf("%w: no student in verdict", ErrRecognitionFailed)
	}
	return v, nil
}
