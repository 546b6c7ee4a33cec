// Package rbac holds request-level authorization guards shared by the HTTP handlers.
package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"biometric-attendance/backend/internal/server/middleware"
)

var (
	// ErrUnauthenticated means no lecturer is attached to the request context.
	ErrUnauthenticated = errors.New("lecturer context required")
	// ErrNotCourseOwner means the lecturer is not assigned to the course.
	ErrNotCourseOwner = errors.New("lecturer is not assigned to this course")
)

// CourseOwnershipChecker answers whether a lecturer owns a course. Unknown courses are false.
type CourseOwnershipChecker interface {
	LecturerOwnsCourse(ctx context.Context, lecturerID, courseID string) (bool, error)
}

// RequireCourseOwner ensures the caller is authenticated and assigned to courseID.
// Returns the lecturer id on success. Checker failures are returned wrapped, not as ErrNotCourseOwner.
func RequireCourseOwner(ctx context.Context, checker CourseOwnershipChecker, courseID string) (string, error) {
	lecturerID, ok := middleware.GetLecturerID(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return "", ErrNotCourseOwner
	}
	owns, err := checker.LecturerOwnsCourse(ctx, lecturerID, courseID)
	if err != nil {
		return "", fmt.Errorf("resolve course ownership: %w", err)
	}
	if !owns {
		return "", ErrNotCourseOwner
	}
	return lecturerID, nil
}
