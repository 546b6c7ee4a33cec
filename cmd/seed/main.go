// seed inserts development sample data for local testing: one lecturer, one course with its cohort,
// and students enrolled for fingerprint and face check-in. Prints a bearer token for the lecturer.
// Idempotent: skips inserts if the dev lecturer already exists.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"biometric-attendance/backend/internal/config"
	"biometric-attendance/backend/internal/db"
	"biometric-attendance/backend/internal/db/sqlc/gen"
	"biometric-attendance/backend/internal/security"
)

const (
	devLecturerID   = "dev-lecturer-001"
	devDepartmentID = "dev-dept-001"
	devCourseID     = "dev-course-001"
	devOptionID     = "dev-option-001"
)

type seedStudent struct {
	id, regNo, name, fingerprintID, faceID string
}

var devStudents = []seedStudent{
	{"dev-student-001", "REG2026001", "Amina Uwase", "1", "amina"},
	{"dev-student-002", "REG2026002", "Eric Mugisha", "2", "eric"},
	{"dev-student-003", "REG2026003", "Grace Ineza", "3", ""},
	{"dev-student-004", "REG2026004", "Jean Habimana", "", "jean"},
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	queries := gen.New(conn)
	ctx := context.Background()

	_, err = queries.GetLecturer(ctx, devLecturerID)
	switch {
	case err == nil:
		log.Println("Seed already applied (dev lecturer exists). Skipping data.")
	case errors.Is(err, sql.ErrNoRows):
		if err := seed(ctx, queries); err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Println("Seed completed successfully.")
	default:
		log.Fatalf("seed check: %v", err)
	}

	if cfg.JWTPrivateKey == "" {
		fmt.Println("JWT_PRIVATE_KEY not set; no dev token issued.")
		os.Exit(0)
	}
	privateKey, publicKey, err := security.LoadKeys(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt keys: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	token, expiresAt, err := tokens.IssueAccess(devLecturerID, devDepartmentID)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Printf("Dev lecturer: %s, course: %s\n", devLecturerID, devCourseID)
	fmt.Printf("Bearer token (expires %s):\n%s\n", expiresAt.Format(time.RFC3339), token)
}

func seed(ctx context.Context, queries *gen.Queries) error {
	now := time.Now().UTC()
	if err := queries.CreateLecturer(ctx, gen.CreateLecturerParams{
		ID:           devLecturerID,
		Name:         "Dr. Dev Lecturer",
		DepartmentID: devDepartmentID,
		CreatedAt:    now,
	}); err != nil {
		return fmt.Errorf("create lecturer: %w", err)
	}
	if err := queries.CreateCourse(ctx, gen.CreateCourseParams{
		ID:           devCourseID,
		Code:         "CSC301",
		Name:         "Distributed Systems",
		DepartmentID: devDepartmentID,
		LecturerID:   nullString(devLecturerID),
		OptionID:     nullString(devOptionID),
		CreatedAt:    now,
	}); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	for _, s := range devStudents {
		if err := queries.CreateStudent(ctx, gen.CreateStudentParams{
			ID:            s.id,
			RegNo:         s.regNo,
			Name:          s.name,
			OptionID:      nullString(devOptionID),
			FingerprintID: nullString(s.fingerprintID),
			FaceID:        nullString(s.faceID),
			CreatedAt:     now,
		}); err != nil {
			return fmt.Errorf("create student %s: %w", s.regNo, err)
		}
	}
	return nil
}
