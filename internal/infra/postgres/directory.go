package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"scoreboard-service/internal/domain"
)

// Directory reads student and class assignments from the school tables
// maintained by the main application; this service only ever reads them.
type Directory struct {
	pool *pgxpool.Pool
}

func NewDirectory(pool *pgxpool.Pool) *Directory {
	return &Directory{pool: pool}
}

func (d *Directory) StudentProfile(ctx context.Context, studentID string) (domain.StudentProfile, error) {
	profile := domain.StudentProfile{ID: studentID}
	err := d.pool.QueryRow(ctx,
		`SELECT display_name, coalesce(class_id, ''), coalesce(teacher_id, '') FROM students WHERE id=$1`,
		studentID,
	).Scan(&profile.DisplayName, &profile.ClassID, &profile.TeacherID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StudentProfile{}, domain.ErrStudentNotFound
	}
	if err != nil {
		return domain.StudentProfile{}, fmt.Errorf("load student: %w", err)
	}
	return profile, nil
}

func (d *Directory) TeacherClass(ctx context.Context, teacherID string) (string, error) {
	var classID string
	err := d.pool.QueryRow(ctx,
		`SELECT id FROM classes WHERE teacher_id=$1 ORDER BY created_at ASC, id ASC LIMIT 1`,
		teacherID,
	).Scan(&classID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrTeacherNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load teacher class: %w", err)
	}
	return classID, nil
}

func (d *Directory) DisplayNames(ctx context.Context, studentIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(studentIDs))
	if len(studentIDs) == 0 {
		return names, nil
	}

	rows, err := d.pool.Query(ctx,
		`SELECT id, display_name FROM students WHERE id = ANY($1)`,
		studentIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("load display names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan display name: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read display names: %w", err)
	}
	return names, nil
}
