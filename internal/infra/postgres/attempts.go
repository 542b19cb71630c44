package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/uptrace/bun"

	"scoreboard-service/internal/domain"
)

// AttemptStore is the bun-backed quiz-attempt log.
type AttemptStore struct {
	db *bun.DB
}

func NewAttemptStore(db *bun.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

func (a *AttemptStore) Insert(ctx context.Context, attempt *domain.QuizAttempt) error {
	row := quizAttemptRow{
		QuizID:       attempt.QuizID,
		StudentID:    attempt.StudentID,
		Answers:      attempt.Answers,
		CorrectCount: attempt.CorrectCount,
		TotalPoints:  attempt.TotalPoints,
		CreatedAt:    attempt.CreatedAt,
	}
	if _, err := a.db.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	attempt.ID = strconv.FormatInt(row.ID, 10)
	return nil
}

func (a *AttemptStore) CountByQuizStudent(ctx context.Context, quizID, studentID string) (int, error) {
	count, err := a.db.NewSelect().
		Model((*quizAttemptRow)(nil)).
		Where("quiz_id = ?", quizID).
		Where("student_id = ?", studentID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return count, nil
}
