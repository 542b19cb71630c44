package app

import (
	"context"
	"fmt"
	"time"

	"scoreboard-service/internal/domain"
	"scoreboard-service/internal/scoring"
)

// AttemptService runs the quiz attempt flow: attempt-cap enforcement,
// grading, attempt persistence, then score submission.
type AttemptService struct {
	catalog   QuizCatalog
	attempts  AttemptStore
	directory Directory
	submitter *SubmissionService
	now       func() time.Time
}

func NewAttemptService(catalog QuizCatalog, attempts AttemptStore, directory Directory, submitter *SubmissionService) *AttemptService {
	return &AttemptService{
		catalog:   catalog,
		attempts:  attempts,
		directory: directory,
		submitter: submitter,
		now:       time.Now,
	}
}

// SubmitAttempt grades and records one attempt. A rejected attempt (cap
// reached, length mismatch, wrong class) never writes an attempt row.
func (s *AttemptService) SubmitAttempt(ctx context.Context, studentID string, role domain.Role, quizID string, answers []domain.AnswerInput) (domain.QuizAttempt, error) {
	if role != domain.RoleStudent {
		return domain.QuizAttempt{}, fmt.Errorf("%w: only students may submit attempts", domain.ErrScopeViolation)
	}
	if quizID == "" {
		return domain.QuizAttempt{}, fmt.Errorf("%w: missing quiz id", domain.ErrInvalidInput)
	}

	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizAttempt{}, err
	}

	profile, err := s.directory.StudentProfile(ctx, studentID)
	if err != nil {
		return domain.QuizAttempt{}, err
	}
	if profile.ClassID == "" {
		return domain.QuizAttempt{}, domain.ErrNoClassAssigned
	}
	if quiz.ClassID != profile.ClassID {
		return domain.QuizAttempt{}, fmt.Errorf("%w: quiz %s is not in the student's class", domain.ErrScopeViolation, quizID)
	}

	if quiz.MaxAttempts > 0 {
		used, err := s.attempts.CountByQuizStudent(ctx, quizID, studentID)
		if err != nil {
			return domain.QuizAttempt{}, fmt.Errorf("count attempts: %w", err)
		}
		if used >= quiz.MaxAttempts {
			return domain.QuizAttempt{}, domain.ErrAttemptsExhausted
		}
	}

	graded, correctCount, totalPoints, err := scoring.GradeAttempt(quiz, answers)
	if err != nil {
		return domain.QuizAttempt{}, err
	}

	attempt := domain.QuizAttempt{
		QuizID:       quizID,
		StudentID:    studentID,
		Answers:      graded,
		CorrectCount: correctCount,
		TotalPoints:  totalPoints,
		CreatedAt:    s.now(),
	}
	if err := s.attempts.Insert(ctx, &attempt); err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("store attempt: %w", err)
	}

	meta := domain.Meta{"correctCount": correctCount, "total": len(quiz.Questions)}
	if err := s.submitter.Submit(ctx, studentID, role, domain.KindQuiz, quizID, float64(totalPoints), meta); err != nil {
		return domain.QuizAttempt{}, err
	}
	return attempt, nil
}
