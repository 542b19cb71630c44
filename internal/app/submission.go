package app

import (
	"context"
	"fmt"
	"time"

	"scoreboard-service/internal/domain"
	"scoreboard-service/internal/scoring"
)

// SubmissionService is the single entry point for recording a score: it
// validates the submission, appends to the score log and conditionally
// advances the best-score table.
type SubmissionService struct {
	log       ScoreLog
	best      BestScores
	catalog   QuizCatalog
	directory Directory
	hub       *BoardHub
	now       func() time.Time
}

func NewSubmissionService(log ScoreLog, best BestScores, catalog QuizCatalog, directory Directory, hub *BoardHub) *SubmissionService {
	return &SubmissionService{
		log:       log,
		best:      best,
		catalog:   catalog,
		directory: directory,
		hub:       hub,
		now:       time.Now,
	}
}

// Submit records one score for a student. The student's class and teacher
// are resolved at call time and stamped onto the entry; the board reflects
// where the student was when they played, not any later reassignment.
//
// The log append is the source of truth: if the best-score update fails
// afterwards, the log entry stays valid and windowed boards still see it.
func (s *SubmissionService) Submit(ctx context.Context, studentID string, role domain.Role, kind domain.ItemKind, rawRef string, points float64, meta domain.Meta) error {
	if role != domain.RoleStudent {
		return fmt.Errorf("%w: only students may submit scores", domain.ErrScopeViolation)
	}
	item, err := domain.ParseItemRef(kind, rawRef)
	if err != nil {
		return err
	}
	pts, err := scoring.GamePoints(points)
	if err != nil {
		return err
	}

	profile, err := s.directory.StudentProfile(ctx, studentID)
	if err != nil {
		return err
	}
	if profile.ClassID == "" {
		return domain.ErrNoClassAssigned
	}

	if item.Kind == domain.KindQuiz {
		quiz, err := s.catalog.GetQuiz(ctx, item.Ref)
		if err != nil {
			return err
		}
		if quiz.ClassID != profile.ClassID {
			return fmt.Errorf("%w: quiz %s is not in the student's class", domain.ErrScopeViolation, item.Ref)
		}
	}

	now := s.now()
	entry := domain.ScoreEntry{
		Item:      item,
		ClassID:   profile.ClassID,
		TeacherID: profile.TeacherID,
		StudentID: studentID,
		Points:    pts,
		Meta:      meta,
		CreatedAt: now,
	}
	if err := s.log.Append(ctx, entry); err != nil {
		return fmt.Errorf("append score: %w", err)
	}

	err = s.best.UpsertIfGreater(ctx, domain.BestScore{
		Item:       item,
		ClassID:    profile.ClassID,
		TeacherID:  profile.TeacherID,
		StudentID:  studentID,
		BestPoints: pts,
		BestMeta:   meta,
		UpdatedAt:  now,
	})
	if err != nil {
		return fmt.Errorf("update best score: %w", err)
	}

	if s.hub != nil {
		s.hub.Notify(BoardKey(item, profile.ClassID))
	}
	return nil
}
