package app

import (
	"context"
	"time"

	"scoreboard-service/internal/domain"
)

// ScoreLog is the append-only record of every submission. Entries are never
// updated; Reset is the only deletion path and is scoped to one class.
type ScoreLog interface {
	Append(ctx context.Context, entry domain.ScoreEntry) error
	// WindowTop aggregates per-student bests over entries at or after since,
	// ordered points desc then earliest last-submission asc, capped at limit.
	WindowTop(ctx context.Context, item domain.ItemRef, classID string, since time.Time, limit int) ([]domain.WindowedBest, error)
	// WindowBest returns one student's in-window aggregate, reporting whether
	// the student has any qualifying entry.
	WindowBest(ctx context.Context, item domain.ItemRef, classID, studentID string, since time.Time) (domain.WindowedBest, bool, error)
	// WindowRank counts distinct students whose in-window best strictly
	// exceeds points.
	WindowRank(ctx context.Context, item domain.ItemRef, classID string, since time.Time, points int) (int, error)
	Reset(ctx context.Context, item domain.ItemRef, classID string) error
}

// BestScores is the denormalized all-time best table: at most one row per
// (item, student), mutated only through the conditional upsert.
type BestScores interface {
	// UpsertIfGreater inserts the row or, when a row exists with strictly
	// lower points, replaces points/meta/scope in a single atomic store
	// operation. Lower or equal submissions leave the row untouched.
	UpsertIfGreater(ctx context.Context, best domain.BestScore) error
	Get(ctx context.Context, item domain.ItemRef, studentID string) (domain.BestScore, bool, error)
	// TopByClass returns rows for the item within the class, ordered points
	// desc then earliest update asc, capped at limit.
	TopByClass(ctx context.Context, item domain.ItemRef, classID string, limit int) ([]domain.BestScore, error)
	// RankAbove counts rows in (item, class) scope with strictly greater points.
	RankAbove(ctx context.Context, item domain.ItemRef, classID string, points int) (int, error)
	Reset(ctx context.Context, item domain.ItemRef, classID string) error
}

// AttemptStore persists graded quiz attempts.
type AttemptStore interface {
	// Insert stores the attempt and fills its ID.
	Insert(ctx context.Context, attempt *domain.QuizAttempt) error
	CountByQuizStudent(ctx context.Context, quizID, studentID string) (int, error)
}

// QuizCatalog loads quiz content and settings (from cache/backing store).
type QuizCatalog interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Directory resolves identity scope and display names from the external
// user-profile collaborator.
type Directory interface {
	StudentProfile(ctx context.Context, studentID string) (domain.StudentProfile, error)
	// TeacherClass returns the teacher's first-assigned class id.
	TeacherClass(ctx context.Context, teacherID string) (string, error)
	// DisplayNames is a best-effort batch lookup; missing ids are simply
	// absent from the result.
	DisplayNames(ctx context.Context, studentIDs []string) (map[string]string, error)
}
