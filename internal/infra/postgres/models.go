// Package postgres implements the repositories on Postgres: bun for the
// score log, best-score table and attempt log, pgx for the catalog and
// directory collaborator reads.
package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"scoreboard-service/internal/domain"
)

type scoreEntryRow struct {
	bun.BaseModel `bun:"table:score_entries,alias:se"`

	ID        int64       `bun:"id,pk,autoincrement"`
	Kind      string      `bun:"kind,notnull"`
	ItemRef   string      `bun:"item_ref,notnull"`
	ClassID   string      `bun:"class_id,notnull"`
	TeacherID string      `bun:"teacher_id,nullzero"`
	StudentID string      `bun:"student_id,notnull"`
	Points    int         `bun:"points,notnull"`
	Meta      domain.Meta `bun:"meta,type:jsonb,nullzero"`
	CreatedAt time.Time   `bun:"created_at,notnull"`
}

type bestScoreRow struct {
	bun.BaseModel `bun:"table:best_scores,alias:bs"`

	ID         int64       `bun:"id,pk,autoincrement"`
	Kind       string      `bun:"kind,notnull"`
	ItemRef    string      `bun:"item_ref,notnull"`
	ClassID    string      `bun:"class_id,notnull"`
	TeacherID  string      `bun:"teacher_id,nullzero"`
	StudentID  string      `bun:"student_id,notnull"`
	BestPoints int         `bun:"best_points,notnull"`
	BestMeta   domain.Meta `bun:"best_meta,type:jsonb,nullzero"`
	UpdatedAt  time.Time   `bun:"updated_at,notnull"`
}

type quizAttemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts,alias:qa"`

	ID           int64                  `bun:"id,pk,autoincrement"`
	QuizID       string                 `bun:"quiz_id,notnull"`
	StudentID    string                 `bun:"student_id,notnull"`
	Answers      []domain.AttemptAnswer `bun:"answers,type:jsonb"`
	CorrectCount int                    `bun:"correct_count,notnull"`
	TotalPoints  int                    `bun:"total_points,notnull"`
	CreatedAt    time.Time              `bun:"created_at,notnull"`
}

// windowedRow receives the per-student aggregate of a windowed board query.
type windowedRow struct {
	StudentID  string    `bun:"student_id"`
	BestPoints int       `bun:"best_points"`
	LastAt     time.Time `bun:"last_at"`
}

func toBestScore(row bestScoreRow) domain.BestScore {
	item, _ := domain.ParseItemRef(domain.ItemKind(row.Kind), row.ItemRef)
	return domain.BestScore{
		Item:       item,
		ClassID:    row.ClassID,
		TeacherID:  row.TeacherID,
		StudentID:  row.StudentID,
		BestPoints: row.BestPoints,
		BestMeta:   row.BestMeta,
		UpdatedAt:  row.UpdatedAt,
	}
}
