package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"scoreboard-service/internal/domain"
)

// ScoreLog is the bun-backed append-only score log.
type ScoreLog struct {
	db *bun.DB
}

func NewScoreLog(db *bun.DB) *ScoreLog {
	return &ScoreLog{db: db}
}

func (l *ScoreLog) Append(ctx context.Context, entry domain.ScoreEntry) error {
	row := scoreEntryRow{
		Kind:      string(entry.Item.Kind),
		ItemRef:   entry.Item.String(),
		ClassID:   entry.ClassID,
		TeacherID: entry.TeacherID,
		StudentID: entry.StudentID,
		Points:    entry.Points,
		Meta:      entry.Meta,
		CreatedAt: entry.CreatedAt,
	}
	if _, err := l.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert score entry: %w", err)
	}
	return nil
}

func (l *ScoreLog) WindowTop(ctx context.Context, item domain.ItemRef, classID string, since time.Time, limit int) ([]domain.WindowedBest, error) {
	var rows []windowedRow
	err := l.windowQuery(item, classID, since).
		OrderExpr("best_points DESC").
		OrderExpr("last_at ASC").
		OrderExpr("student_id ASC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("windowed top: %w", err)
	}

	out := make([]domain.WindowedBest, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.WindowedBest{
			StudentID:  row.StudentID,
			BestPoints: row.BestPoints,
			LastAt:     row.LastAt,
		})
	}
	return out, nil
}

func (l *ScoreLog) WindowBest(ctx context.Context, item domain.ItemRef, classID, studentID string, since time.Time) (domain.WindowedBest, bool, error) {
	var row windowedRow
	err := l.windowQuery(item, classID, since).
		Where("student_id = ?", studentID).
		Scan(ctx, &row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WindowedBest{}, false, nil
	}
	if err != nil {
		return domain.WindowedBest{}, false, fmt.Errorf("windowed best: %w", err)
	}
	return domain.WindowedBest{
		StudentID:  row.StudentID,
		BestPoints: row.BestPoints,
		LastAt:     row.LastAt,
	}, true, nil
}

func (l *ScoreLog) WindowRank(ctx context.Context, item domain.ItemRef, classID string, since time.Time, points int) (int, error) {
	sub := l.windowQuery(item, classID, since)
	count, err := l.db.NewSelect().
		TableExpr("(?) AS w", sub).
		Where("w.best_points > ?", points).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("windowed rank: %w", err)
	}
	return count, nil
}

func (l *ScoreLog) Reset(ctx context.Context, item domain.ItemRef, classID string) error {
	_, err := l.db.NewDelete().
		Model((*scoreEntryRow)(nil)).
		Where("item_ref = ?", item.String()).
		Where("class_id = ?", classID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("reset score log: %w", err)
	}
	return nil
}

// windowQuery builds the shared per-student aggregation: max points plus the
// latest submission time as the tie-break anchor.
func (l *ScoreLog) windowQuery(item domain.ItemRef, classID string, since time.Time) *bun.SelectQuery {
	q := l.db.NewSelect().
		Model((*scoreEntryRow)(nil)).
		Column("student_id").
		ColumnExpr("max(points) AS best_points").
		ColumnExpr("max(created_at) AS last_at").
		Where("item_ref = ?", item.String()).
		Where("class_id = ?", classID).
		Group("student_id")
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	return q
}
