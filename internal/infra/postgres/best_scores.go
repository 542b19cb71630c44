package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"scoreboard-service/internal/domain"
)

// BestScores is the bun-backed best-score table. The unique index on
// (item_ref, student_id) guarantees at most one row per pair; all mutation
// goes through the conditional upsert so concurrent submissions cannot lose
// a higher score to a lower one.
type BestScores struct {
	db *bun.DB
}

func NewBestScores(db *bun.DB) *BestScores {
	return &BestScores{db: db}
}

func (b *BestScores) UpsertIfGreater(ctx context.Context, best domain.BestScore) error {
	row := bestScoreRow{
		Kind:       string(best.Item.Kind),
		ItemRef:    best.Item.String(),
		ClassID:    best.ClassID,
		TeacherID:  best.TeacherID,
		StudentID:  best.StudentID,
		BestPoints: best.BestPoints,
		BestMeta:   best.BestMeta,
		UpdatedAt:  best.UpdatedAt,
	}
	_, err := b.db.NewInsert().
		Model(&row).
		On("CONFLICT (item_ref, student_id) DO UPDATE").
		Set("best_points = EXCLUDED.best_points").
		Set("best_meta = EXCLUDED.best_meta").
		Set("class_id = EXCLUDED.class_id").
		Set("teacher_id = EXCLUDED.teacher_id").
		Set("updated_at = EXCLUDED.updated_at").
		Where("EXCLUDED.best_points > bs.best_points").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert best score: %w", err)
	}
	return nil
}

func (b *BestScores) Get(ctx context.Context, item domain.ItemRef, studentID string) (domain.BestScore, bool, error) {
	var row bestScoreRow
	err := b.db.NewSelect().
		Model(&row).
		Where("item_ref = ?", item.String()).
		Where("student_id = ?", studentID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BestScore{}, false, nil
	}
	if err != nil {
		return domain.BestScore{}, false, fmt.Errorf("get best score: %w", err)
	}
	return toBestScore(row), true, nil
}

func (b *BestScores) TopByClass(ctx context.Context, item domain.ItemRef, classID string, limit int) ([]domain.BestScore, error) {
	var rows []bestScoreRow
	err := b.db.NewSelect().
		Model(&rows).
		Where("item_ref = ?", item.String()).
		Where("class_id = ?", classID).
		OrderExpr("best_points DESC").
		OrderExpr("updated_at ASC").
		OrderExpr("student_id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("best scores by class: %w", err)
	}

	out := make([]domain.BestScore, 0, len(rows))
	for _, row := range rows {
		out = append(out, toBestScore(row))
	}
	return out, nil
}

func (b *BestScores) RankAbove(ctx context.Context, item domain.ItemRef, classID string, points int) (int, error) {
	count, err := b.db.NewSelect().
		Model((*bestScoreRow)(nil)).
		Where("item_ref = ?", item.String()).
		Where("class_id = ?", classID).
		Where("best_points > ?", points).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("best-score rank: %w", err)
	}
	return count, nil
}

func (b *BestScores) Reset(ctx context.Context, item domain.ItemRef, classID string) error {
	_, err := b.db.NewDelete().
		Model((*bestScoreRow)(nil)).
		Where("item_ref = ?", item.String()).
		Where("class_id = ?", classID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("reset best scores: %w", err)
	}
	return nil
}
