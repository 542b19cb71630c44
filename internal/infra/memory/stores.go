// Package memory provides in-memory implementations of every repository,
// backing unit tests and the database-free demo mode of the server.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"scoreboard-service/internal/domain"
)

// ScoreLog is an in-memory append-only score log.
type ScoreLog struct {
	mu      sync.RWMutex
	entries []domain.ScoreEntry
}

func NewScoreLog() *ScoreLog {
	return &ScoreLog{}
}

func (l *ScoreLog) Append(_ context.Context, entry domain.ScoreEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// Entries returns a copy of the log, oldest first. Test helper.
func (l *ScoreLog) Entries() []domain.ScoreEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.ScoreEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *ScoreLog) WindowTop(_ context.Context, item domain.ItemRef, classID string, since time.Time, limit int) ([]domain.WindowedBest, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows := l.aggregateLocked(item, classID, since)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].BestPoints != rows[j].BestPoints {
			return rows[i].BestPoints > rows[j].BestPoints
		}
		if !rows[i].LastAt.Equal(rows[j].LastAt) {
			return rows[i].LastAt.Before(rows[j].LastAt)
		}
		return rows[i].StudentID < rows[j].StudentID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (l *ScoreLog) WindowBest(_ context.Context, item domain.ItemRef, classID, studentID string, since time.Time) (domain.WindowedBest, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, row := range l.aggregateLocked(item, classID, since) {
		if row.StudentID == studentID {
			return row, true, nil
		}
	}
	return domain.WindowedBest{}, false, nil
}

func (l *ScoreLog) WindowRank(_ context.Context, item domain.ItemRef, classID string, since time.Time, points int) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ahead := 0
	for _, row := range l.aggregateLocked(item, classID, since) {
		if row.BestPoints > points {
			ahead++
		}
	}
	return ahead, nil
}

func (l *ScoreLog) Reset(_ context.Context, item domain.ItemRef, classID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.entries[:0]
	for _, entry := range l.entries {
		if entry.Item == item && entry.ClassID == classID {
			continue
		}
		kept = append(kept, entry)
	}
	l.entries = kept
	return nil
}

func (l *ScoreLog) aggregateLocked(item domain.ItemRef, classID string, since time.Time) []domain.WindowedBest {
	perStudent := make(map[string]*domain.WindowedBest)
	for _, entry := range l.entries {
		if entry.Item != item || entry.ClassID != classID || entry.CreatedAt.Before(since) {
			continue
		}
		agg, ok := perStudent[entry.StudentID]
		if !ok {
			perStudent[entry.StudentID] = &domain.WindowedBest{
				StudentID:  entry.StudentID,
				BestPoints: entry.Points,
				LastAt:     entry.CreatedAt,
			}
			continue
		}
		if entry.Points > agg.BestPoints {
			agg.BestPoints = entry.Points
		}
		if entry.CreatedAt.After(agg.LastAt) {
			agg.LastAt = entry.CreatedAt
		}
	}

	rows := make([]domain.WindowedBest, 0, len(perStudent))
	for _, agg := range perStudent {
		rows = append(rows, *agg)
	}
	return rows
}

// BestScores is an in-memory best-score table keyed by (item, student).
type BestScores struct {
	mu   sync.RWMutex
	rows map[string]domain.BestScore
}

func NewBestScores() *BestScores {
	return &BestScores{rows: make(map[string]domain.BestScore)}
}

func bestKey(item domain.ItemRef, studentID string) string {
	return item.String() + "|" + studentID
}

func (b *BestScores) UpsertIfGreater(_ context.Context, best domain.BestScore) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := bestKey(best.Item, best.StudentID)
	if existing, ok := b.rows[key]; ok && existing.BestPoints >= best.BestPoints {
		return nil
	}
	b.rows[key] = best
	return nil
}

func (b *BestScores) Get(_ context.Context, item domain.ItemRef, studentID string) (domain.BestScore, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	row, ok := b.rows[bestKey(item, studentID)]
	return row, ok, nil
}

func (b *BestScores) TopByClass(_ context.Context, item domain.ItemRef, classID string, limit int) ([]domain.BestScore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rows := make([]domain.BestScore, 0)
	for _, row := range b.rows {
		if row.Item == item && row.ClassID == classID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].BestPoints != rows[j].BestPoints {
			return rows[i].BestPoints > rows[j].BestPoints
		}
		if !rows[i].UpdatedAt.Equal(rows[j].UpdatedAt) {
			return rows[i].UpdatedAt.Before(rows[j].UpdatedAt)
		}
		return rows[i].StudentID < rows[j].StudentID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (b *BestScores) RankAbove(_ context.Context, item domain.ItemRef, classID string, points int) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ahead := 0
	for _, row := range b.rows {
		if row.Item == item && row.ClassID == classID && row.BestPoints > points {
			ahead++
		}
	}
	return ahead, nil
}

func (b *BestScores) Reset(_ context.Context, item domain.ItemRef, classID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, row := range b.rows {
		if row.Item == item && row.ClassID == classID {
			delete(b.rows, key)
		}
	}
	return nil
}

// AttemptStore is an in-memory quiz-attempt log.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts []domain.QuizAttempt
	seq      int64
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{}
}

func (a *AttemptStore) Insert(_ context.Context, attempt *domain.QuizAttempt) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.seq++
	attempt.ID = strconv.FormatInt(a.seq, 10)
	a.attempts = append(a.attempts, *attempt)
	return nil
}

func (a *AttemptStore) CountByQuizStudent(_ context.Context, quizID, studentID string) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	count := 0
	for _, attempt := range a.attempts {
		if attempt.QuizID == quizID && attempt.StudentID == studentID {
			count++
		}
	}
	return count, nil
}
