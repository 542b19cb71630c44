package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"scoreboard-service/internal/domain"
)

const (
	studentBoardCap = 50
	teacherBoardCap = 100

	// fallbackName labels rows whose display name could not be resolved;
	// name lookups must never abort a ranking.
	fallbackName = "Student"
)

// RankingService computes ranked leaderboard views: all-time boards from the
// best-score table, daily/weekly game boards aggregated from the score log.
type RankingService struct {
	scores    ScoreLog
	best      BestScores
	directory Directory
	now       func() time.Time
}

func NewRankingService(scores ScoreLog, best BestScores, directory Directory) *RankingService {
	return &RankingService{
		scores:    scores,
		best:      best,
		directory: directory,
		now:       time.Now,
	}
}

// Leaderboard returns the ranked board for an item, scoped to the
// requester's own class. The class is always resolved server-side from the
// requester's identity; a caller cannot read another class's board.
func (s *RankingService) Leaderboard(ctx context.Context, requesterID string, role domain.Role, kind domain.ItemKind, rawRef, rawWindow string) (domain.Leaderboard, error) {
	item, err := domain.ParseItemRef(kind, rawRef)
	if err != nil {
		return domain.Leaderboard{}, err
	}

	window := domain.ParseWindow(rawWindow)
	if item.Kind != domain.KindGame {
		// Quiz boards are always all-time.
		window = domain.WindowAllTime
	}

	classID, limit, err := s.resolveScope(ctx, requesterID, role)
	if err != nil {
		return domain.Leaderboard{}, err
	}

	if window != domain.WindowAllTime {
		return s.windowedBoard(ctx, item, window, classID, limit, requesterID, role)
	}
	return s.allTimeBoard(ctx, item, classID, limit, requesterID, role)
}

// Reset deletes every score-log and best-score row for the item within the
// teacher's class. Other classes playing the same item are untouched.
func (s *RankingService) Reset(ctx context.Context, teacherID string, role domain.Role, kind domain.ItemKind, rawRef string) error {
	if role != domain.RoleTeacher {
		return fmt.Errorf("%w: only teachers may reset a leaderboard", domain.ErrScopeViolation)
	}
	item, err := domain.ParseItemRef(kind, rawRef)
	if err != nil {
		return err
	}
	classID, err := s.directory.TeacherClass(ctx, teacherID)
	if err != nil {
		return err
	}
	if err := s.scores.Reset(ctx, item, classID); err != nil {
		return fmt.Errorf("reset score log: %w", err)
	}
	if err := s.best.Reset(ctx, item, classID); err != nil {
		return fmt.Errorf("reset best scores: %w", err)
	}
	return nil
}

// Scope resolves the requester's class id, the scope every board read is
// pinned to.
func (s *RankingService) Scope(ctx context.Context, requesterID string, role domain.Role) (string, error) {
	classID, _, err := s.resolveScope(ctx, requesterID, role)
	return classID, err
}

func (s *RankingService) resolveScope(ctx context.Context, requesterID string, role domain.Role) (classID string, limit int, err error) {
	switch role {
	case domain.RoleStudent:
		profile, err := s.directory.StudentProfile(ctx, requesterID)
		if err != nil {
			return "", 0, err
		}
		if profile.ClassID == "" {
			return "", 0, domain.ErrNoClassAssigned
		}
		return profile.ClassID, studentBoardCap, nil
	case domain.RoleTeacher:
		classID, err := s.directory.TeacherClass(ctx, requesterID)
		if err != nil {
			return "", 0, err
		}
		return classID, teacherBoardCap, nil
	}
	return "", 0, fmt.Errorf("%w: role %q cannot read leaderboards", domain.ErrScopeViolation, role)
}

func (s *RankingService) windowedBoard(ctx context.Context, item domain.ItemRef, window domain.Window, classID string, limit int, requesterID string, role domain.Role) (domain.Leaderboard, error) {
	since := window.Since(s.now())

	rows, err := s.scores.WindowTop(ctx, item, classID, since, limit)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("windowed board: %w", err)
	}

	board := domain.Leaderboard{Kind: item.Kind, Item: item, Window: window}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.StudentID)
	}
	names := s.lookupNames(ctx, ids)
	for i, row := range rows {
		board.Top = append(board.Top, domain.RankedRow{
			Rank:        i + 1,
			StudentID:   row.StudentID,
			DisplayName: names[row.StudentID],
			Points:      row.BestPoints,
		})
	}

	if role == domain.RoleStudent {
		own, ok, err := s.scores.WindowBest(ctx, item, classID, requesterID, since)
		if err != nil {
			return domain.Leaderboard{}, fmt.Errorf("windowed rank: %w", err)
		}
		if ok {
			ahead, err := s.scores.WindowRank(ctx, item, classID, since, own.BestPoints)
			if err != nil {
				return domain.Leaderboard{}, fmt.Errorf("windowed rank: %w", err)
			}
			board.You = &domain.YourRank{Rank: ahead + 1, Points: own.BestPoints}
		}
	}
	return board, nil
}

func (s *RankingService) allTimeBoard(ctx context.Context, item domain.ItemRef, classID string, limit int, requesterID string, role domain.Role) (domain.Leaderboard, error) {
	rows, err := s.best.TopByClass(ctx, item, classID, limit)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("all-time board: %w", err)
	}

	board := domain.Leaderboard{Kind: item.Kind, Item: item, Window: domain.WindowAllTime}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.StudentID)
	}
	names := s.lookupNames(ctx, ids)
	for i, row := range rows {
		board.Top = append(board.Top, domain.RankedRow{
			Rank:        i + 1,
			StudentID:   row.StudentID,
			DisplayName: names[row.StudentID],
			Points:      row.BestPoints,
		})
	}

	if role == domain.RoleStudent {
		own, ok, err := s.best.Get(ctx, item, requesterID)
		if err != nil {
			return domain.Leaderboard{}, fmt.Errorf("own rank: %w", err)
		}
		// A best row stamped for a previous class stays on that class's
		// board; it never produces a rank on the current one.
		if ok && own.ClassID == classID {
			ahead, err := s.best.RankAbove(ctx, item, classID, own.BestPoints)
			if err != nil {
				return domain.Leaderboard{}, fmt.Errorf("own rank: %w", err)
			}
			board.You = &domain.YourRank{Rank: ahead + 1, Points: own.BestPoints}
		}
	}
	return board, nil
}

// lookupNames resolves display names, degrading to a placeholder on any
// failure so a directory outage never hides the board itself.
func (s *RankingService) lookupNames(ctx context.Context, ids []string) map[string]string {
	names := map[string]string{}
	if len(ids) > 0 {
		resolved, err := s.directory.DisplayNames(ctx, ids)
		if err != nil {
			log.Printf("display name lookup failed: %v", err)
		} else {
			names = resolved
		}
	}
	for _, id := range ids {
		if names[id] == "" {
			names[id] = fallbackName
		}
	}
	return names
}
