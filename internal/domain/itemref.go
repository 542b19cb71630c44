package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ItemKind is the closed set of leaderboard item categories.
type ItemKind string

const (
	KindQuiz ItemKind = "quiz"
	KindGame ItemKind = "game"
)

// ParseItemKind maps a wire string to an ItemKind.
func ParseItemKind(raw string) (ItemKind, error) {
	switch ItemKind(raw) {
	case KindQuiz, KindGame:
		return ItemKind(raw), nil
	}
	return "", fmt.Errorf("%w: unknown item type %q", ErrInvalidInput, raw)
}

// ItemRef identifies a leaderboard item. Quizzes are keyed by id, games by a
// caller-supplied slug which may itself encode difficulty ("logicgate-hard").
type ItemRef struct {
	Kind ItemKind
	Ref  string
}

// ParseItemRef normalizes a raw ref for the given kind. It accepts refs with
// or without the "quiz:"/"game:" prefix and never double-prefixes, so
// "circuitsnap" and "game:circuitsnap" identify the same item.
func ParseItemRef(kind ItemKind, raw string) (ItemRef, error) {
	ref := strings.TrimSpace(raw)
	ref = strings.TrimPrefix(ref, string(kind)+":")
	if ref == "" {
		return ItemRef{}, fmt.Errorf("%w: empty item ref", ErrInvalidInput)
	}
	return ItemRef{Kind: kind, Ref: ref}, nil
}

// QuizRef keys a quiz by its id.
func QuizRef(quizID string) ItemRef {
	return ItemRef{Kind: KindQuiz, Ref: quizID}
}

// String renders the canonical stored form, e.g. "quiz:abc123" or
// "game:sudoku".
func (r ItemRef) String() string {
	return string(r.Kind) + ":" + r.Ref
}

// MarshalJSON renders the canonical string form.
func (r ItemRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON parses the canonical "kind:ref" form.
func (r *ItemRef) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rawKind, _, found := strings.Cut(raw, ":")
	if !found {
		return fmt.Errorf("%w: malformed item ref %q", ErrInvalidInput, raw)
	}
	kind, err := ParseItemKind(rawKind)
	if err != nil {
		return err
	}
	parsed, err := ParseItemRef(kind, raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Window selects the aggregation period of a leaderboard query.
type Window string

const (
	WindowAllTime Window = "alltime"
	WindowDaily   Window = "daily"
	WindowWeekly  Window = "weekly"
)

// ParseWindow maps a wire string to a Window. Anything other than
// daily/weekly degrades to the all-time board rather than erroring.
func ParseWindow(raw string) Window {
	switch Window(raw) {
	case WindowDaily, WindowWeekly:
		return Window(raw)
	}
	return WindowAllTime
}

// Since returns the inclusive lower bound of the window relative to now.
// All-time windows have no bound and return the zero time.
func (w Window) Since(now time.Time) time.Time {
	switch w {
	case WindowDaily:
		return now.Add(-24 * time.Hour)
	case WindowWeekly:
		return now.Add(-7 * 24 * time.Hour)
	}
	return time.Time{}
}
