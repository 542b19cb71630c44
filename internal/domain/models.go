package domain

import "time"

// Role identifies the caller category supplied by the upstream identity layer.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a wire string to a Role, rejecting unknown values.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return Role(raw), nil
	}
	return "", ErrInvalidInput
}

// Meta is the opaque diagnostic payload attached to a submission.
// Different callers populate different keys (correctness counts, elapsed
// time, difficulty); the service never inspects it.
type Meta map[string]any

// ScoreEntry is one append-only row in the score log. Rows are immutable
// once written; only a teacher-initiated reset removes them.
type ScoreEntry struct {
	Item      ItemRef   `json:"ref"`
	ClassID   string    `json:"classId"`
	TeacherID string    `json:"teacherId,omitempty"`
	StudentID string    `json:"studentId"`
	Points    int       `json:"points"`
	Meta      Meta      `json:"meta,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BestScore holds a student's highest score ever recorded for one item.
// There is exactly one row per (item, student); bestPoints only moves up.
type BestScore struct {
	Item       ItemRef   `json:"ref"`
	ClassID    string    `json:"classId"`
	TeacherID  string    `json:"teacherId,omitempty"`
	StudentID  string    `json:"studentId"`
	BestPoints int       `json:"bestPoints"`
	BestMeta   Meta      `json:"bestMeta,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// WindowedBest is a per-student aggregate over the score log within a
// trailing window: the max points plus the latest submission time in-window,
// used as the tie-break anchor.
type WindowedBest struct {
	StudentID  string    `json:"studentId"`
	BestPoints int       `json:"bestPoints"`
	LastAt     time.Time `json:"lastAt"`
}

// RankedRow is one display row of a leaderboard.
type RankedRow struct {
	Rank        int    `json:"rank"`
	StudentID   string `json:"studentId"`
	DisplayName string `json:"displayName"`
	Points      int    `json:"points"`
}

// YourRank is the requesting student's own position, present only when the
// student has a qualifying record in scope.
type YourRank struct {
	Rank   int `json:"rank"`
	Points int `json:"points"`
}

// Leaderboard is a ranked, capped board for one item within one class.
type Leaderboard struct {
	Kind   ItemKind    `json:"type"`
	Item   ItemRef     `json:"ref"`
	Window Window      `json:"window"`
	Top    []RankedRow `json:"top"`
	You    *YourRank   `json:"you,omitempty"`
}

// StudentProfile is the directory view of a student: display name plus the
// class/teacher scope stamped onto submissions at play time.
type StudentProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	ClassID     string `json:"classId"`
	TeacherID   string `json:"teacherId,omitempty"`
}

// QuizQuestion is one MCQ question of a quiz.
type QuizQuestion struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// Quiz is the catalog view of a quiz: the content plus the scoring and
// attempt-limit settings the scoring path needs.
type Quiz struct {
	ID                 string         `json:"id"`
	ClassID            string         `json:"classId"`
	PerQuestionSeconds int            `json:"perQuestionSeconds"`
	MaxAttempts        int            `json:"maxAttemptsPerStudent"`
	Questions          []QuizQuestion `json:"questions"`
}

// AnswerInput is a single raw answer as submitted by the client.
type AnswerInput struct {
	QuestionIndex int     `json:"questionIndex"`
	SelectedIndex int     `json:"selectedIndex"`
	TimeTakenSec  float64 `json:"timeTakenSec"`
}

// AttemptAnswer is the graded form of one answer, as persisted.
type AttemptAnswer struct {
	QuestionIndex int     `json:"questionIndex"`
	SelectedIndex int     `json:"selectedIndex"`
	TimeTakenSec  float64 `json:"timeTakenSec"`
	Correct       bool    `json:"correct"`
	Points        int     `json:"points"`
}

// QuizAttempt is one graded attempt by a student; all attempts up to the
// per-quiz cap are retained for history.
type QuizAttempt struct {
	ID           string          `json:"attemptId"`
	QuizID       string          `json:"quizId"`
	StudentID    string          `json:"studentId"`
	Answers      []AttemptAnswer `json:"answers"`
	CorrectCount int             `json:"correctCount"`
	TotalPoints  int             `json:"totalPoints"`
	CreatedAt    time.Time       `json:"createdAt"`
}
