package scoring

import (
	"errors"
	"math"
	"testing"

	"scoreboard-service/internal/domain"
)

func TestAnswerScoreTimeDecay(t *testing.T) {
	cases := []struct {
		name        string
		budget      int
		taken       float64
		selected    int
		wantCorrect bool
		wantPoints  int
	}{
		{"instant answer scores full", 30, 0, 1, true, 100},
		{"at the limit still scores one", 30, 30, 1, true, 1},
		{"half time scores half", 30, 15, 1, true, 50},
		{"negative time clamps to zero", 30, -5, 1, true, 100},
		{"overshoot clamps to the limit", 30, 90, 1, true, 1},
		{"wrong option scores zero", 30, 0, 0, false, 0},
		{"out of range scores zero", 30, 0, 5, false, 0},
		{"negative index scores zero", 30, 0, -1, false, 0},
		{"zero budget still scores one when correct", 0, 10, 1, true, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			correct, points := AnswerScore(tc.budget, tc.taken, tc.selected, 1, 3)
			if correct != tc.wantCorrect || points != tc.wantPoints {
				t.Fatalf("got correct=%v points=%d, want correct=%v points=%d",
					correct, points, tc.wantCorrect, tc.wantPoints)
			}
		})
	}
}

func TestGradeAttempt(t *testing.T) {
	quiz := domain.Quiz{
		ID:                 "quiz-1",
		PerQuestionSeconds: 30,
		Questions: []domain.QuizQuestion{
			{Prompt: "q0", Options: []string{"a", "b"}, CorrectIndex: 0},
			{Prompt: "q1", Options: []string{"a", "b", "c"}, CorrectIndex: 2},
		},
	}

	graded, correctCount, totalPoints, err := GradeAttempt(quiz, []domain.AnswerInput{
		{QuestionIndex: 0, SelectedIndex: 0, TimeTakenSec: 0},
		{QuestionIndex: 1, SelectedIndex: 1, TimeTakenSec: 10},
	})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if correctCount != 1 {
		t.Fatalf("expected 1 correct, got %d", correctCount)
	}
	if totalPoints != 100 {
		t.Fatalf("expected 100 total points, got %d", totalPoints)
	}
	if !graded[0].Correct || graded[1].Correct {
		t.Fatalf("unexpected correctness: %+v", graded)
	}
}

func TestGradeAttemptRejectsLengthMismatch(t *testing.T) {
	quiz := domain.Quiz{
		Questions: []domain.QuizQuestion{
			{Options: []string{"a", "b"}, CorrectIndex: 0},
			{Options: []string{"a", "b"}, CorrectIndex: 1},
		},
	}

	_, _, _, err := GradeAttempt(quiz, []domain.AnswerInput{{SelectedIndex: 0}})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestGradeAttemptNormalizesOutOfRangeSelection(t *testing.T) {
	quiz := domain.Quiz{
		PerQuestionSeconds: 30,
		Questions: []domain.QuizQuestion{
			{Options: []string{"a", "b"}, CorrectIndex: 0},
			{Options: []string{"a", "b"}, CorrectIndex: 1},
		},
	}

	graded, correctCount, totalPoints, err := GradeAttempt(quiz, []domain.AnswerInput{
		{QuestionIndex: 0, SelectedIndex: 7},
		{QuestionIndex: 1, SelectedIndex: 1},
	})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	// The stray selection is stored as -1 and scored zero; the rest of the
	// sheet still scores.
	if graded[0].SelectedIndex != -1 || graded[0].Points != 0 {
		t.Fatalf("expected normalized miss, got %+v", graded[0])
	}
	if correctCount != 1 || totalPoints != 100 {
		t.Fatalf("expected other question scored, got correct=%d points=%d", correctCount, totalPoints)
	}
}

func TestGamePoints(t *testing.T) {
	if _, err := GamePoints(-1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected rejection of negative points, got %v", err)
	}
	pts, err := GamePoints(120.9)
	if err != nil {
		t.Fatalf("game points: %v", err)
	}
	if pts != 120 {
		t.Fatalf("expected floor to 120, got %d", pts)
	}
}

func TestGamePointsRejectsNonFiniteAndOverflow(t *testing.T) {
	for _, raw := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e300, math.MaxInt64} {
		if _, err := GamePoints(raw); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected rejection of %v, got %v", raw, err)
		}
	}
	// Huge but representable values still floor without wrapping negative.
	pts, err := GamePoints(1e18)
	if err != nil {
		t.Fatalf("game points: %v", err)
	}
	if pts < 0 {
		t.Fatalf("points wrapped negative: %d", pts)
	}
}
