// Package scoring holds the pure score computations: quiz answers with
// time-decay points and game points supplied by the client. No storage
// access, fully deterministic.
package scoring

import (
	"fmt"
	"math"

	"scoreboard-service/internal/domain"
)

const answerFullPoints = 100

// AnswerScore grades one MCQ answer. Points decay linearly with elapsed
// time: a correct answer taken instantly is worth 100, one at the time
// limit still earns 1, an incorrect answer earns 0 regardless of timing.
func AnswerScore(perQuestionSec int, timeTakenSec float64, selectedIdx, correctIdx, optionCount int) (correct bool, points int) {
	correct = selectedIdx >= 0 && selectedIdx < optionCount && selectedIdx == correctIdx
	if !correct {
		return false, 0
	}
	if perQuestionSec <= 0 {
		return true, 1
	}
	taken := math.Min(math.Max(timeTakenSec, 0), float64(perQuestionSec))
	scale := (float64(perQuestionSec) - taken) / float64(perQuestionSec)
	points = int(math.Round(answerFullPoints * scale))
	if points < 1 {
		points = 1
	}
	return true, points
}

// GradeAttempt scores a full answer sheet against a quiz. The sheet must
// cover every question exactly once, in order; a mismatch rejects the whole
// attempt. Out-of-range selections are normalized to -1 and scored as
// incorrect without failing the other questions.
func GradeAttempt(quiz domain.Quiz, answers []domain.AnswerInput) (graded []domain.AttemptAnswer, correctCount, totalPoints int, err error) {
	if len(answers) != len(quiz.Questions) {
		return nil, 0, 0, fmt.Errorf("%w: expected %d answers, got %d",
			domain.ErrInvalidInput, len(quiz.Questions), len(answers))
	}

	graded = make([]domain.AttemptAnswer, 0, len(answers))
	for i, in := range answers {
		question := quiz.Questions[i]
		selected := in.SelectedIndex
		if selected < 0 || selected >= len(question.Options) {
			selected = -1
		}
		correct, points := AnswerScore(quiz.PerQuestionSeconds, in.TimeTakenSec, selected, question.CorrectIndex, len(question.Options))
		if correct {
			correctCount++
		}
		totalPoints += points
		graded = append(graded, domain.AttemptAnswer{
			QuestionIndex: i,
			SelectedIndex: selected,
			TimeTakenSec:  in.TimeTakenSec,
			Correct:       correct,
			Points:        points,
		})
	}
	return graded, correctCount, totalPoints, nil
}

// GamePoints validates and coerces a client-reported game score. The value
// is trusted beyond a non-negativity check; see the service docs for the
// open question on per-game range validation.
func GamePoints(raw float64) (int, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, fmt.Errorf("%w: points must be a finite number", domain.ErrInvalidInput)
	}
	if raw < 0 {
		return 0, fmt.Errorf("%w: points must be non-negative", domain.ErrInvalidInput)
	}
	// Values at or above MaxInt64 would overflow the int conversion and wrap
	// negative.
	if raw >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: points out of range", domain.ErrInvalidInput)
	}
	return int(math.Floor(raw)), nil
}
