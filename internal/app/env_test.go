package app_test

import (
	"time"

	"scoreboard-service/internal/app"
	"scoreboard-service/internal/domain"
	"scoreboard-service/internal/infra/memory"
)

// env wires the services against in-memory stores with a small seeded
// school: two classes, each with its own teacher and quiz.
type env struct {
	log      *memory.ScoreLog
	best     *memory.BestScores
	attempts *memory.AttemptStore
	dir      *memory.Directory
	hub      *app.BoardHub

	submissions *app.SubmissionService
	rankings    *app.RankingService
	attemptSvc  *app.AttemptService
}

func newEnv() *env {
	e := &env{
		log:      memory.NewScoreLog(),
		best:     memory.NewBestScores(),
		attempts: memory.NewAttemptStore(),
		dir:      memory.NewDirectory(),
		hub:      app.NewBoardHub(),
	}

	e.dir.PutTeacher("t1", "class-1")
	e.dir.PutTeacher("t2", "class-2")
	e.dir.PutStudent(domain.StudentProfile{ID: "s1", DisplayName: "Alice", ClassID: "class-1", TeacherID: "t1"})
	e.dir.PutStudent(domain.StudentProfile{ID: "s2", DisplayName: "Bob", ClassID: "class-1", TeacherID: "t1"})
	e.dir.PutStudent(domain.StudentProfile{ID: "s3", DisplayName: "Carol", ClassID: "class-1", TeacherID: "t1"})
	e.dir.PutStudent(domain.StudentProfile{ID: "s9", DisplayName: "Zoe", ClassID: "class-2", TeacherID: "t2"})
	e.dir.PutStudent(domain.StudentProfile{ID: "s0", DisplayName: "Newcomer"})

	catalog := memory.NewCatalogCache(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {
			ID:                 "quiz-1",
			ClassID:            "class-1",
			PerQuestionSeconds: 30,
			MaxAttempts:        2,
			Questions: []domain.QuizQuestion{
				{Prompt: "q0", Options: []string{"a", "b"}, CorrectIndex: 0},
				{Prompt: "q1", Options: []string{"a", "b", "c"}, CorrectIndex: 2},
			},
		},
		"quiz-9": {
			ID:                 "quiz-9",
			ClassID:            "class-2",
			PerQuestionSeconds: 30,
			MaxAttempts:        1,
			Questions: []domain.QuizQuestion{
				{Prompt: "q0", Options: []string{"a", "b"}, CorrectIndex: 1},
			},
		},
	}), time.Minute)

	e.submissions = app.NewSubmissionService(e.log, e.best, catalog, e.dir, e.hub)
	e.rankings = app.NewRankingService(e.log, e.best, e.dir)
	e.attemptSvc = app.NewAttemptService(catalog, e.attempts, e.dir, e.submissions)
	return e
}

func gameRef(slug string) domain.ItemRef {
	return domain.ItemRef{Kind: domain.KindGame, Ref: slug}
}
