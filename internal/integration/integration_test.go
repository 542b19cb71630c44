package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"scoreboard-service/internal/app"
	"scoreboard-service/internal/domain"
	"scoreboard-service/internal/infra/postgres"
	pgmigrations "scoreboard-service/internal/infra/postgres/migrations"
	rediscache "scoreboard-service/internal/infra/redis"
)

func TestScoreboardEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	bundb := openBun(pgURL)
	defer bundb.Close()
	migrateAndSeed(t, ctx, bundb)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	scoreLog := postgres.NewScoreLog(bundb)
	best := postgres.NewBestScores(bundb)
	attempts := postgres.NewAttemptStore(bundb)
	catalog := rediscache.NewCatalogCache(redisClient, postgres.NewQuizLoader(pool), 5*time.Minute)
	directory := rediscache.NewDirectoryCache(redisClient, postgres.NewDirectory(pool), 5*time.Minute)

	hub := app.NewBoardHub()
	submissions := app.NewSubmissionService(scoreLog, best, catalog, directory, hub)
	rankings := app.NewRankingService(scoreLog, best, directory)
	attemptSvc := app.NewAttemptService(catalog, attempts, directory, submissions)

	// Game path: the lower second submission must not displace the best.
	if err := submissions.Submit(ctx, "s1", domain.RoleStudent, domain.KindGame, "sudoku", 120, domain.Meta{"difficulty": "hard"}); err != nil {
		t.Fatalf("submit 120: %v", err)
	}
	if err := submissions.Submit(ctx, "s1", domain.RoleStudent, domain.KindGame, "game:sudoku", 90, nil); err != nil {
		t.Fatalf("submit 90: %v", err)
	}
	if err := submissions.Submit(ctx, "s2", domain.RoleStudent, domain.KindGame, "sudoku", 95, nil); err != nil {
		t.Fatalf("submit s2: %v", err)
	}

	board, err := rankings.Leaderboard(ctx, "s1", domain.RoleStudent, domain.KindGame, "sudoku", "")
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(board.Top) != 2 || board.Top[0].StudentID != "s1" || board.Top[0].Points != 120 {
		t.Fatalf("expected s1 leading at 120, got %+v", board.Top)
	}
	if board.Top[0].DisplayName != "Alice" {
		t.Fatalf("expected resolved name, got %+v", board.Top[0])
	}
	if board.You == nil || board.You.Rank != 1 {
		t.Fatalf("expected own rank 1, got %+v", board.You)
	}

	daily, err := rankings.Leaderboard(ctx, "s1", domain.RoleStudent, domain.KindGame, "sudoku", "daily")
	if err != nil {
		t.Fatalf("daily board: %v", err)
	}
	if len(daily.Top) != 2 || daily.Top[0].Points != 120 {
		t.Fatalf("unexpected daily board: %+v", daily.Top)
	}

	// Quiz path through the attempt flow.
	attempt, err := attemptSvc.SubmitAttempt(ctx, "s1", domain.RoleStudent, "quiz-1", []domain.AnswerInput{
		{QuestionIndex: 0, SelectedIndex: 1, TimeTakenSec: 0},
	})
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if attempt.TotalPoints != 100 || attempt.ID == "" {
		t.Fatalf("unexpected attempt: %+v", attempt)
	}

	quizBoard, err := rankings.Leaderboard(ctx, "t1", domain.RoleTeacher, domain.KindQuiz, "quiz-1", "")
	if err != nil {
		t.Fatalf("quiz board: %v", err)
	}
	if len(quizBoard.Top) != 1 || quizBoard.Top[0].Points != 100 {
		t.Fatalf("unexpected quiz board: %+v", quizBoard.Top)
	}

	// Reset is scoped to the teacher's class.
	if err := rankings.Reset(ctx, "t1", domain.RoleTeacher, domain.KindGame, "sudoku"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	board, err = rankings.Leaderboard(ctx, "t1", domain.RoleTeacher, domain.KindGame, "sudoku", "")
	if err != nil {
		t.Fatalf("board after reset: %v", err)
	}
	if len(board.Top) != 0 {
		t.Fatalf("expected empty board after reset, got %+v", board.Top)
	}
}

func openBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func migrateAndSeed(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO classes (id, name, teacher_id) VALUES ('class-1', 'Grade 5A', 't1')`); err != nil {
		t.Fatalf("seed class: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO students (id, display_name, class_id, teacher_id) VALUES
			('s1', 'Alice', 'class-1', 't1'),
			('s2', 'Bob', 'class-1', 't1')`); err != nil {
		t.Fatalf("seed students: %v", err)
	}

	quiz := domain.Quiz{
		ID:                 "quiz-1",
		ClassID:            "class-1",
		PerQuestionSeconds: 30,
		MaxAttempts:        3,
		Questions: []domain.QuizQuestion{
			{Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1},
		},
	}
	data, err := json.Marshal(quiz)
	if err != nil {
		t.Fatalf("marshal quiz: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO quizzes (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`,
		quiz.ID, string(data)); err != nil {
		t.Fatalf("insert quiz: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "board", "POSTGRES_PASSWORD": "boardpass", "POSTGRES_DB": "boarddb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://board:boardpass@%s:%s/boarddb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
