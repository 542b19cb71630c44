package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"scoreboard-service/internal/app"
	"scoreboard-service/internal/config"
	"scoreboard-service/internal/domain"
	"scoreboard-service/internal/infra/memory"
	"scoreboard-service/internal/infra/postgres"
	rediscache "scoreboard-service/internal/infra/redis"
	transport "scoreboard-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the scoreboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var (
		scoreLog  app.ScoreLog
		best      app.BestScores
		attempts  app.AttemptStore
		directory app.Directory
		loader    rediscache.QuizLoader
	)

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		bundb := bun.NewDB(sqldb, pgdialect.New())

		scoreLog = postgres.NewScoreLog(bundb)
		best = postgres.NewBestScores(bundb)
		attempts = postgres.NewAttemptStore(bundb)
		directory = postgres.NewDirectory(pool)
		loader = postgres.NewQuizLoader(pool)
	} else {
		// Demo mode: everything in memory, seeded with one class.
		scoreLog = memory.NewScoreLog()
		best = memory.NewBestScores()
		attempts = memory.NewAttemptStore()
		memDir := memory.NewDirectory()
		seedDemoDirectory(memDir)
		directory = memDir
		loader = memory.NewStaticQuizLoader(demoQuizzes())
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalog app.QuizCatalog
	if redisClient != nil {
		catalog = rediscache.NewCatalogCache(redisClient, loader, catalogTTL)
	} else {
		catalog = memory.NewCatalogCache(loader, catalogTTL)
	}

	if redisClient != nil {
		directoryTTL := config.TTLDuration(cfg.Directory.TTL, 5*time.Minute)
		directory = rediscache.NewDirectoryCache(redisClient, directory, directoryTTL)
	}

	hub := app.NewBoardHub()
	submissions := app.NewSubmissionService(scoreLog, best, catalog, directory, hub)
	rankings := app.NewRankingService(scoreLog, best, directory)
	attemptSvc := app.NewAttemptService(catalog, attempts, directory, submissions)

	handler := transport.NewHandler(submissions, rankings, attemptSvc)
	wsHandler := transport.NewWSHandler(rankings, hub)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws/leaderboard", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting scoreboard service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedDemoDirectory registers a small class so the demo server answers
// requests without a database.
func seedDemoDirectory(dir *memory.Directory) {
	dir.PutTeacher("t1", "class-1")
	dir.PutStudent(domain.StudentProfile{ID: "s1", DisplayName: "Alice", ClassID: "class-1", TeacherID: "t1"})
	dir.PutStudent(domain.StudentProfile{ID: "s2", DisplayName: "Bob", ClassID: "class-1", TeacherID: "t1"})
}

// demoQuizzes provides minimal quiz data; the Postgres loader replaces this
// in production.
func demoQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:                 "quiz-1",
			ClassID:            "class-1",
			PerQuestionSeconds: 30,
			MaxAttempts:        3,
			Questions: []domain.QuizQuestion{
				{
					Prompt:       "What is 2 + 2?",
					Options:      []string{"3", "4", "5"},
					CorrectIndex: 1,
				},
			},
		},
	}
}
