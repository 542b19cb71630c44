package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_scoreboard.sql
var createScoreboardSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createScoreboardSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS score_entries;
				DROP TABLE IF EXISTS best_scores;
				DROP TABLE IF EXISTS quiz_attempts;
				DROP TABLE IF EXISTS quizzes;
				DROP TABLE IF EXISTS classes;
				DROP TABLE IF EXISTS students;
			`)
			return err
		},
	)
}
