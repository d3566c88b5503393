package migrations

import (
	_ "embed"

	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_quizzes.sql
var createQuizzesSQL string

//go:embed 0002_create_user_quiz_stats.sql
var createUserQuizStatsSQL string

//go:embed 0003_create_attempt_ledger.sql
var createAttemptLedgerSQL string

var Migrations = migrate.NewMigrations()
