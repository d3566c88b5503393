package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"culturequiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AttemptStore persists the per-user attempt ledger, achievement ledger, and
// versioned aggregate in Postgres. Attempts and achievements are one row per
// record (append-only); the aggregate row carries a version column used as
// the optimistic-concurrency token.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) LoadAggregate(ctx context.Context, userID string) (domain.UserQuizAggregate, error) {
	var agg domain.UserQuizAggregate
	err := s.pool.QueryRow(ctx, `
		SELECT total_quiz_score, total_quiz_attempts, best_quiz_score,
		       average_quiz_score, total_quiz_time, quizzes_completed,
		       quizzes_passed, version
		FROM user_quiz_stats WHERE user_id=$1`, userID).
		Scan(&agg.TotalScore, &agg.TotalAttempts, &agg.BestScore,
			&agg.AverageScore, &agg.TotalTime, &agg.QuizzesCompleted,
			&agg.QuizzesPassed, &agg.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		// No row yet: zero aggregate at version 0, created on first commit.
		return domain.UserQuizAggregate{}, nil
	}
	if err != nil {
		return domain.UserQuizAggregate{}, fmt.Errorf("load aggregate: %w", err)
	}
	return agg, nil
}

func (s *AttemptStore) LoadAchievements(ctx context.Context, userID string) ([]domain.AchievementRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT type, name, description, earned_at
		FROM quiz_achievements WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	defer rows.Close()

	var out []domain.AchievementRecord
	for rows.Next() {
		var rec domain.AchievementRecord
		if err := rows.Scan(&rec.Type, &rec.Name, &rec.Description, &rec.EarnedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *AttemptStore) Attempts(ctx context.Context, userID string) ([]domain.AttemptRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT quiz_id, quiz_title, quiz_category, score, total_questions,
		       correct_answers, percentage_score, passed, time_taken, answers,
		       completed_at
		FROM quiz_attempts WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.AttemptRecord
	for rows.Next() {
		var rec domain.AttemptRecord
		var answers []byte
		if err := rows.Scan(&rec.QuizID, &rec.QuizTitle, &rec.QuizCategory,
			&rec.Score, &rec.TotalQuestions, &rec.CorrectAnswers,
			&rec.Percentage, &rec.Passed, &rec.TimeTaken, &answers,
			&rec.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if err := json.Unmarshal(answers, &rec.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CommitAttempt writes the triple in one transaction. The aggregate write is
// a compare-and-swap on the version column; zero rows affected means another
// submission committed first and the whole transaction rolls back with
// ErrVersionConflict so the coordinator can re-run its span.
func (s *AttemptStore) CommitAttempt(ctx context.Context, userID string, attempt domain.AttemptRecord, aggregate domain.UserQuizAggregate, earned []domain.AchievementRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.swapAggregate(ctx, tx, userID, aggregate); err != nil {
		return err
	}

	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO quiz_attempts
			(user_id, quiz_id, quiz_title, quiz_category, score, total_questions,
			 correct_answers, percentage_score, passed, time_taken, answers, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		userID, attempt.QuizID, attempt.QuizTitle, attempt.QuizCategory,
		attempt.Score, attempt.TotalQuestions, attempt.CorrectAnswers,
		attempt.Percentage, attempt.Passed, attempt.TimeTaken, answers,
		attempt.CompletedAt); err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}

	for _, rec := range earned {
		if _, err := tx.Exec(ctx, `
			INSERT INTO quiz_achievements (user_id, type, name, description, earned_at)
			VALUES ($1,$2,$3,$4,$5)`,
			userID, rec.Type, rec.Name, rec.Description, rec.EarnedAt); err != nil {
			return fmt.Errorf("append achievement: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *AttemptStore) swapAggregate(ctx context.Context, tx pgx.Tx, userID string, agg domain.UserQuizAggregate) error {
	if agg.Version == 1 {
		// First commit for this user races on row creation instead of the
		// version column.
		tag, err := tx.Exec(ctx, `
			INSERT INTO user_quiz_stats
				(user_id, total_quiz_score, total_quiz_attempts, best_quiz_score,
				 average_quiz_score, total_quiz_time, quizzes_completed,
				 quizzes_passed, version)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (user_id) DO NOTHING`,
			userID, agg.TotalScore, agg.TotalAttempts, agg.BestScore,
			agg.AverageScore, agg.TotalTime, agg.QuizzesCompleted,
			agg.QuizzesPassed, agg.Version)
		if err != nil {
			return fmt.Errorf("insert aggregate: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrVersionConflict
		}
		return nil
	}

	tag, err := tx.Exec(ctx, `
		UPDATE user_quiz_stats
		SET total_quiz_score=$2, total_quiz_attempts=$3, best_quiz_score=$4,
		    average_quiz_score=$5, total_quiz_time=$6, quizzes_completed=$7,
		    quizzes_passed=$8, version=$9
		WHERE user_id=$1 AND version=$10`,
		userID, agg.TotalScore, agg.TotalAttempts, agg.BestScore,
		agg.AverageScore, agg.TotalTime, agg.QuizzesCompleted,
		agg.QuizzesPassed, agg.Version, agg.Version-1)
	if err != nil {
		return fmt.Errorf("update aggregate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}
