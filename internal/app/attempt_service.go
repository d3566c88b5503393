package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"culturequiz-service/internal/domain"
)

// QuizRepository loads quiz answer keys (from cache/backing store).
type QuizRepository interface {
	GetQuizKey(ctx context.Context, quizID string) (domain.AnswerKey, error)
}

// Catalog serves quiz content for display. Read-only from the engine's side.
type Catalog interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AttemptStore abstracts the durable per-user state: the append-only attempt
// and achievement ledgers plus the versioned rolling aggregate.
//
// CommitAttempt must apply the ledger append, the aggregate replacement, and
// the achievement appends atomically, and must fail with
// domain.ErrVersionConflict when the stored aggregate version no longer
// matches aggregate.Version-1 (i.e. another submission committed in between).
type AttemptStore interface {
	LoadAggregate(ctx context.Context, userID string) (domain.UserQuizAggregate, error)
	LoadAchievements(ctx context.Context, userID string) ([]domain.AchievementRecord, error)
	Attempts(ctx context.Context, userID string) ([]domain.AttemptRecord, error)
	CommitAttempt(ctx context.Context, userID string, attempt domain.AttemptRecord, aggregate domain.UserQuizAggregate, earned []domain.AchievementRecord) error
}

const defaultCommitRetries = 3

// AttemptService coordinates submission processing: validate, score, fold
// statistics, evaluate achievements, and commit, with per-user
// serializability via optimistic versioning on the aggregate.
type AttemptService struct {
	quizzes QuizRepository
	store   AttemptStore
	feed    *StatsFeed
	clock   func() time.Time
	retries int
}

// Option configures an AttemptService.
type Option func(*AttemptService)

// WithClock injects a deterministic clock for tests.
func WithClock(now func() time.Time) Option {
	return func(s *AttemptService) { s.clock = now }
}

// WithCommitRetries bounds how often a version conflict is retried before the
// submission fails as transient.
func WithCommitRetries(n int) Option {
	return func(s *AttemptService) {
		if n > 0 {
			s.retries = n
		}
	}
}

// WithStatsFeed publishes each user's refreshed statistics after a commit.
func WithStatsFeed(feed *StatsFeed) Option {
	return func(s *AttemptService) { s.feed = feed }
}

func NewAttemptService(quizzes QuizRepository, store AttemptStore, opts ...Option) *AttemptService {
	s := &AttemptService{
		quizzes: quizzes,
		store:   store,
		clock:   time.Now,
		retries: defaultCommitRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitAttempt processes one completed quiz run end to end and returns the
// score breakdown plus any newly earned achievements. On success exactly one
// attempt has been appended and exactly one aggregate fold applied, no matter
// how many submissions race for the same user.
func (s *AttemptService) SubmitAttempt(ctx context.Context, userID, quizID string, answers []domain.SubmittedAnswer, timeTaken int) (domain.AttemptResult, error) {
	if userID == "" || quizID == "" || len(answers) == 0 || timeTaken < 0 {
		return domain.AttemptResult{}, domain.ErrInvalidSubmission
	}

	key, err := s.quizzes.GetQuizKey(ctx, quizID)
	if err != nil {
		return domain.AttemptResult{}, err
	}

	score, err := ScoreSubmission(key, answers)
	if err != nil {
		return domain.AttemptResult{}, err
	}

	attempt := domain.AttemptRecord{
		QuizID:         quizID,
		QuizTitle:      key.Title,
		QuizCategory:   key.Category,
		Score:          score.CorrectCount,
		TotalQuestions: score.TotalQuestions,
		CorrectAnswers: score.CorrectCount,
		Percentage:     score.Percentage,
		Passed:         score.Passed,
		TimeTaken:      timeTaken,
		Answers:        answers,
		CompletedAt:    s.clock(),
	}

	earned, err := s.commitWithRetry(ctx, userID, attempt, key)
	if err != nil {
		return domain.AttemptResult{}, err
	}

	if s.feed != nil {
		if stats, err := s.GetStatistics(ctx, userID); err == nil {
			s.feed.Publish(userID, stats)
		} else {
			// The commit already succeeded; a stale feed is tolerable, a
			// silent one is not.
			log.Printf("stats feed refresh for user %s: %v", userID, err)
		}
	}

	return domain.AttemptResult{
		Score:           attempt.Score,
		TotalQuestions:  attempt.TotalQuestions,
		CorrectAnswers:  attempt.CorrectAnswers,
		Percentage:      attempt.Percentage,
		Passed:          attempt.Passed,
		TimeTaken:       attempt.TimeTaken,
		NewAchievements: earned,
	}, nil
}

// commitWithRetry runs the aggregate-and-commit span. The current aggregate
// and prior achievement set are loaded inside the loop so every retry sees
// the state left behind by whichever submission won the previous round.
func (s *AttemptService) commitWithRetry(ctx context.Context, userID string, attempt domain.AttemptRecord, key domain.AnswerKey) ([]domain.AchievementRecord, error) {
	for i := 0; i < s.retries; i++ {
		prior, err := s.store.LoadAggregate(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load aggregate: %w", err)
		}
		priorAchievements, err := s.store.LoadAchievements(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load achievements: %w", err)
		}

		next := FoldAttempt(prior, attempt)
		next.Version = prior.Version + 1
		earned := EvaluateAchievements(next, attempt, key, AchievementTypeSet(priorAchievements), s.clock())

		err = s.store.CommitAttempt(ctx, userID, attempt, next, earned)
		if err == nil {
			return earned, nil
		}
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		return nil, fmt.Errorf("commit attempt: %w", err)
	}
	return nil, domain.ErrConcurrencyExhausted
}

// GetHistory returns the user's attempts, most recent first.
func (s *AttemptService) GetHistory(ctx context.Context, userID string) ([]domain.AttemptRecord, error) {
	attempts, err := s.store.Attempts(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].CompletedAt.After(attempts[j].CompletedAt)
	})
	return attempts, nil
}

// GetStatistics assembles the rolling aggregate, the achievement ledger, and
// the per-quiz breakdown into one view.
func (s *AttemptService) GetStatistics(ctx context.Context, userID string) (domain.UserStatistics, error) {
	aggregate, err := s.store.LoadAggregate(ctx, userID)
	if err != nil {
		return domain.UserStatistics{}, err
	}
	achievements, err := s.store.LoadAchievements(ctx, userID)
	if err != nil {
		return domain.UserStatistics{}, err
	}
	attempts, err := s.store.Attempts(ctx, userID)
	if err != nil {
		return domain.UserStatistics{}, err
	}

	return domain.UserStatistics{
		TotalAttempts:    aggregate.TotalAttempts,
		PassedAttempts:   aggregate.QuizzesPassed,
		AverageScore:     aggregate.AverageScore,
		BestScore:        aggregate.BestScore,
		TotalTime:        aggregate.TotalTime,
		QuizzesAttempted: aggregate.QuizzesCompleted,
		Achievements:     achievements,
		Breakdown:        BreakdownByQuiz(attempts),
	}, nil
}
