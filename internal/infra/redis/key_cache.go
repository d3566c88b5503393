package redis

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"culturequiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz content from a backing store (e.g., Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// KeyCache caches quiz answer keys in Redis and falls back to a loader on
// cache miss. The key is stored as two hashes per quiz:
//
//	HSET quiz:{quizID}:answers {questionID} {correctOptionID}
//	HSET quiz:{quizID}:meta    title|category|timeLimit|passingScore
//
// Only the scoring projection is cached; full quiz content stays in the
// backing store.
type KeyCache struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewKeyCache(client *redis.Client, loader QuizLoader, ttl time.Duration) *KeyCache {
	return &KeyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *KeyCache) GetQuizKey(ctx context.Context, quizID string) (domain.AnswerKey, error) {
	answersKey := c.answersKey(quizID)
	metaKey := c.metaKey(quizID)

	// The two hashes can die independently (eviction, staggered expiry). A
	// key rebuilt without its meta would score against a zero pass policy,
	// so anything short of both hashes present is a miss.
	answers, err := c.client.HGetAll(ctx, answersKey).Result()
	if err == nil && len(answers) > 0 {
		meta, metaErr := c.client.HGetAll(ctx, metaKey).Result()
		if metaErr == nil && len(meta) > 0 {
			return buildKeyFromCache(quizID, answers, meta), nil
		}
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		answers, err := c.client.HGetAll(ctx, answersKey).Result()
		if err == nil && len(answers) > 0 {
			meta, metaErr := c.client.HGetAll(ctx, metaKey).Result()
			if metaErr == nil && len(meta) > 0 {
				return buildKeyFromCache(quizID, answers, meta), nil
			}
		}

		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.AnswerKey{}, err
		}
		if !quiz.Active {
			return domain.AnswerKey{}, domain.ErrQuizNotFound
		}
		key := quiz.Key()

		ttl := c.ttlWithJitter()
		pipe := c.client.Pipeline()
		for questionID, optionID := range key.Correct {
			pipe.HSet(ctx, answersKey, questionID, optionID)
		}
		pipe.HSet(ctx, metaKey,
			"title", key.Title,
			"category", key.Category,
			"timeLimit", key.TimeLimit,
			"passingScore", key.PassingScore,
		)
		if ttl > 0 {
			pipe.Expire(ctx, answersKey, ttl)
			pipe.Expire(ctx, metaKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return result.(domain.AnswerKey), nil
}

func (c *KeyCache) answersKey(quizID string) string {
	return "quiz:" + quizID + ":answers"
}

func (c *KeyCache) metaKey(quizID string) string {
	return "quiz:" + quizID + ":meta"
}

func buildKeyFromCache(quizID string, answers, meta map[string]string) domain.AnswerKey {
	correct := make(map[string]string, len(answers))
	for questionID, optionID := range answers {
		correct[questionID] = optionID
	}
	key := domain.AnswerKey{
		QuizID:   quizID,
		Title:    meta["title"],
		Category: meta["category"],
		Correct:  correct,
	}
	if raw, ok := meta["timeLimit"]; ok {
		if v, err := strconv.Atoi(raw); err == nil {
			key.TimeLimit = v
		}
	}
	if raw, ok := meta["passingScore"]; ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			key.PassingScore = v
		}
	}
	return key
}

func (c *KeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
