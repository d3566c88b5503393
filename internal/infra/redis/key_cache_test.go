package redis

import (
	"context"
	"testing"
	"time"

	"culturequiz-service/internal/domain"
	"culturequiz-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestKeyCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{
		QuizLoader: memory.NewStaticQuizLoader(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	cache := NewKeyCache(client, loader, time.Minute)

	key, err := cache.GetQuizKey(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if key.Correct["q1"] != "o2" {
		t.Fatalf("wrong correct option: %+v", key.Correct)
	}
	if !mr.Exists("quiz:quiz-1:answers") || !mr.Exists("quiz:quiz-1:meta") {
		t.Fatalf("expected redis hashes to be populated")
	}

	// Second call must come from redis, including the pass/time policy.
	key, err = cache.GetQuizKey(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get key 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if key.PassingScore != 60 || key.TimeLimit != 600 || key.Title != "Heritage Basics" {
		t.Fatalf("meta lost in cache round-trip: %+v", key)
	}
}

func TestKeyCacheReloadsWhenMetaLost(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		QuizLoader: memory.NewStaticQuizLoader(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	cache := NewKeyCache(newClient(mr), loader, time.Minute)

	if _, err := cache.GetQuizKey(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	// Evict only the meta hash; the answers hash alone must count as a miss,
	// not produce a key with a zero pass policy.
	mr.Del("quiz:quiz-1:meta")

	key, err := cache.GetQuizKey(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get key after eviction: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload from backing store, loader calls=%d", loader.calls)
	}
	if key.PassingScore != 60 || key.TimeLimit != 600 || key.Title != "Heritage Basics" {
		t.Fatalf("rebuilt key lost its policy: %+v", key)
	}
	if !mr.Exists("quiz:quiz-1:meta") {
		t.Fatalf("meta hash not repopulated")
	}
}

func TestKeyCacheRejectsInactiveQuiz(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	inactive := sampleQuiz()
	inactive.Active = false
	cache := NewKeyCache(newClient(mr), memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": inactive,
	}), time.Minute)

	if _, err := cache.GetQuizKey(context.Background(), "quiz-1"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	if mr.Exists("quiz:quiz-1:answers") {
		t.Fatalf("inactive quiz must not be cached")
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:           "quiz-1",
		Title:        "Heritage Basics",
		Category:     "heritage",
		TimeLimit:    600,
		PassingScore: 60,
		Active:       true,
		Questions: []domain.Question{
			{
				ID:     "q1",
				Prompt: "What is 2 + 2?",
				Options: []domain.Option{
					{ID: "o1", Text: "3", Correct: false},
					{ID: "o2", Text: "4", Correct: true},
				},
				Points: 1,
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
