package app

import (
	"testing"
	"time"

	"culturequiz-service/internal/domain"
)

var testClock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestEvaluateAchievementsFirstQuiz(t *testing.T) {
	agg := domain.UserQuizAggregate{QuizzesCompleted: 1}
	attempt := domain.AttemptRecord{Percentage: 40, TimeTaken: 500}
	key := domain.AnswerKey{TimeLimit: 600}

	earned := EvaluateAchievements(agg, attempt, key, nil, testClock)
	if len(earned) != 1 || earned[0].Type != domain.AchievementFirstQuiz {
		t.Fatalf("expected first_quiz only, got %+v", earned)
	}
	if !earned[0].EarnedAt.Equal(testClock) {
		t.Fatalf("earned_at should be the processing timestamp")
	}

	// Already granted: never again, even if the aggregate says first.
	prior := map[string]struct{}{domain.AchievementFirstQuiz: {}}
	earned = EvaluateAchievements(agg, attempt, key, prior, testClock)
	if len(earned) != 0 {
		t.Fatalf("first_quiz must be once-ever, got %+v", earned)
	}
}

func TestEvaluateAchievementsPerfectScoreRepeats(t *testing.T) {
	agg := domain.UserQuizAggregate{QuizzesCompleted: 5}
	attempt := domain.AttemptRecord{Percentage: 100, TimeTaken: 500}
	key := domain.AnswerKey{TimeLimit: 600}
	prior := map[string]struct{}{
		domain.AchievementFirstQuiz:    {},
		domain.AchievementPerfectScore: {},
	}

	earned := EvaluateAchievements(agg, attempt, key, prior, testClock)
	if len(earned) != 1 || earned[0].Type != domain.AchievementPerfectScore {
		t.Fatalf("perfect_score should repeat, got %+v", earned)
	}
}

func TestEvaluateAchievementsSpeedDemonBoundary(t *testing.T) {
	agg := domain.UserQuizAggregate{QuizzesCompleted: 2}
	key := domain.AnswerKey{TimeLimit: 600}

	fast := domain.AttemptRecord{Percentage: 50, TimeTaken: 299}
	earned := EvaluateAchievements(agg, fast, key, nil, testClock)
	if len(earned) != 1 || earned[0].Type != domain.AchievementSpeedDemon {
		t.Fatalf("299s of 600s should earn speed_demon, got %+v", earned)
	}

	// Exactly half the limit does not qualify; the bound is strict.
	onTheLine := domain.AttemptRecord{Percentage: 50, TimeTaken: 300}
	earned = EvaluateAchievements(agg, onTheLine, key, nil, testClock)
	if len(earned) != 0 {
		t.Fatalf("300s of 600s must not earn speed_demon, got %+v", earned)
	}
}

func TestEvaluateAchievementsOrderIsStable(t *testing.T) {
	agg := domain.UserQuizAggregate{QuizzesCompleted: 1}
	attempt := domain.AttemptRecord{Percentage: 100, TimeTaken: 100}
	key := domain.AnswerKey{TimeLimit: 600}

	earned := EvaluateAchievements(agg, attempt, key, nil, testClock)
	want := []string{
		domain.AchievementFirstQuiz,
		domain.AchievementPerfectScore,
		domain.AchievementSpeedDemon,
	}
	if len(earned) != len(want) {
		t.Fatalf("expected %d achievements, got %+v", len(want), earned)
	}
	for i, typ := range want {
		if earned[i].Type != typ {
			t.Fatalf("position %d: got %s, want %s", i, earned[i].Type, typ)
		}
	}
}
