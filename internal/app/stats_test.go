package app

import (
	"testing"
	"time"

	"culturequiz-service/internal/domain"
)

func TestFoldAttempt(t *testing.T) {
	prior := domain.UserQuizAggregate{
		TotalScore:       7,
		TotalAttempts:    2,
		BestScore:        80,
		AverageScore:     3.5,
		TotalTime:        400,
		QuizzesCompleted: 2,
		QuizzesPassed:    1,
	}
	attempt := domain.AttemptRecord{
		Score:      3,
		Percentage: 75,
		Passed:     true,
		TimeTaken:  120,
	}

	got := FoldAttempt(prior, attempt)

	if got.TotalScore != 10 || got.TotalAttempts != 3 {
		t.Fatalf("totals wrong: %+v", got)
	}
	if got.BestScore != 80 {
		t.Fatalf("best score should keep prior max, got %v", got.BestScore)
	}
	if got.AverageScore != float64(10)/3 {
		t.Fatalf("average %v, want %v", got.AverageScore, float64(10)/3)
	}
	if got.TotalTime != 520 || got.QuizzesCompleted != 3 || got.QuizzesPassed != 2 {
		t.Fatalf("counters wrong: %+v", got)
	}
}

func TestFoldAttemptRaisesBestScore(t *testing.T) {
	got := FoldAttempt(domain.UserQuizAggregate{BestScore: 50}, domain.AttemptRecord{Percentage: 90})
	if got.BestScore != 90 {
		t.Fatalf("best score %v, want 90", got.BestScore)
	}
}

// Replaying the ledger from zero must reproduce the incrementally folded
// aggregate field for field.
func TestReplayLedgerMatchesIncrementalFold(t *testing.T) {
	attempts := []domain.AttemptRecord{
		{Score: 2, Percentage: 40, Passed: false, TimeTaken: 300},
		{Score: 5, Percentage: 100, Passed: true, TimeTaken: 90},
		{Score: 0, Percentage: 0, Passed: false, TimeTaken: 600},
		{Score: 4, Percentage: 80, Passed: true, TimeTaken: 250},
	}

	var incremental domain.UserQuizAggregate
	for _, attempt := range attempts {
		incremental = FoldAttempt(incremental, attempt)
	}

	replayed := ReplayLedger(attempts)
	if replayed != incremental {
		t.Fatalf("replay mismatch:\nreplayed    %+v\nincremental %+v", replayed, incremental)
	}
	if replayed.BestScore != 100 || replayed.TotalAttempts != 4 || replayed.QuizzesPassed != 2 {
		t.Fatalf("unexpected replay result: %+v", replayed)
	}
}

func TestBreakdownByQuiz(t *testing.T) {
	now := time.Now()
	attempts := []domain.AttemptRecord{
		{QuizID: "a", QuizTitle: "Quiz A", QuizCategory: "history", Percentage: 50, CompletedAt: now},
		{QuizID: "b", QuizTitle: "Quiz B", QuizCategory: "art", Percentage: 100, CompletedAt: now},
		{QuizID: "a", QuizTitle: "Quiz A", QuizCategory: "history", Percentage: 90, CompletedAt: now},
	}

	got := BreakdownByQuiz(attempts)
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	if got[0].QuizID != "a" || got[0].Attempts != 2 || got[0].AverageScore != 70 || got[0].BestScore != 90 {
		t.Fatalf("quiz a breakdown wrong: %+v", got[0])
	}
	if got[0].Category != "history" || got[1].Category != "art" {
		t.Fatalf("categories not carried into breakdown: %+v", got)
	}
	if got[1].QuizID != "b" || got[1].Attempts != 1 || got[1].AverageScore != 100 {
		t.Fatalf("quiz b breakdown wrong: %+v", got[1])
	}
}
