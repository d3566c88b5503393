package app

import (
	"testing"

	"culturequiz-service/internal/domain"
)

func TestScoreSubmission(t *testing.T) {
	key := domain.AnswerKey{
		QuizID:       "quiz-1",
		PassingScore: 60,
		Correct:      map[string]string{"q1": "a", "q2": "b"},
	}

	tests := []struct {
		name        string
		answers     []domain.SubmittedAnswer
		wantCorrect int
		wantTotal   int
		wantPct     float64
	}{
		{
			name: "one of two correct",
			answers: []domain.SubmittedAnswer{
				{QuestionID: "q1", OptionID: "a"},
				{QuestionID: "q2", OptionID: "c"},
			},
			wantCorrect: 1, wantTotal: 2, wantPct: 50,
		},
		{
			name: "missing answers still score against full key",
			answers: []domain.SubmittedAnswer{
				{QuestionID: "q1", OptionID: "a"},
			},
			wantCorrect: 1, wantTotal: 2, wantPct: 50,
		},
		{
			name: "unknown question ignored",
			answers: []domain.SubmittedAnswer{
				{QuestionID: "q1", OptionID: "a"},
				{QuestionID: "q9", OptionID: "a"},
			},
			wantCorrect: 1, wantTotal: 2, wantPct: 50,
		},
		{
			name: "duplicate question first answer wins",
			answers: []domain.SubmittedAnswer{
				{QuestionID: "q1", OptionID: "x"},
				{QuestionID: "q1", OptionID: "a"},
				{QuestionID: "q2", OptionID: "b"},
			},
			wantCorrect: 1, wantTotal: 2, wantPct: 50,
		},
		{
			name: "duplicate correct first still counts once",
			answers: []domain.SubmittedAnswer{
				{QuestionID: "q1", OptionID: "a"},
				{QuestionID: "q1", OptionID: "a"},
				{QuestionID: "q2", OptionID: "b"},
			},
			wantCorrect: 2, wantTotal: 2, wantPct: 100,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ScoreSubmission(key, tc.answers)
			if err != nil {
				t.Fatalf("score: %v", err)
			}
			if got.CorrectCount != tc.wantCorrect || got.TotalQuestions != tc.wantTotal {
				t.Fatalf("got %d/%d, want %d/%d", got.CorrectCount, got.TotalQuestions, tc.wantCorrect, tc.wantTotal)
			}
			if got.Percentage != tc.wantPct {
				t.Fatalf("percentage %v, want %v", got.Percentage, tc.wantPct)
			}
		})
	}
}

func TestScoreSubmissionPassBoundary(t *testing.T) {
	// Five questions, passing score 60: exactly 60% must pass.
	key := domain.AnswerKey{
		PassingScore: 60,
		Correct: map[string]string{
			"q1": "a", "q2": "a", "q3": "a", "q4": "a", "q5": "a",
		},
	}

	threeRight := []domain.SubmittedAnswer{
		{QuestionID: "q1", OptionID: "a"},
		{QuestionID: "q2", OptionID: "a"},
		{QuestionID: "q3", OptionID: "a"},
		{QuestionID: "q4", OptionID: "x"},
		{QuestionID: "q5", OptionID: "x"},
	}

	got, err := ScoreSubmission(key, threeRight)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got.Percentage != 60 || !got.Passed {
		t.Fatalf("expected exactly 60%% to pass, got pct=%v passed=%v", got.Percentage, got.Passed)
	}

	// Anything under the threshold fails.
	key.PassingScore = 60.001
	got, err = ScoreSubmission(key, threeRight)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got.Passed {
		t.Fatalf("expected 60%% to fail a 60.001 threshold")
	}
}

func TestScoreSubmissionUnscorableQuiz(t *testing.T) {
	key := domain.AnswerKey{PassingScore: 60, Correct: map[string]string{}}
	_, err := ScoreSubmission(key, []domain.SubmittedAnswer{{QuestionID: "q1", OptionID: "a"}})
	if err != domain.ErrQuizUnscorable {
		t.Fatalf("expected ErrQuizUnscorable, got %v", err)
	}
}
