package app

import (
	"culturequiz-service/internal/domain"
)

// FoldAttempt returns the aggregate after absorbing one attempt. Pure fold:
// replaying it over a user's full ledger from a zero aggregate must reproduce
// the stored aggregate exactly, which is the canonical consistency check.
//
// AverageScore divides the raw-score sum by the attempt count rather than
// averaging percentages. Quizzes with different question counts therefore
// weigh unevenly, but this matches the arithmetic users already see.
func FoldAttempt(prior domain.UserQuizAggregate, attempt domain.AttemptRecord) domain.UserQuizAggregate {
	next := prior
	next.TotalScore += attempt.Score
	next.TotalAttempts++
	if attempt.Percentage > next.BestScore {
		next.BestScore = attempt.Percentage
	}
	next.AverageScore = float64(next.TotalScore) / float64(next.TotalAttempts)
	next.TotalTime += attempt.TimeTaken
	next.QuizzesCompleted++
	if attempt.Passed {
		next.QuizzesPassed++
	}
	return next
}

// ReplayLedger folds a full attempt ledger from a zero aggregate. Used by the
// consistency check and by statistics recomputation.
func ReplayLedger(attempts []domain.AttemptRecord) domain.UserQuizAggregate {
	var agg domain.UserQuizAggregate
	for _, attempt := range attempts {
		agg = FoldAttempt(agg, attempt)
	}
	return agg
}

// BreakdownByQuiz groups a user's attempts per quiz: attempt count, mean
// percentage, and best percentage. Titles come from the most recent attempt
// since they are denormalized per record.
func BreakdownByQuiz(attempts []domain.AttemptRecord) []domain.QuizBreakdown {
	index := make(map[string]int)
	var out []domain.QuizBreakdown
	sums := make(map[string]float64)

	for _, attempt := range attempts {
		i, ok := index[attempt.QuizID]
		if !ok {
			i = len(out)
			index[attempt.QuizID] = i
			out = append(out, domain.QuizBreakdown{QuizID: attempt.QuizID})
		}
		entry := &out[i]
		entry.Title = attempt.QuizTitle
		entry.Category = attempt.QuizCategory
		entry.Attempts++
		sums[attempt.QuizID] += attempt.Percentage
		if attempt.Percentage > entry.BestScore {
			entry.BestScore = attempt.Percentage
		}
	}

	for i := range out {
		out[i].AverageScore = sums[out[i].QuizID] / float64(out[i].Attempts)
	}
	return out
}
