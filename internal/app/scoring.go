package app

import (
	"culturequiz-service/internal/domain"
)

// ScoreSubmission grades a submission against an answer key. It is a pure
// function: same inputs, same result, no side effects.
//
// TotalQuestions comes from the key, not the submission, so an incomplete
// submission still scores against every question. Duplicate question IDs in
// the submission are resolved first-write-wins, which keeps a client from
// re-answering a question later in the same payload. Answers for questions
// the key does not know are ignored.
func ScoreSubmission(key domain.AnswerKey, answers []domain.SubmittedAnswer) (domain.ScoreResult, error) {
	total := len(key.Correct)
	if total == 0 {
		return domain.ScoreResult{}, domain.ErrQuizUnscorable
	}

	seen := make(map[string]struct{}, len(answers))
	correct := 0
	for _, answer := range answers {
		if _, dup := seen[answer.QuestionID]; dup {
			continue
		}
		seen[answer.QuestionID] = struct{}{}
		if optionID, ok := key.Correct[answer.QuestionID]; ok && optionID == answer.OptionID {
			correct++
		}
	}

	percentage := 100 * float64(correct) / float64(total)
	return domain.ScoreResult{
		CorrectCount:   correct,
		TotalQuestions: total,
		Percentage:     percentage,
		Passed:         percentage >= key.PassingScore,
	}, nil
}
