package app

import (
	"time"

	"culturequiz-service/internal/domain"
)

// EvaluateAchievements decides which badges a committed attempt earns. Rules
// run against the post-fold aggregate and the prior achievement set, in a
// fixed order (first_quiz, perfect_score, speed_demon) so output is stable.
//
// first_quiz is once-ever: the prior set gates it even if the aggregate says
// this is the first completion (a replayed or raced submission must not grant
// it twice). perfect_score and speed_demon are earned per qualifying attempt.
func EvaluateAchievements(
	aggregate domain.UserQuizAggregate,
	attempt domain.AttemptRecord,
	key domain.AnswerKey,
	priorTypes map[string]struct{},
	now time.Time,
) []domain.AchievementRecord {
	var earned []domain.AchievementRecord

	if aggregate.QuizzesCompleted == 1 {
		if _, have := priorTypes[domain.AchievementFirstQuiz]; !have {
			earned = append(earned, domain.AchievementRecord{
				Type:        domain.AchievementFirstQuiz,
				Name:        "First Quiz Completed",
				Description: "Completed your first cultural quiz!",
				EarnedAt:    now,
			})
		}
	}

	if attempt.Percentage == 100 {
		earned = append(earned, domain.AchievementRecord{
			Type:        domain.AchievementPerfectScore,
			Name:        "Perfect Score",
			Description: "Achieved 100% on a quiz!",
			EarnedAt:    now,
		})
	}

	// Strictly under half the time limit.
	if float64(attempt.TimeTaken) < float64(key.TimeLimit)*0.5 {
		earned = append(earned, domain.AchievementRecord{
			Type:        domain.AchievementSpeedDemon,
			Name:        "Speed Demon",
			Description: "Completed a quiz in less than half the time limit!",
			EarnedAt:    now,
		})
	}

	return earned
}

// AchievementTypeSet indexes achievement records by type for the evaluator.
func AchievementTypeSet(records []domain.AchievementRecord) map[string]struct{} {
	set := make(map[string]struct{}, len(records))
	for _, rec := range records {
		set[rec.Type] = struct{}{}
	}
	return set
}
