package domain

import "time"

// Option represents a possible answer for a question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
	Points  int      `json:"points"` // defaults to 1 if zero
}

// Quiz is the catalog view of a quiz: metadata plus its ordered questions.
// The engine treats quiz content as read-only.
type Quiz struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Category     string     `json:"category"`
	Difficulty   string     `json:"difficulty"`
	Questions    []Question `json:"questions"`
	TimeLimit    int        `json:"timeLimit"`    // seconds
	PassingScore float64    `json:"passingScore"` // percentage, 0-100
	Active       bool       `json:"active"`
}

// AnswerKey is the scoring-relevant projection of a quiz: one correct option
// per question plus the pass/time policy. Submission processing only needs
// this shape, so caches store it instead of the full quiz.
type AnswerKey struct {
	QuizID       string
	Title        string
	Category     string
	TimeLimit    int
	PassingScore float64
	Correct      map[string]string // questionID -> correct optionID
}

// Key derives the answer key from a quiz. Questions without a correct option
// are not scorable and are excluded.
func (q Quiz) Key() AnswerKey {
	correct := make(map[string]string, len(q.Questions))
	for _, question := range q.Questions {
		for _, opt := range question.Options {
			if opt.Correct {
				correct[question.ID] = opt.ID
				break
			}
		}
	}
	return AnswerKey{
		QuizID:       q.ID,
		Title:        q.Title,
		Category:     q.Category,
		TimeLimit:    q.TimeLimit,
		PassingScore: q.PassingScore,
		Correct:      correct,
	}
}

// SubmittedAnswer is one answer within a submission.
type SubmittedAnswer struct {
	QuestionID string `json:"question_id"`
	OptionID   string `json:"selected_option_id"`
	TimeTaken  int    `json:"time_taken,omitempty"` // seconds spent on this question
}

// ScoreResult is the outcome of scoring one submission against an answer key.
type ScoreResult struct {
	CorrectCount   int
	TotalQuestions int
	Percentage     float64
	Passed         bool
}

// AttemptRecord is the immutable ledger entry for one completed attempt.
// QuizTitle and QuizCategory are denormalized at creation time since the
// catalog may change later.
type AttemptRecord struct {
	QuizID         string            `json:"quiz_id"`
	QuizTitle      string            `json:"quiz_title"`
	QuizCategory   string            `json:"quiz_category,omitempty"`
	Score          int               `json:"score"`
	TotalQuestions int               `json:"total_questions"`
	CorrectAnswers int               `json:"correct_answers"`
	Percentage     float64           `json:"percentage_score"`
	Passed         bool              `json:"passed"`
	TimeTaken      int               `json:"time_taken"`
	Answers        []SubmittedAnswer `json:"answers"`
	CompletedAt    time.Time         `json:"completed_at"`
}

// AchievementRecord is an immutable ledger entry for one earned badge.
type AchievementRecord struct {
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
}

// Achievement type identifiers. One-time types are enforced by the evaluator
// against the prior achievement set, not by storage.
const (
	AchievementFirstQuiz    = "first_quiz"
	AchievementPerfectScore = "perfect_score"
	AchievementSpeedDemon   = "speed_demon"
)

// UserQuizAggregate is the rolling per-user statistics record. Every counter
// is a fold over the attempt ledger; BestScore and AverageScore are
// recomputable caches. Version is the optimistic-concurrency token owned by
// storage; zero means the row does not exist yet.
type UserQuizAggregate struct {
	TotalScore       int     `json:"total_quiz_score"`
	TotalAttempts    int     `json:"total_quiz_attempts"`
	BestScore        float64 `json:"best_quiz_score"`    // max percentage ever
	AverageScore     float64 `json:"average_quiz_score"` // raw-score sum / attempts
	TotalTime        int     `json:"total_quiz_time"`    // seconds
	QuizzesCompleted int     `json:"quizzes_completed"`
	QuizzesPassed    int     `json:"quizzes_passed"`

	Version int64 `json:"-"`
}

// AttemptResult is what SubmitAttempt returns to the caller.
type AttemptResult struct {
	Score           int                 `json:"score"`
	TotalQuestions  int                 `json:"total_questions"`
	CorrectAnswers  int                 `json:"correct_answers"`
	Percentage      float64             `json:"percentage_score"`
	Passed          bool                `json:"passed"`
	TimeTaken       int                 `json:"time_taken"`
	NewAchievements []AchievementRecord `json:"new_achievements"`
}

// QuizBreakdown summarizes a user's attempts against a single quiz.
type QuizBreakdown struct {
	QuizID       string  `json:"quiz_id"`
	Category     string  `json:"category"`
	Title        string  `json:"title"`
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"average_score"` // mean percentage across attempts
	BestScore    float64 `json:"best_score"`    // max percentage
}

// UserStatistics is the statistics view returned by GetStatistics.
type UserStatistics struct {
	TotalAttempts    int                 `json:"total_attempts"`
	PassedAttempts   int                 `json:"passed_attempts"`
	AverageScore     float64             `json:"average_score"`
	BestScore        float64             `json:"best_score"`
	TotalTime        int                 `json:"total_time"`
	QuizzesAttempted int                 `json:"quizzes_attempted"`
	Achievements     []AchievementRecord `json:"achievements"`
	Breakdown        []QuizBreakdown     `json:"category_stats"`
}
