package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"culturequiz-service/internal/app"
	"culturequiz-service/internal/domain"
)

// TokenVerifier maps a bearer credential to a user identifier or rejects it.
// The real implementation lives in the identity service; the engine only
// trusts the verdict.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// APIHandler exposes the submission engine and catalog over REST.
type APIHandler struct {
	service *app.AttemptService
	catalog app.Catalog
	verify  TokenVerifier
}

func NewAPIHandler(service *app.AttemptService, catalog app.Catalog, verify TokenVerifier) *APIHandler {
	return &APIHandler{service: service, catalog: catalog, verify: verify}
}

// Register wires all routes onto the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /quizzes", h.listQuizzes)
	mux.HandleFunc("GET /quizzes/{quizID}", h.getQuiz)
	mux.HandleFunc("POST /quizzes/{quizID}/submit", h.submitAttempt)
	mux.HandleFunc("GET /user/quiz-history", h.quizHistory)
	mux.HandleFunc("GET /user/statistics", h.userStatistics)
}

type quizSummary struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Category       string  `json:"category"`
	Difficulty     string  `json:"difficulty_level"`
	TotalQuestions int     `json:"total_questions"`
	TimeLimit      int     `json:"time_limit"`
	PassingScore   float64 `json:"passing_score"`
}

func (h *APIHandler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.catalog.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	summaries := make([]quizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		if !quiz.Active {
			continue
		}
		summaries = append(summaries, quizSummary{
			ID:             quiz.ID,
			Title:          quiz.Title,
			Category:       quiz.Category,
			Difficulty:     quiz.Difficulty,
			TotalQuestions: len(quiz.Questions),
			TimeLimit:      quiz.TimeLimit,
			PassingScore:   quiz.PassingScore,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizzes": summaries})
}

// optionView and questionView hide correct flags from quiz takers.
type optionView struct {
	ID   string `json:"id"`
	Text string `json:"option_text"`
}

type questionView struct {
	ID      string       `json:"id"`
	Prompt  string       `json:"question_text"`
	Points  int          `json:"points"`
	Options []optionView `json:"options"`
}

func (h *APIHandler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.catalog.LoadQuiz(r.Context(), r.PathValue("quizID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !quiz.Active {
		writeError(w, domain.ErrQuizNotFound)
		return
	}

	questions := make([]questionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		options := make([]optionView, 0, len(q.Options))
		for _, opt := range q.Options {
			options = append(options, optionView{ID: opt.ID, Text: opt.Text})
		}
		questions = append(questions, questionView{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Points:  q.Points,
			Options: options,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"quiz": map[string]any{
		"id":            quiz.ID,
		"title":         quiz.Title,
		"category":      quiz.Category,
		"difficulty":    quiz.Difficulty,
		"time_limit":    quiz.TimeLimit,
		"passing_score": quiz.PassingScore,
		"questions":     questions,
	}})
}

type submitRequest struct {
	Answers   []domain.SubmittedAnswer `json:"answers"`
	TimeTaken int                      `json:"time_taken"`
}

func (h *APIHandler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidSubmission)
		return
	}

	result, err := h.service.SubmitAttempt(r.Context(), userID, r.PathValue("quizID"), req.Answers, req.TimeTaken)
	if err != nil {
		writeError(w, err)
		return
	}
	if result.NewAchievements == nil {
		result.NewAchievements = []domain.AchievementRecord{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) quizHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	history, err := h.service.GetHistory(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if history == nil {
		history = []domain.AttemptRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"quiz_history": history})
}

func (h *APIHandler) userStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	stats, err := h.service.GetStatistics(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statisticsResponse(stats))
}

// statisticsResponse shapes the flat statistics view into the nested payload
// clients consume: counters under "statistics", ledgers alongside.
func statisticsResponse(stats domain.UserStatistics) map[string]any {
	achievements := stats.Achievements
	if achievements == nil {
		achievements = []domain.AchievementRecord{}
	}
	breakdown := stats.Breakdown
	if breakdown == nil {
		breakdown = []domain.QuizBreakdown{}
	}
	return map[string]any{
		"statistics": map[string]any{
			"total_attempts":    stats.TotalAttempts,
			"passed_attempts":   stats.PassedAttempts,
			"average_score":     stats.AverageScore,
			"best_score":        stats.BestScore,
			"total_time":        stats.TotalTime,
			"quizzes_attempted": stats.QuizzesAttempted,
		},
		"achievements":   achievements,
		"category_stats": breakdown,
	}
}

func (h *APIHandler) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, domain.ErrUnauthorized)
		return "", false
	}
	userID, err := h.verify.Verify(r.Context(), token)
	if err != nil {
		writeError(w, domain.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidSubmission):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrQuizUnscorable):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConcurrencyExhausted):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
