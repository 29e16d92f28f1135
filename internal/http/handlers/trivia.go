package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NIKHIL-505/swiftchat-bot/internal/trivia"
	"github.com/NIKHIL-505/swiftchat-bot/pkg/logging"
)

// TriviaHandler exposes the quiz start/answer endpoints.
type TriviaHandler struct {
	service *trivia.Service
	logger  *logging.Logger
}

func NewTriviaHandler(service *trivia.Service, logger *logging.Logger) *TriviaHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &TriviaHandler{service: service, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// StartQuiz fetches a question set and sends the first question to the user.
func (h *TriviaHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserMobile string `json:"userMobile"`
		Category   string `json:"category"`
		Difficulty string `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if req.UserMobile == "" || req.Category == "" || req.Difficulty == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "userMobile, category and difficulty are required"})
		return
	}
	state, err := h.service.Start(r.Context(), req.UserMobile, req.Category, req.Difficulty)
	if err != nil {
		if errors.Is(err, trivia.ErrNoQuestions) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "No questions found"})
			return
		}
		h.logger.Error("trivia start failed", "user_mobile", req.UserMobile, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to start quiz"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Question sent",
		"question": state.Question,
		"options":  state.Options,
	})
}

// AnswerQuiz validates the user's answer against the pending question.
func (h *TriviaHandler) AnswerQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserMobile string `json:"userMobile"`
		Answer     string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if req.UserMobile == "" || req.Answer == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "userMobile and answer are required"})
		return
	}
	result, err := h.service.Answer(r.Context(), req.UserMobile, req.Answer)
	if err != nil {
		if errors.Is(err, trivia.ErrNoActiveQuestion) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No active question."})
			return
		}
		h.logger.Error("trivia answer failed", "user_mobile", req.UserMobile, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check answer"})
		return
	}
	if result.Correct {
		writeJSON(w, http.StatusOK, map[string]string{"result": "Correct"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "Wrong", "correct": result.CorrectLabel})
}
