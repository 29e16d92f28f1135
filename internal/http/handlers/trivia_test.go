package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/NIKHIL-505/swiftchat-bot/internal/delivery"
	"github.com/NIKHIL-505/swiftchat-bot/internal/trivia"
)

type nullSender struct {
	mu    sync.Mutex
	count int
}

func (s *nullSender) SendAsync(userID string, msgs ...delivery.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count += len(msgs)
}

func newTriviaHandler(t *testing.T, payload string) *TriviaHandler {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	t.Cleanup(upstream.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := trivia.NewService(upstream.URL, upstream.Client(), client, &nullSender{}, time.Minute, nil)
	return NewTriviaHandler(svc, nil)
}

const handlerQuestionsJSON = `{
	"response_code": 0,
	"results": [
		{"type": "multiple", "question": "Q1", "correct_answer": "yes", "incorrect_answers": ["no", "maybe", "never"]}
	]
}`

func TestStartQuizValidation(t *testing.T) {
	h := newTriviaHandler(t, handlerQuestionsJSON)
	req := httptest.NewRequest(http.MethodPost, "/trivia", strings.NewReader(`{"userMobile":"919999999999"}`))
	rec := httptest.NewRecorder()
	h.StartQuiz(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on missing fields, got %d", rec.Code)
	}
}

func TestStartQuizSendsQuestion(t *testing.T) {
	h := newTriviaHandler(t, handlerQuestionsJSON)
	body := `{"userMobile":"919999999999","category":"9","difficulty":"easy"}`
	req := httptest.NewRequest(http.MethodPost, "/trivia", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.StartQuiz(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["message"] != "Question sent" {
		t.Fatalf("unexpected response %#v", resp)
	}
	options, ok := resp["options"].([]any)
	if !ok || len(options) != 4 {
		t.Fatalf("expected 4 options, got %#v", resp["options"])
	}
}

func TestStartQuizNoQuestions(t *testing.T) {
	h := newTriviaHandler(t, `{"response_code":1,"results":[]}`)
	body := `{"userMobile":"919999999999","category":"9","difficulty":"easy"}`
	req := httptest.NewRequest(http.MethodPost, "/trivia", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.StartQuiz(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAnswerQuizNoActiveQuestion(t *testing.T) {
	h := newTriviaHandler(t, handlerQuestionsJSON)
	body := `{"userMobile":"919999999999","answer":"A"}`
	req := httptest.NewRequest(http.MethodPost, "/trivia/answer", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.AnswerQuiz(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
