package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NIKHIL-505/swiftchat-bot/internal/delivery"
	"github.com/NIKHIL-505/swiftchat-bot/pkg/logging"
)

// ErrNoActiveQuestion indicates an answer arrived with no quiz in flight.
var ErrNoActiveQuestion = errors.New("trivia: no active question")

// ErrNoQuestions indicates the trivia API returned an empty set.
var ErrNoQuestions = errors.New("trivia: no questions found")

var optionLabels = []string{"A", "B", "C", "D"}

// Question is one multiple-choice question from the Open Trivia DB.
type Question struct {
	Type             string   `json:"type"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// QuizState is the per-user pending question, stored with a TTL so abandoned
// quizzes expire on their own.
type QuizState struct {
	CorrectLabel string   `json:"correctLabel"`
	Options      []string `json:"options"`
	Question     string   `json:"question"`
}

// Sender delivers quiz messages.
type Sender interface {
	SendAsync(userID string, msgs ...delivery.Message)
}

// Service runs the trivia quiz: fetches questions, sends them, validates
// answers against the stored state.
type Service struct {
	apiURL     string
	httpClient *http.Client
	redis      *redis.Client
	sender     Sender
	logger     *logging.Logger
	stateTTL   time.Duration
	shuffle    func(n int, swap func(i, j int))
}

func NewService(apiURL string, httpClient *http.Client, rdb *redis.Client, sender Sender, stateTTL time.Duration, logger *logging.Logger) *Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if stateTTL <= 0 {
		stateTTL = 30 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: httpClient,
		redis:      rdb,
		sender:     sender,
		logger:     logger,
		stateTTL:   stateTTL,
		shuffle:    rand.Shuffle,
	}
}

// FetchQuestions pulls 10 multiple-choice questions for a category/difficulty.
func (s *Service) FetchQuestions(ctx context.Context, category, difficulty string) ([]Question, error) {
	q := url.Values{}
	q.Set("amount", "10")
	q.Set("category", category)
	q.Set("difficulty", difficulty)
	q.Set("type", "multiple")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("trivia: build request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trivia: fetch questions: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trivia: unexpected status %d", resp.StatusCode)
	}
	var payload struct {
		ResponseCode int        `json:"response_code"`
		Results      []Question `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("trivia: decode response: %w", err)
	}
	return payload.Results, nil
}

// Start fetches a question set, sends the first question to the user and
// stores the pending state. Returns the formatted question and its options.
func (s *Service) Start(ctx context.Context, userID, category, difficulty string) (*QuizState, error) {
	questions, err := s.FetchQuestions(ctx, category, difficulty)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	state, text := s.prepare(questions[0])
	if err := s.saveState(ctx, userID, state); err != nil {
		return nil, err
	}
	s.sender.SendAsync(userID, delivery.NewText(text))
	return state, nil
}

// AnswerResult is the verdict for one answered question.
type AnswerResult struct {
	Correct      bool
	CorrectLabel string
}

// Answer validates the user's answer against the pending question, replies
// with the verdict and clears the state.
func (s *Service) Answer(ctx context.Context, userID, answer string) (*AnswerResult, error) {
	state, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		s.sender.SendAsync(userID, delivery.NewText("No active question. Please start a new quiz."))
		return nil, ErrNoActiveQuestion
	}
	defer func() {
		if err := s.redis.Del(ctx, quizKey(userID)).Err(); err != nil {
			s.logger.Error("failed to clear quiz state", "user_mobile", userID, "error", err)
		}
	}()

	result := &AnswerResult{CorrectLabel: state.CorrectLabel}
	if strings.EqualFold(strings.TrimSpace(answer), state.CorrectLabel) {
		result.Correct = true
		s.sender.SendAsync(userID, delivery.NewText("Correct! 🎉"))
		return result, nil
	}
	idx := int(state.CorrectLabel[0] - 'A')
	s.sender.SendAsync(userID, delivery.NewText(
		fmt.Sprintf("Wrong! The correct answer was %s) %s.", state.CorrectLabel, state.Options[idx]),
	))
	return result, nil
}

// prepare shuffles the options, labels them A-D and formats the question text.
func (s *Service) prepare(q Question) (*QuizState, string) {
	options := make([]string, 0, 1+len(q.IncorrectAnswers))
	options = append(options, html.UnescapeString(q.CorrectAnswer))
	for _, a := range q.IncorrectAnswers {
		options = append(options, html.UnescapeString(a))
	}
	s.shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	correctLabel := ""
	lines := make([]string, 0, len(options))
	correct := html.UnescapeString(q.CorrectAnswer)
	for i, opt := range options {
		if opt == correct {
			correctLabel = optionLabels[i]
		}
		lines = append(lines, fmt.Sprintf("%s) %s", optionLabels[i], opt))
	}
	question := html.UnescapeString(q.Question)
	text := question + "\n" + strings.Join(lines, "\n")
	return &QuizState{
		CorrectLabel: correctLabel,
		Options:      options,
		Question:     question,
	}, text
}

func (s *Service) saveState(ctx context.Context, userID string, state *QuizState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("trivia: marshal quiz state: %w", err)
	}
	if err := s.redis.Set(ctx, quizKey(userID), data, s.stateTTL).Err(); err != nil {
		return fmt.Errorf("trivia: persist quiz state: %w", err)
	}
	return nil
}

func (s *Service) loadState(ctx context.Context, userID string) (*QuizState, error) {
	data, err := s.redis.Get(ctx, quizKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("trivia: load quiz state: %w", err)
	}
	var state QuizState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("trivia: decode quiz state: %w", err)
	}
	return &state, nil
}

func quizKey(userID string) string {
	return fmt.Sprintf("quiz_state:%s", userID)
}
