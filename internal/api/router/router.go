package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/NIKHIL-505/swiftchat-bot/internal/http/handlers"
	httpmiddleware "github.com/NIKHIL-505/swiftchat-bot/internal/http/middleware"
	"github.com/NIKHIL-505/swiftchat-bot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Webhook        *handlers.KlusterWebhookHandler
	Trivia         *handlers.TriviaHandler
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Post("/kluster-webhook", cfg.Webhook.HandleMessage)
	r.Post("/test/message-webhook", cfg.Webhook.HandleTest)

	if cfg.Trivia != nil {
		r.Route("/trivia", func(r chi.Router) {
			r.Post("/", cfg.Trivia.StartQuiz)
			r.Post("/answer", cfg.Trivia.AnswerQuiz)
		})
	}

	return r
}
