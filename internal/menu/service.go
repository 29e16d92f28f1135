package menu

import (
	"context"

	"github.com/NIKHIL-505/swiftchat-bot/internal/bot"
	"github.com/NIKHIL-505/swiftchat-bot/internal/delivery"
	"github.com/NIKHIL-505/swiftchat-bot/pkg/logging"
)

// Sender delivers outbound messages for menu actions.
type Sender interface {
	SendAsync(userID string, msgs ...delivery.Message)
}

// Service handles persistent-menu selections. Canonical menu values are the
// zero-based item index as a string.
type Service struct {
	contexts *bot.ContextStore
	sender   Sender
	logger   *logging.Logger
}

func NewService(contexts *bot.ContextStore, sender Sender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{contexts: contexts, sender: sender, logger: logger}
}

var _ bot.MenuHandler = (*Service)(nil)

// ProcessMessage executes one menu action. It owns any context mutation and
// outbound sends; the dispatcher does not second-guess it.
func (s *Service) ProcessMessage(ctx context.Context, medium, userID string, msg bot.UserMessage, uc *bot.UserContext) error {
	switch msg.Text {
	case "0": // message types tour
		uc.StepName = bot.StepAwaitViewMessageTypes
		uc.StepData = bot.StepData{"firstTime": true}
		if err := s.contexts.Save(ctx, userID, uc); err != nil {
			return err
		}
		s.sender.SendAsync(userID, delivery.NewText("Let's tour the message types again. Say anything to begin."))
		return nil
	case "1": // change language
		uc.StepName = bot.StepAwaitMedium
		if err := s.contexts.Save(ctx, userID, uc); err != nil {
			return err
		}
		s.sender.SendAsync(userID, delivery.NewButtons("Which language would you like to use?", []string{"English", "हिंदी"}))
		return nil
	case "2": // help
		s.sender.SendAsync(userID, delivery.NewText("I'm the SwiftChat demo bot. Use the menu to switch language or replay the tour, or send \"user reset\" to start over."))
		return nil
	default:
		s.logger.Info("unknown menu selection", "user_mobile", userID, "selection", msg.Text)
		s.sender.SendAsync(userID, delivery.NewText("I didn't recognize that menu option."))
		return nil
	}
}
