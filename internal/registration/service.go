package registration

import (
	"context"
	"fmt"
	"strings"

	"github.com/NIKHIL-505/swiftchat-bot/internal/bot"
	"github.com/NIKHIL-505/swiftchat-bot/internal/delivery"
	"github.com/NIKHIL-505/swiftchat-bot/pkg/logging"
)

// Button sets presented during the view-message-types demo. The dispatcher
// honors these labels as canonical values while the user sits on that step.
var (
	InvalidWebMessageButtons         = []string{"View More"}
	InvalidWebViewMoreMessageButtons = []string{"Go Back"}
)

// ExtendedButtons returns the combined demo button labels.
func ExtendedButtons() []string {
	out := make([]string, 0, len(InvalidWebMessageButtons)+len(InvalidWebViewMoreMessageButtons))
	out = append(out, InvalidWebMessageButtons...)
	out = append(out, InvalidWebViewMoreMessageButtons...)
	return out
}

// Sender is the outbound surface the flow needs.
type Sender interface {
	Send(ctx context.Context, userID string, msg delivery.Message) error
	SendAsync(userID string, msgs ...delivery.Message)
}

// ProfileStore persists the registered profile in an external system. The call
// can be slow, so the flow guards it with the validation lock.
type ProfileStore interface {
	SaveProfile(ctx context.Context, userID, name, medium string) error
}

// Locker is the validation-lock slice of the lock store.
type Locker interface {
	SetValidationLock(ctx context.Context, userID string) error
	ClearValidationLock(ctx context.Context, userID string) error
}

// Service implements the registration conversation flow: medium selection,
// name capture and the message-types demo.
type Service struct {
	contexts *bot.ContextStore
	locks    Locker
	sender   Sender
	profiles ProfileStore
	logger   *logging.Logger
}

func NewService(contexts *bot.ContextStore, locks Locker, sender Sender, profiles ProfileStore, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		contexts: contexts,
		locks:    locks,
		sender:   sender,
		profiles: profiles,
		logger:   logger,
	}
}

var _ bot.StepHandler = (*Service)(nil)

// ProcessMessage advances the registration flow from the user's current step.
func (s *Service) ProcessMessage(ctx context.Context, medium, userID string, msg bot.UserMessage, uc *bot.UserContext) error {
	switch uc.StepName {
	case bot.StepEntryPoint:
		return s.handleEntryPoint(ctx, userID, uc)
	case bot.StepAwaitMedium:
		return s.handleAwaitMedium(ctx, userID, msg, uc)
	case bot.StepAwaitNext:
		return s.handleAwaitNext(ctx, medium, userID, uc)
	case bot.StepAwaitName:
		return s.handleAwaitName(ctx, medium, userID, msg, uc)
	case bot.StepAwaitViewMessageTypes:
		return s.handleViewMessageTypes(ctx, medium, userID, msg, uc)
	default:
		s.logger.Warn("registration: unexpected step", "user_mobile", userID, "step", string(uc.StepName))
		return nil
	}
}

func (s *Service) handleEntryPoint(ctx context.Context, userID string, uc *bot.UserContext) error {
	uc.StepName = bot.StepAwaitMedium
	uc.StepData = bot.StepData{}
	if err := s.contexts.Save(ctx, userID, uc); err != nil {
		return err
	}
	s.sender.SendAsync(userID,
		delivery.NewText("Welcome! I'm the SwiftChat demo bot."),
		delivery.NewButtons("Which language would you like to use?", []string{"English", "हिंदी"}),
	)
	return nil
}

func (s *Service) handleAwaitMedium(ctx context.Context, userID string, msg bot.UserMessage, uc *bot.UserContext) error {
	var medium string
	switch strings.TrimSpace(msg.Text) {
	case "1", "English", "english":
		medium = "english"
	case "2", "हिंदी", "hindi":
		medium = "hindi"
	default:
		s.sender.SendAsync(userID, delivery.NewButtons("Please pick a language to continue.", []string{"English", "हिंदी"}))
		return nil
	}
	uc.UserMedium = medium
	uc.StepName = bot.StepAwaitNext
	if err := s.contexts.Save(ctx, userID, uc); err != nil {
		return err
	}
	s.sender.SendAsync(userID, delivery.NewButtons("Great. Ready to set up your profile?", []string{"Next"}))
	return nil
}

func (s *Service) handleAwaitNext(ctx context.Context, medium, userID string, uc *bot.UserContext) error {
	uc.StepName = bot.StepAwaitName
	if err := s.contexts.Save(ctx, userID, uc); err != nil {
		return err
	}
	s.sender.SendAsync(userID, delivery.NewText("What should I call you?"))
	return nil
}

func (s *Service) handleAwaitName(ctx context.Context, medium, userID string, msg bot.UserMessage, uc *bot.UserContext) error {
	name := strings.TrimSpace(msg.Text)
	if name == "" {
		s.sender.SendAsync(userID, delivery.NewText("What should I call you?"))
		return nil
	}

	// The profile write is a slow external call; suppress further input for
	// this user until it resolves.
	if err := s.locks.SetValidationLock(ctx, userID); err != nil {
		return err
	}
	saveErr := s.saveProfile(ctx, userID, name, medium)
	if err := s.locks.ClearValidationLock(ctx, userID); err != nil {
		s.logger.Error("failed to clear validation lock", "user_mobile", userID, "error", err)
	}
	if saveErr != nil {
		return saveErr
	}

	uc.StepName = bot.StepAwaitViewMessageTypes
	uc.StepData = bot.StepData{"firstTime": true, "name": name}
	if err := s.contexts.Save(ctx, userID, uc); err != nil {
		return err
	}
	s.sender.SendAsync(userID,
		delivery.NewText(fmt.Sprintf("Nice to meet you, %s! You're registered.", name)),
		delivery.NewButtons("Want to see the kinds of messages I can send?", InvalidWebMessageButtons),
	)
	return nil
}

func (s *Service) saveProfile(ctx context.Context, userID, name, medium string) error {
	if s.profiles == nil {
		return nil
	}
	if err := s.profiles.SaveProfile(ctx, userID, name, medium); err != nil {
		return fmt.Errorf("registration: save profile: %w", err)
	}
	return nil
}

func (s *Service) handleViewMessageTypes(ctx context.Context, medium, userID string, msg bot.UserMessage, uc *bot.UserContext) error {
	if firstTime, _ := uc.StepData["firstTime"].(bool); firstTime {
		uc.StepData["firstTime"] = false
		if err := s.contexts.Save(ctx, userID, uc); err != nil {
			return err
		}
		s.sender.SendAsync(userID,
			delivery.NewText("Here's a plain text message."),
			delivery.NewMedia("https://cdn.swiftchat.ai/samples/welcome.png", "image/png", "And a picture with a caption."),
			delivery.NewButtons("Buttons look like this.", InvalidWebMessageButtons),
		)
		return nil
	}

	switch msg.Text {
	case "View More":
		s.sender.SendAsync(userID,
			delivery.NewLocation(28.6139, 77.2090, "SwiftChat HQ", "New Delhi"),
			delivery.NewButtons("That's a location message. Anything else?", InvalidWebViewMoreMessageButtons),
		)
		return nil
	case "Go Back":
		uc.StepName = bot.StepAwaitNext
		uc.StepData = bot.StepData{}
		if err := s.contexts.Save(ctx, userID, uc); err != nil {
			return err
		}
		s.sender.SendAsync(userID, delivery.NewButtons("Back to the start. Ready?", []string{"Next"}))
		return nil
	default:
		s.sender.SendAsync(userID, delivery.NewButtons("Tap a button to continue the tour.", ExtendedButtons()))
		return nil
	}
}
