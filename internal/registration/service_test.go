package registration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/NIKHIL-505/swiftchat-bot/internal/bot"
	"github.com/NIKHIL-505/swiftchat-bot/internal/delivery"
)

type fakeSender struct {
	mu    sync.Mutex
	sends []delivery.Message
}

func (s *fakeSender) Send(ctx context.Context, userID string, msg delivery.Message) error {
	s.SendAsync(userID, msg)
	return nil
}

func (s *fakeSender) SendAsync(userID string, msgs ...delivery.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, msgs...)
}

func (s *fakeSender) kinds() []delivery.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]delivery.Kind, 0, len(s.sends))
	for _, m := range s.sends {
		out = append(out, m.Kind)
	}
	return out
}

type fakeProfiles struct {
	mu       sync.Mutex
	saved    []string
	err      error
	observed func(ctx context.Context)
}

func (p *fakeProfiles) SaveProfile(ctx context.Context, userID, name, medium string) error {
	p.mu.Lock()
	p.saved = append(p.saved, name)
	p.mu.Unlock()
	if p.observed != nil {
		p.observed(ctx)
	}
	return p.err
}

type fixture struct {
	svc      *Service
	contexts *bot.ContextStore
	locks    *bot.LockStore
	sender   *fakeSender
	profiles *fakeProfiles
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	f := &fixture{
		contexts: bot.NewContextStore(client, nil),
		locks:    bot.NewLockStore(client, time.Minute, time.Minute, nil),
		sender:   &fakeSender{},
		profiles: &fakeProfiles{},
	}
	f.svc = NewService(f.contexts, f.locks, f.sender, f.profiles, nil)
	return f
}

func text(s string) bot.UserMessage { return bot.UserMessage{Text: s} }

func TestEntryPointAdvancesToAwaitMedium(t *testing.T) {
	f := newFixture(t)
	uc := bot.NewUserContext()

	if err := f.svc.ProcessMessage(context.Background(), "english", "919999999999", text("hi"), uc); err != nil {
		t.Fatalf("process: %v", err)
	}
	stored, err := f.contexts.Get(context.Background(), "919999999999")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.StepName != bot.StepAwaitMedium {
		t.Fatalf("expected awaitMedium, got %s", stored.StepName)
	}
	kinds := f.sender.kinds()
	if len(kinds) != 2 || kinds[1] != delivery.KindButtons {
		t.Fatalf("expected greeting plus language buttons, got %#v", kinds)
	}
}

func TestAwaitMediumSelection(t *testing.T) {
	f := newFixture(t)
	uc := &bot.UserContext{StepName: bot.StepAwaitMedium, StepData: bot.StepData{}}

	if err := f.svc.ProcessMessage(context.Background(), "english", "919999999999", text("2"), uc); err != nil {
		t.Fatalf("process: %v", err)
	}
	stored, _ := f.contexts.Get(context.Background(), "919999999999")
	if stored.UserMedium != "hindi" {
		t.Fatalf("expected hindi medium, got %s", stored.UserMedium)
	}
	if stored.StepName != bot.StepAwaitNext {
		t.Fatalf("expected awaitNext, got %s", stored.StepName)
	}
}

func TestAwaitMediumRepromptOnInvalidInput(t *testing.T) {
	f := newFixture(t)
	uc := &bot.UserContext{StepName: bot.StepAwaitMedium, StepData: bot.StepData{}}

	if err := f.svc.ProcessMessage(context.Background(), "english", "919999999999", text("banana"), uc); err != nil {
		t.Fatalf("process: %v", err)
	}
	stored, _ := f.contexts.Get(context.Background(), "919999999999")
	if stored != nil {
		t.Fatalf("invalid input must not advance the step, got %#v", stored)
	}
	if kinds := f.sender.kinds(); len(kinds) != 1 || kinds[0] != delivery.KindButtons {
		t.Fatalf("expected a reprompt, got %#v", kinds)
	}
}

func TestAwaitNameGuardsProfileSaveWithValidationLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var lockedDuringSave bool
	f.profiles.observed = func(ctx context.Context) {
		locked, err := f.locks.IsValidationLocked(ctx, "919999999999")
		if err != nil {
			t.Errorf("lock check during save: %v", err)
		}
		lockedDuringSave = locked
	}

	uc := &bot.UserContext{StepName: bot.StepAwaitName, StepData: bot.StepData{}}
	if err := f.svc.ProcessMessage(ctx, "english", "919999999999", text("Asha"), uc); err != nil {
		t.Fatalf("process: %v", err)
	}
	if !lockedDuringSave {
		t.Fatal("expected validation lock held during the profile save")
	}
	locked, err := f.locks.IsValidationLocked(ctx, "919999999999")
	if err != nil {
		t.Fatalf("lock check: %v", err)
	}
	if locked {
		t.Fatal("expected validation lock cleared after the save resolved")
	}
	stored, _ := f.contexts.Get(ctx, "919999999999")
	if stored.StepName != bot.StepAwaitViewMessageTypes {
		t.Fatalf("expected awaitViewMessageTypes, got %s", stored.StepName)
	}
	if first, _ := stored.StepData["firstTime"].(bool); !first {
		t.Fatalf("expected firstTime flag, got %#v", stored.StepData)
	}
}

func TestAwaitNameClearsLockOnSaveFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profiles.err = errors.New("stats api down")

	uc := &bot.UserContext{StepName: bot.StepAwaitName, StepData: bot.StepData{}}
	err := f.svc.ProcessMessage(ctx, "english", "919999999999", text("Asha"), uc)
	if err == nil {
		t.Fatal("expected profile save error to propagate")
	}
	locked, lockErr := f.locks.IsValidationLocked(ctx, "919999999999")
	if lockErr != nil {
		t.Fatalf("lock check: %v", lockErr)
	}
	if locked {
		t.Fatal("validation lock must be cleared even when the save fails")
	}
}

func TestViewMessageTypesFirstTimeSendsSamples(t *testing.T) {
	f := newFixture(t)
	uc := &bot.UserContext{
		StepName: bot.StepAwaitViewMessageTypes,
		StepData: bot.StepData{"firstTime": true},
	}
	if err := f.svc.ProcessMessage(context.Background(), "english", "919999999999", text("ok"), uc); err != nil {
		t.Fatalf("process: %v", err)
	}
	kinds := f.sender.kinds()
	if len(kinds) != 3 {
		t.Fatalf("expected three sample messages, got %#v", kinds)
	}
	if kinds[0] != delivery.KindText || kinds[1] != delivery.KindMedia || kinds[2] != delivery.KindButtons {
		t.Fatalf("unexpected sample order: %#v", kinds)
	}
	stored, _ := f.contexts.Get(context.Background(), "919999999999")
	if first, _ := stored.StepData["firstTime"].(bool); first {
		t.Fatal("expected firstTime cleared after the samples")
	}
}

func TestViewMessageTypesViewMore(t *testing.T) {
	f := newFixture(t)
	uc := &bot.UserContext{
		StepName: bot.StepAwaitViewMessageTypes,
		StepData: bot.StepData{"firstTime": false},
	}
	if err := f.svc.ProcessMessage(context.Background(), "english", "919999999999", text("View More"), uc); err != nil {
		t.Fatalf("process: %v", err)
	}
	kinds := f.sender.kinds()
	if len(kinds) != 2 || kinds[0] != delivery.KindLocation {
		t.Fatalf("expected a location sample, got %#v", kinds)
	}
}

func TestViewMessageTypesGoBack(t *testing.T) {
	f := newFixture(t)
	uc := &bot.UserContext{
		StepName: bot.StepAwaitViewMessageTypes,
		StepData: bot.StepData{"firstTime": false},
	}
	if err := f.svc.ProcessMessage(context.Background(), "english", "919999999999", text("Go Back"), uc); err != nil {
		t.Fatalf("process: %v", err)
	}
	stored, _ := f.contexts.Get(context.Background(), "919999999999")
	if stored.StepName != bot.StepAwaitNext {
		t.Fatalf("expected awaitNext, got %s", stored.StepName)
	}
}
