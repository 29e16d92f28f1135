package bot

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/NIKHIL-505/swiftchat-bot/internal/delivery"
	"github.com/NIKHIL-505/swiftchat-bot/internal/observability/metrics"
	"github.com/NIKHIL-505/swiftchat-bot/pkg/logging"
)

// ResetCommand is the in-band escape hatch that reinitializes a user's
// conversation state.
const ResetCommand = "user reset"

// StepHandler processes a message for one of the registration-flow steps. It
// owns all context mutation and outbound sends for its step.
type StepHandler interface {
	ProcessMessage(ctx context.Context, medium, userID string, msg UserMessage, uc *UserContext) error
}

// MenuHandler processes a persistent-menu selection. The dispatcher does not
// second-guess its sends or context mutations.
type MenuHandler interface {
	ProcessMessage(ctx context.Context, medium, userID string, msg UserMessage, uc *UserContext) error
}

// RegistrationReporter is told about users seen for the first time.
type RegistrationReporter interface {
	ReportNewUser(ctx context.Context, userID string)
}

// Sender delivers outbound messages without blocking the conversation flow.
type Sender interface {
	SendAsync(userID string, msgs ...delivery.Message)
}

// DispatcherConfig wires the dispatcher's collaborators.
type DispatcherConfig struct {
	Locks         *LockStore
	Contexts      *ContextStore
	Sender        Sender
	Registration  StepHandler
	Menu          MenuHandler
	Stats         RegistrationReporter
	DefaultMedium string

	// ExtendedButtons are the step-specific button labels honored while the
	// user sits on the view-message-types step.
	ExtendedButtons []string

	Logger  *logging.Logger
	Metrics *metrics.BotMetrics
	Tracer  trace.Tracer
}

// Dispatcher is the state machine core: it turns one inbound event into zero
// or more outbound messages under the per-user processing lock. Correctness
// holds across process instances because both locks live in the shared store,
// never in process memory.
type Dispatcher struct {
	locks           *LockStore
	contexts        *ContextStore
	sender          Sender
	registration    StepHandler
	menu            MenuHandler
	stats           RegistrationReporter
	defaultMedium   string
	extendedButtons []string
	logger          *logging.Logger
	metrics         *metrics.BotMetrics
	tracer          trace.Tracer
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Locks == nil || cfg.Contexts == nil || cfg.Sender == nil {
		panic("bot: dispatcher requires locks, contexts and sender")
	}
	if cfg.DefaultMedium == "" {
		cfg.DefaultMedium = "english"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("swiftchat.internal.bot.dispatcher")
	}
	return &Dispatcher{
		locks:           cfg.Locks,
		contexts:        cfg.Contexts,
		sender:          cfg.Sender,
		registration:    cfg.Registration,
		menu:            cfg.Menu,
		stats:           cfg.Stats,
		defaultMedium:   cfg.DefaultMedium,
		extendedButtons: cfg.ExtendedButtons,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		tracer:          cfg.Tracer,
	}
}

// HandleEvent advances the user's conversation state machine for one inbound
// webhook event. Handler errors propagate to the caller after the processing
// lock has been released.
func (d *Dispatcher) HandleEvent(ctx context.Context, evt *InboundEvent) error {
	ctx, span := d.tracer.Start(ctx, "bot.handle_event")
	defer span.End()
	start := time.Now()

	userID := evt.From
	uc, err := d.contexts.Get(ctx, userID)
	if err != nil {
		return err
	}
	if uc == nil {
		uc = NewUserContext()
		if d.stats != nil {
			d.stats.ReportNewUser(ctx, userID)
		}
	}
	medium := uc.UserMedium
	if medium == "" {
		medium = d.defaultMedium
	}
	pack := StringsForMedium(medium)

	msg, err := ExtractUserMessage(evt)
	if errors.Is(err, ErrUnsupportedMessageType) {
		// Short-circuit: no lock was taken, nothing to release.
		d.logger.Info("message rejected", "user_mobile", userID, "reason", "unsupported_type", "message_type", evt.Type)
		d.metrics.ObserveRejected("unsupported_type")
		d.sender.SendAsync(userID, delivery.NewText(pack.TypeException))
		return nil
	}
	if err != nil {
		return err
	}
	d.logger.Debug("swiftchat message received", "user_mobile", userID, "message_type", evt.Type)

	token, err := d.locks.AcquireProcessingLock(ctx, userID)
	if err != nil {
		// A held lock and an unreachable lock store both fail closed: the
		// event is dropped with a notice, never queued.
		if !errors.Is(err, ErrLockUnavailable) {
			d.logger.Error("lock store unavailable", "user_mobile", userID, "error", err)
		}
		d.logger.Info("message rejected", "user_mobile", userID, "reason", "lock_unavailable")
		d.metrics.ObserveRejected("lock_unavailable")
		d.sender.SendAsync(userID, delivery.NewText(pack.PleaseWait))
		return nil
	}
	defer func() {
		// Release must run on every branch below, including a handler error.
		// The TTL is only the safety net for a crashed process.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := d.locks.ReleaseProcessingLock(releaseCtx, userID, token); err != nil {
			d.logger.Error("failed to release processing lock", "user_mobile", userID, "error", err)
		}
		d.metrics.ObserveWebhookLatency(evt.Type, time.Since(start).Seconds())
	}()

	locked, err := d.locks.IsValidationLocked(ctx, userID)
	if err != nil {
		d.logger.Error("validation lock check failed", "user_mobile", userID, "error", err)
		d.metrics.ObserveRejected("lock_unavailable")
		d.sender.SendAsync(userID, delivery.NewText(pack.PleaseWait))
		return nil
	}
	if locked {
		d.logger.Info("message rejected", "user_mobile", userID, "reason", "pending_previous_response")
		d.metrics.ObserveRejected("validation_locked")
		d.sender.SendAsync(userID, delivery.NewText(pack.ValidationPending))
		return nil
	}

	if msg.Text == ResetCommand {
		if err := d.contexts.Reset(ctx, userID); err != nil {
			return err
		}
		d.sender.SendAsync(userID, delivery.NewText(pack.Unregistered))
		d.metrics.ObserveInbound(evt.Type, "reset")
		return nil
	}

	// A menu response arriving while still at the entry step is stale: the
	// user has no conversation state the menu could refer to.
	isMenu := evt.Type == TypePersistentMenu && uc.StepName != StepEntryPoint
	if isMenu {
		if d.menu == nil {
			d.logger.Warn("menu selection with no menu handler", "user_mobile", userID)
			return nil
		}
		err := d.menu.ProcessMessage(ctx, medium, userID, msg, uc)
		d.metrics.ObserveInbound(evt.Type, "menu")
		return err
	}

	if uc.StepName == StepAwaitViewMessageTypes && !firstTime(uc.StepData) {
		richer, err := ExtractStepMessage(evt, d.extendedButtons)
		if err == nil {
			msg = richer
		}
	}

	if !registrationSteps[uc.StepName] {
		// Unknown steps are a designated no-op: log and drop rather than
		// guessing a corrective action.
		d.logger.Warn("no handler for step", "user_mobile", userID, "step", string(uc.StepName))
		d.metrics.ObserveInbound(evt.Type, "unhandled_step")
		return nil
	}
	err = d.registration.ProcessMessage(ctx, medium, userID, msg, uc)
	if err != nil {
		d.metrics.ObserveInbound(evt.Type, "handler_error")
		return err
	}
	d.metrics.ObserveInbound(evt.Type, "ok")
	return nil
}

func firstTime(data StepData) bool {
	v, ok := data["firstTime"]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
