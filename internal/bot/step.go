package bot

// Step is a named state in the per-user conversation state machine.
type Step string

const (
	StepEntryPoint            Step = "entryPoint"
	StepAwaitMedium           Step = "awaitMedium"
	StepAwaitNext             Step = "awaitNext"
	StepAwaitName             Step = "awaitName"
	StepAwaitViewMessageTypes Step = "awaitViewMessageTypes"
)

// registrationSteps is the closed set of steps routed to the registration
// handler. Any other step value is an explicit no-op branch.
var registrationSteps = map[Step]bool{
	StepEntryPoint:            true,
	StepAwaitMedium:           true,
	StepAwaitNext:             true,
	StepAwaitName:             true,
	StepAwaitViewMessageTypes: true,
}

// StepData is the opaque mapping owned by the active step handler.
type StepData map[string]any

// UserContext is the per-user conversation state. Absence of a stored context
// is equivalent to a fresh context at entryPoint.
type UserContext struct {
	StepName   Step     `json:"stepName"`
	StepData   StepData `json:"stepData"`
	UserMedium string   `json:"userMedium,omitempty"`
}

// NewUserContext returns a fresh context at the entry step.
func NewUserContext() *UserContext {
	return &UserContext{StepName: StepEntryPoint, StepData: StepData{}}
}
