package checkout

type State string

const (
	StateIdle       State = "IDLE"
	StateFormOpen   State = "FORM_OPEN"
	StateSubmitting State = "SUBMITTING"
	StateConfirmed  State = "CONFIRMED"
)

var transitions = map[State][]State{
	StateIdle:       {StateFormOpen},
	StateFormOpen:   {StateSubmitting, StateIdle},
	StateSubmitting: {StateConfirmed, StateFormOpen},
	StateConfirmed:  {StateIdle},
}

func CanTransitionTo(from, to State) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s State) String() string {
	return string(s)
}
