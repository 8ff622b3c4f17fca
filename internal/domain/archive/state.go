package archive

// State is the progress of one export call.
type State string

const (
	StateIdle                State = "idle"
	StateRequesting          State = "requesting"
	StateServerBundleReady   State = "server_bundle_ready"
	StateFallbackAssembling  State = "fallback_assembling"
	StateFallbackBundleReady State = "fallback_bundle_ready"
	StateFailed              State = "failed"
)

var transitions = map[State][]State{
	StateIdle:               {StateRequesting, StateFailed},
	StateRequesting:         {StateServerBundleReady, StateFallbackAssembling, StateFailed},
	StateFallbackAssembling: {StateFallbackBundleReady, StateFailed},
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateServerBundleReady || s == StateFallbackBundleReady || s == StateFailed
}

// CanTransition reports whether to may follow s.
func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}
