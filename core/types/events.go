package types

// Event captures a ledger side effect emitted by a successful state
// transition. Events are accumulated by the state store for the current
// operation batch and drained by the host after commit.
type Event struct {
	Type       string
	Attributes map[string]string
}

// Copy returns a deep copy so consumers cannot mutate stored attributes.
func (e *Event) Copy() *Event {
	if e == nil {
		return nil
	}
	clone := &Event{Type: e.Type}
	if e.Attributes != nil {
		clone.Attributes = make(map[string]string, len(e.Attributes))
		for k, v := range e.Attributes {
			clone.Attributes[k] = v
		}
	}
	return clone
}
