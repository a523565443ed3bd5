package routing

// Event is a domain event emitted by the engine after a mutation commits.
// The engine never delivers anything itself; a Notifier collaborator decides
// what persisting and pushing an event means.
type Event struct {
	Type       string   `json:"type"`
	DocumentID string   `json:"documentId"`
	ActorID    string   `json:"actorId"`
	Decision   string   `json:"decision,omitempty"`
	DocStatus  string   `json:"docStatus,omitempty"`
	Recipients []string `json:"-"` // user ids to notify
}

// Notifier receives engine events, fire-and-forget
type Notifier interface {
	Notify(event Event)
}

// NopNotifier discards all events; useful in tests and tooling
type NopNotifier struct{}

func (NopNotifier) Notify(Event) {}

func (e *Engine) emit(events []Event) {
	if e.notifier == nil {
		return
	}
	for _, ev := range events {
		e.notifier.Notify(ev)
	}
}
