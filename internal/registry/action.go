package registry

// Action tells the trie walk what to do with a subscription it reached.
type Action int

const (
	// Continue leaves the subscription untouched.
	Continue Action = iota

	// Consume spends one unit of the subscription's budget and drops the
	// subscription once the budget is exhausted.
	Consume

	// Purge drops the subscription regardless of its budget.
	Purge
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Continue:
		return "continue"
	case Consume:
		return "consume"
	case Purge:
		return "purge"
	default:
		return "unknown"
	}
}

// VisitFunc decides the Action for one reached subscription.
type VisitFunc func(sub *Subscription) Action
