package models

const (
	ActionCall   = "call"
	ActionRecall = "recall"
	ActionFinish = "finish"
	ActionSkip   = "skip"
)

var transitionMap = map[string][]string{
	ActionCall:   {StatusWaiting},
	ActionRecall: {StatusCalling},
	ActionFinish: {StatusCalling},
	ActionSkip:   {StatusWaiting},
}

// ValidTransition reports whether an action may be applied to a ticket in the
// given status. Recall is a self-transition: it repeats the announcement
// without moving the ticket.
func ValidTransition(action, fromStatus string) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}
