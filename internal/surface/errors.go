package surface

import "errors"

var (
	// ErrNoWaitingTickets is returned by call-next when the queue is empty.
	ErrNoWaitingTickets = errors.New("no waiting tickets")
	// ErrNoCurrentTicket is returned by finish when nothing is being served.
	ErrNoCurrentTicket = errors.New("no ticket is currently called")
	// ErrResetAborted is returned when a reset confirmation is declined.
	ErrResetAborted = errors.New("queue reset aborted")
)
