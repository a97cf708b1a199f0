// Package surface holds the per-surface projections of queue state and the
// reconciliation logic that keeps them consistent: seed from a snapshot on
// every (re)connect, apply streamed events as they arrive, and periodically
// refetch as a backstop against missed events. All apply operations are
// idempotent; replaying an event or re-applying a snapshot changes nothing.
package surface

import (
	"github.com/ibher16/antrian-lab-ibsi/internal/models"
)

// HistoryLimit caps the display's called-ticket history.
const HistoryLimit = 4

// State is a surface's local view of the queue. It is owned by one
// reconciler and passed by reference to render hooks; it is not shared
// across surfaces.
type State struct {
	Current  *models.Ticket
	History  []models.Ticket // most recent first, at most HistoryLimit
	Waiting  []models.Ticket // id order
	Stats    models.QueueStats
	Settings models.DisplaySettings
}

// ApplyNewTicket appends a ticket to the waiting list. Seeing the same
// ticket twice, or after a snapshot already delivered it, is a no-op.
func (s *State) ApplyNewTicket(ticket models.Ticket) {
	for _, existing := range s.Waiting {
		if existing.ID == ticket.ID {
			return
		}
	}
	s.Waiting = append(s.Waiting, ticket)
}

// ApplyCall makes the ticket current. The ticket payload is treated as
// self-sufficient: a call for a ticket never seen locally still applies.
// A repeat call for the current ticket (a recall) leaves state unchanged.
func (s *State) ApplyCall(ticket models.Ticket) {
	s.removeWaiting(ticket.ID)
	if s.Current != nil && s.Current.ID == ticket.ID {
		*s.Current = ticket
		return
	}
	if s.Current != nil {
		s.pushHistory(*s.Current)
	}
	s.Current = &ticket
}

// ApplyReset clears every projection, regardless of local state.
func (s *State) ApplyReset() {
	s.Current = nil
	s.History = nil
	s.Waiting = nil
	s.Stats = models.QueueStats{}
}

func (s *State) ApplySettings(settings models.DisplaySettings) {
	s.Settings = settings
}

// ReplaceWaiting installs a fresh snapshot of the waiting list. Snapshot
// order (id order) wins over whatever event arrival order produced locally.
func (s *State) ReplaceWaiting(tickets []models.Ticket) {
	s.Waiting = append([]models.Ticket(nil), tickets...)
}

func (s *State) ReplaceStats(stats models.QueueStats) {
	s.Stats = stats
}

// SeedHistory fills the history from a recent-tickets snapshot, most recent
// first, skipping tickets that are still waiting.
func (s *State) SeedHistory(recent []models.Ticket) {
	s.History = nil
	for _, ticket := range recent {
		if ticket.Status == models.StatusWaiting {
			continue
		}
		if len(s.History) == HistoryLimit {
			break
		}
		s.History = append(s.History, ticket)
	}
}

func (s *State) pushHistory(ticket models.Ticket) {
	if len(s.History) > 0 && s.History[0].ID == ticket.ID {
		return
	}
	s.History = append([]models.Ticket{ticket}, s.History...)
	if len(s.History) > HistoryLimit {
		s.History = s.History[:HistoryLimit]
	}
}

func (s *State) removeWaiting(ticketID int) {
	for i, ticket := range s.Waiting {
		if ticket.ID == ticketID {
			s.Waiting = append(s.Waiting[:i], s.Waiting[i+1:]...)
			return
		}
	}
}
