package surface

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ibher16/antrian-lab-ibsi/internal/client"
	"github.com/ibher16/antrian-lab-ibsi/internal/event"
	"github.com/ibher16/antrian-lab-ibsi/internal/models"
)

// RefetchInterval is the default for how often a surface re-pulls its
// snapshot even when the event stream looks healthy.
const RefetchInterval = 5 * time.Second

// ConfirmFunc asks the operator a yes/no question. Reset requires two
// consecutive confirmations before it touches the server.
type ConfirmFunc func(prompt string) bool

// Admin is the operator station: it issues calls for one counter and keeps
// a waiting-list and stats projection for its screen.
//
// Action methods are safe to call from the input goroutine while Run
// reconciles events in the background.
type Admin struct {
	client      *client.Client
	logger      *zap.Logger
	counterPath string

	mu      sync.Mutex
	counter int
	current *models.Ticket
	state   State

	events chan event.Event
	opens  chan struct{}

	// Render is invoked after every state change, from whichever goroutine
	// made the change. Optional.
	Render func(*State)

	// RefetchEvery overrides the snapshot refetch interval. Zero or negative
	// means RefetchInterval. Set before Run.
	RefetchEvery time.Duration
}

func NewAdmin(c *client.Client, counterPath string, logger *zap.Logger) *Admin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Admin{
		client:      c,
		logger:      logger,
		counterPath: counterPath,
		counter:     LoadCounter(counterPath),
		events:      make(chan event.Event, eventBuffer),
		opens:       make(chan struct{}, 1),
	}
}

func (a *Admin) Counter() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counter
}

func (a *Admin) SetCounter(counter int) {
	if counter < 1 {
		counter = 1
	}
	a.mu.Lock()
	a.counter = counter
	a.mu.Unlock()
	if a.counterPath == "" {
		return
	}
	if err := SaveCounter(a.counterPath, counter); err != nil {
		a.logger.Warn("persist counter failed", zap.Error(err))
	}
}

// Current returns the ticket this station is serving, if any.
func (a *Admin) Current() (models.Ticket, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return models.Ticket{}, false
	}
	return *a.current, true
}

// Snapshot copies the projection for rendering.
func (a *Admin) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.state
	s.Waiting = append([]models.Ticket(nil), a.state.Waiting...)
	s.History = append([]models.Ticket(nil), a.state.History...)
	if a.current != nil {
		t := *a.current
		s.Current = &t
	}
	return s
}

// OnEvent and OnOpen are the channel callbacks.
func (a *Admin) OnEvent(ev event.Event) {
	a.events <- ev
}

func (a *Admin) OnOpen() {
	select {
	case a.opens <- struct{}{}:
	default:
	}
}

// Run reconciles events and refetches the snapshot on a fixed interval
// until ctx is cancelled.
func (a *Admin) Run(ctx context.Context) {
	interval := a.RefetchEvery
	if interval <= 0 {
		interval = RefetchInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.opens:
			a.Refresh(ctx)
		case <-ticker.C:
			a.Refresh(ctx)
		case ev := <-a.events:
			a.apply(ev)
			a.render()
		}
	}
}

func (a *Admin) apply(ev event.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch ev.Kind {
	case event.KindNewTicket:
		if ev.Ticket != nil {
			a.state.ApplyNewTicket(*ev.Ticket)
			a.state.Stats.Waiting++
			a.state.Stats.Total++
		}
	case event.KindCallTicket:
		if ev.Ticket == nil {
			return
		}
		a.state.removeWaiting(ev.Ticket.ID)
		if a.current != nil && ev.Ticket.Counter == a.counter {
			t := *ev.Ticket
			a.current = &t
		}
	case event.KindResetQueue:
		a.current = nil
		a.state.ApplyReset()
	case event.KindUpdateVideo:
		// Operator screens do not show the ambient video.
	}
}

// Refresh re-pulls the waiting list and stats. The snapshot replaces the
// local projection wholesale, so a refresh after replayed events converges
// to the same state.
func (a *Admin) Refresh(ctx context.Context) {
	waiting, err := a.client.WaitingTickets(ctx)
	if err != nil {
		a.logger.Warn("fetch waiting tickets failed", zap.Error(err))
	} else {
		a.mu.Lock()
		a.state.ReplaceWaiting(waiting)
		a.mu.Unlock()
	}

	stats, err := a.client.Stats(ctx)
	if err != nil {
		a.logger.Warn("fetch stats failed", zap.Error(err))
	} else {
		a.mu.Lock()
		a.state.ReplaceStats(stats)
		a.mu.Unlock()
	}
	a.render()
}

// CallNext calls the oldest waiting ticket to this counter.
func (a *Admin) CallNext(ctx context.Context) (models.Ticket, error) {
	waiting, err := a.client.WaitingTickets(ctx)
	if err != nil {
		return models.Ticket{}, err
	}
	if len(waiting) == 0 {
		return models.Ticket{}, ErrNoWaitingTickets
	}
	return a.Call(ctx, waiting[0].ID)
}

// Call calls a specific waiting ticket to this counter.
func (a *Admin) Call(ctx context.Context, ticketID int) (models.Ticket, error) {
	ticket, err := a.client.CallTicket(ctx, ticketID, a.Counter())
	if err != nil {
		return models.Ticket{}, err
	}
	a.setCurrent(ticket)
	a.Refresh(ctx)
	return ticket, nil
}

// CallManual calls a ticket by its printed code, for walk-ups whose slip is
// known but whose id is not on screen.
func (a *Admin) CallManual(ctx context.Context, code string) (models.Ticket, error) {
	ticket, err := a.client.CallManual(ctx, code, a.Counter())
	if err != nil {
		return models.Ticket{}, err
	}
	a.setCurrent(ticket)
	a.Refresh(ctx)
	return ticket, nil
}

// Recall re-announces whatever ticket is currently called on this counter,
// even if this process restarted since the call.
func (a *Admin) Recall(ctx context.Context) (models.Ticket, error) {
	ticket, err := a.client.Recall(ctx, a.Counter())
	if err != nil {
		return models.Ticket{}, err
	}
	a.setCurrent(ticket)
	return ticket, nil
}

// Finish resolves the ticket this station is serving.
func (a *Admin) Finish(ctx context.Context) error {
	current, ok := a.Current()
	if !ok {
		return ErrNoCurrentTicket
	}
	if err := a.client.FinishTicket(ctx, current.ID); err != nil {
		return err
	}
	a.clearCurrent()
	a.Refresh(ctx)
	return nil
}

// FinishAndCallNext resolves the current ticket and immediately calls the
// next waiting one. With nothing being served it degrades to a plain
// call-next.
func (a *Admin) FinishAndCallNext(ctx context.Context) (models.Ticket, error) {
	if current, ok := a.Current(); ok {
		if err := a.client.FinishTicket(ctx, current.ID); err != nil {
			return models.Ticket{}, err
		}
		a.clearCurrent()
	}
	return a.CallNext(ctx)
}

// Skip marks a waiting ticket as skipped without calling it.
func (a *Admin) Skip(ctx context.Context, ticketID int) error {
	if err := a.client.SkipTicket(ctx, ticketID); err != nil {
		return err
	}
	a.Refresh(ctx)
	return nil
}

// Reset clears today's queue everywhere. It is destructive, so the operator
// must confirm twice.
func (a *Admin) Reset(ctx context.Context, confirm ConfirmFunc) error {
	if confirm == nil ||
		!confirm("Reset the queue? All of today's tickets will be removed.") ||
		!confirm("Are you sure? This cannot be undone.") {
		return ErrResetAborted
	}
	if err := a.client.ResetQueue(ctx); err != nil {
		return err
	}
	a.clearCurrent()
	a.Refresh(ctx)
	return nil
}

func (a *Admin) setCurrent(ticket models.Ticket) {
	a.mu.Lock()
	a.current = &ticket
	a.mu.Unlock()
}

func (a *Admin) clearCurrent() {
	a.mu.Lock()
	a.current = nil
	a.mu.Unlock()
}

func (a *Admin) render() {
	if a.Render == nil {
		return
	}
	s := a.Snapshot()
	a.Render(&s)
}
