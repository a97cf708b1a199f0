package surface

import (
	"context"

	"go.uber.org/zap"

	"github.com/ibher16/antrian-lab-ibsi/internal/announce"
	"github.com/ibher16/antrian-lab-ibsi/internal/client"
	"github.com/ibher16/antrian-lab-ibsi/internal/event"
	"github.com/ibher16/antrian-lab-ibsi/internal/models"
)

const eventBuffer = 16

// Display drives the waiting-room screen: the currently called ticket, a
// short call history, and the ambient video. Every call triggers an audio
// announcement through the sequencer.
type Display struct {
	client    *client.Client
	sequencer *announce.Sequencer
	logger    *zap.Logger

	state  State
	events chan event.Event
	opens  chan struct{}

	// Render is invoked after every state change, from the reconciler
	// goroutine. Optional.
	Render func(*State)
}

func NewDisplay(c *client.Client, sequencer *announce.Sequencer, logger *zap.Logger) *Display {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Display{
		client:    c,
		sequencer: sequencer,
		logger:    logger,
		events:    make(chan event.Event, eventBuffer),
		opens:     make(chan struct{}, 1),
	}
}

// OnEvent and OnOpen are the channel callbacks. They hand off to the
// reconciler goroutine; nothing here touches state directly.
func (d *Display) OnEvent(ev event.Event) {
	d.events <- ev
}

func (d *Display) OnOpen() {
	select {
	case d.opens <- struct{}{}:
	default:
	}
}

// Run reconciles until ctx is cancelled. It is the only goroutine that
// mutates the display's state.
func (d *Display) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.opens:
			d.seed(ctx)
			d.render()
		case ev := <-d.events:
			d.apply(ev)
			d.render()
		}
	}
}

func (d *Display) apply(ev event.Event) {
	switch ev.Kind {
	case event.KindNewTicket:
		// The screen shows calls, not the waiting list.
	case event.KindCallTicket:
		if ev.Ticket == nil {
			return
		}
		d.state.ApplyCall(*ev.Ticket)
		d.sequencer.Announce(*ev.Ticket)
	case event.KindResetQueue:
		d.state.ApplyReset()
	case event.KindUpdateVideo:
		if ev.Settings != nil {
			d.state.ApplySettings(*ev.Settings)
		}
	}
}

// seed refetches the snapshot after a (re)connect. Events that arrived
// during the outage are reflected in the snapshot; events replayed after it
// re-apply harmlessly.
func (d *Display) seed(ctx context.Context) {
	recent, err := d.client.RecentTickets(ctx)
	if err != nil {
		d.logger.Warn("fetch recent tickets failed", zap.Error(err))
	} else {
		d.seedFromRecent(recent)
	}

	settings, err := d.client.DisplaySettings(ctx)
	if err != nil {
		d.logger.Warn("fetch display settings failed", zap.Error(err))
	} else {
		d.state.ApplySettings(settings)
	}
}

// seedFromRecent rebuilds the current ticket and history from the recent
// snapshot: the newest still-calling ticket becomes current, the rest feed
// the history.
func (d *Display) seedFromRecent(recent []models.Ticket) {
	d.state.Current = nil
	for _, ticket := range recent {
		if ticket.Status == models.StatusCalling {
			t := ticket
			d.state.Current = &t
			break
		}
	}

	rest := make([]models.Ticket, 0, len(recent))
	for _, ticket := range recent {
		if d.state.Current != nil && ticket.ID == d.state.Current.ID {
			continue
		}
		rest = append(rest, ticket)
	}
	d.state.SeedHistory(rest)
}

func (d *Display) render() {
	if d.Render != nil {
		d.Render(&d.state)
	}
}
