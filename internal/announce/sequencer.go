// Package announce turns call events into audible notifications: a two-tone
// chime, then synthesized speech. Announcements are strictly serialized so
// overlapping calls never interleave audio.
package announce

import (
	"context"

	"go.uber.org/zap"

	"github.com/ibher16/antrian-lab-ibsi/internal/models"
)

// Player is the audio hardware boundary. Both calls block until their sound
// has finished playing. Implementations on platforms that gate playback
// behind a user gesture must be unlocked before the first announcement.
type Player interface {
	Chime(ctx context.Context) error
	Speak(ctx context.Context, text string) error
}

const queueDepth = 16

type Sequencer struct {
	player Player
	logger *zap.Logger
	queue  chan models.Ticket
}

func NewSequencer(player Player, logger *zap.Logger) *Sequencer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequencer{
		player: player,
		logger: logger,
		queue:  make(chan models.Ticket, queueDepth),
	}
}

// Announce enqueues a called ticket. It never blocks the event handler: if
// the queue is saturated the announcement is dropped with a warning, and the
// admin can recall the ticket to repeat it.
func (s *Sequencer) Announce(ticket models.Ticket) {
	select {
	case s.queue <- ticket:
	default:
		s.logger.Warn("announcement queue full, dropping", zap.String("code", ticket.FormattedCode))
	}
}

// Run drains the queue until the context is cancelled. Each announcement is
// played to completion, chime first, before the next is started.
func (s *Sequencer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ticket := <-s.queue:
			s.play(ctx, ticket)
		}
	}
}

func (s *Sequencer) play(ctx context.Context, ticket models.Ticket) {
	text := Text(ticket)
	s.logger.Info("announcing", zap.String("code", ticket.FormattedCode), zap.Int("counter", ticket.Counter))

	if err := s.player.Chime(ctx); err != nil {
		s.logger.Warn("chime failed", zap.Error(err))
	}
	if err := s.player.Speak(ctx, text); err != nil {
		s.logger.Warn("speech failed", zap.Error(err))
	}
}
