package announce

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const DefaultChimeDuration = 800 * time.Millisecond

// ConsolePlayer stands in for real audio hardware: it logs the sounds and
// honors the chime's fixed duration so sequencing behaves as it would with
// speakers attached.
type ConsolePlayer struct {
	Logger        *zap.Logger
	ChimeDuration time.Duration
}

func (p ConsolePlayer) Chime(ctx context.Context) error {
	duration := p.ChimeDuration
	if duration <= 0 {
		duration = DefaultChimeDuration
	}
	if p.Logger != nil {
		p.Logger.Info("chime")
	}
	select {
	case <-time.After(duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p ConsolePlayer) Speak(ctx context.Context, text string) error {
	if p.Logger != nil {
		p.Logger.Info("speak", zap.String("text", text))
	}
	return nil
}
