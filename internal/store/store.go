package store

import (
	"context"

	"github.com/ibher16/antrian-lab-ibsi/internal/models"
)

// TicketStore owns all persistent queue state. Every state change is scoped to
// the current service day: sequences restart daily and reset removes only
// today's tickets.
type TicketStore interface {
	CreateTicket(ctx context.Context, categoryID int) (models.Ticket, error)
	WaitingTickets(ctx context.Context) ([]models.Ticket, error)
	RecentTickets(ctx context.Context, limit int) ([]models.Ticket, error)
	TicketByCode(ctx context.Context, code string) (models.Ticket, error)
	CallTicket(ctx context.Context, ticketID, counter int) (models.Ticket, error)
	RecallTicket(ctx context.Context, counter int) (models.Ticket, error)
	FinishTicket(ctx context.Context, ticketID int) error
	SkipTicket(ctx context.Context, ticketID int) error
	ResetQueue(ctx context.Context) error
	Stats(ctx context.Context) (models.QueueStats, error)
	Categories(ctx context.Context) ([]models.Category, error)
	DisplaySettings(ctx context.Context) (models.DisplaySettings, error)
	UpdateDisplaySettings(ctx context.Context, settings models.DisplaySettings) error
}
