// Package memory implements the ticket store in process memory. It backs the
// demo mode and the test suites; the postgres store is the production path.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ibher16/antrian-lab-ibsi/internal/models"
	"github.com/ibher16/antrian-lab-ibsi/internal/store"
)

type Store struct {
	mu         sync.Mutex
	nextID     int
	tickets    []models.Ticket
	categories []models.Category
	settings   models.DisplaySettings
	now        func() time.Time
}

type Options struct {
	Categories []models.Category
	Now        func() time.Time
}

func NewStore(options Options) *Store {
	categories := options.Categories
	if len(categories) == 0 {
		categories = models.DefaultCategories()
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		nextID:     1,
		categories: categories,
		settings:   models.DisplaySettings{Title: "Pentingnya Mencuci Tangan", Subtitle: "Tips Kesehatan Harian"},
		now:        now,
	}
}

func sameDay(a, b time.Time) bool {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	return ya == yb && ma == mb && da == db
}

func (s *Store) category(id int) (models.Category, bool) {
	for _, category := range s.categories {
		if category.ID == id {
			return category, true
		}
	}
	return models.Category{}, false
}

func (s *Store) CreateTicket(ctx context.Context, categoryID int) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, ok := s.category(categoryID)
	if !ok {
		return models.Ticket{}, store.ErrCategoryNotFound
	}

	today := s.now()
	sequence := 0
	for _, ticket := range s.tickets {
		if ticket.CategoryID == categoryID && sameDay(ticket.CreatedAt, today) && ticket.Sequence > sequence {
			sequence = ticket.Sequence
		}
	}
	sequence++

	ticket := models.Ticket{
		ID:            s.nextID,
		CategoryID:    categoryID,
		Sequence:      sequence,
		FormattedCode: models.FormatCode(category.Prefix, sequence),
		Status:        models.StatusWaiting,
		CreatedAt:     today,
	}
	s.nextID++
	s.tickets = append(s.tickets, ticket)
	return ticket, nil
}

func (s *Store) WaitingTickets(ctx context.Context) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now()
	var waiting []models.Ticket
	for _, ticket := range s.tickets {
		if ticket.Status == models.StatusWaiting && sameDay(ticket.CreatedAt, today) {
			waiting = append(waiting, ticket)
		}
	}
	return waiting, nil
}

func (s *Store) RecentTickets(ctx context.Context, limit int) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 5
	}
	today := s.now()
	var recent []models.Ticket
	for i := len(s.tickets) - 1; i >= 0 && len(recent) < limit; i-- {
		if sameDay(s.tickets[i].CreatedAt, today) {
			recent = append(recent, s.tickets[i])
		}
	}
	return recent, nil
}

func (s *Store) TicketByCode(ctx context.Context, code string) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now()
	for _, ticket := range s.tickets {
		if ticket.FormattedCode == code && sameDay(ticket.CreatedAt, today) {
			return ticket, nil
		}
	}
	return models.Ticket{}, store.ErrTicketNotFound
}

func (s *Store) CallTicket(ctx context.Context, ticketID, counter int) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexByID(ticketID)
	if index < 0 {
		return models.Ticket{}, store.ErrTicketNotFound
	}
	if !models.ValidTransition(models.ActionCall, s.tickets[index].Status) {
		return models.Ticket{}, store.ErrInvalidState
	}

	today := s.now()
	for _, ticket := range s.tickets {
		if ticket.Status == models.StatusCalling && ticket.Counter == counter && sameDay(ticket.CreatedAt, today) {
			return models.Ticket{}, store.ErrCounterBusy
		}
	}

	s.tickets[index].Status = models.StatusCalling
	s.tickets[index].Counter = counter
	return s.tickets[index], nil
}

func (s *Store) RecallTicket(ctx context.Context, counter int) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now()
	for _, ticket := range s.tickets {
		if ticket.Status == models.StatusCalling && ticket.Counter == counter && sameDay(ticket.CreatedAt, today) {
			return ticket, nil
		}
	}
	return models.Ticket{}, store.ErrNothingToRecall
}

func (s *Store) FinishTicket(ctx context.Context, ticketID int) error {
	return s.applyAction(ticketID, models.ActionFinish, models.StatusFinished)
}

func (s *Store) SkipTicket(ctx context.Context, ticketID int) error {
	return s.applyAction(ticketID, models.ActionSkip, models.StatusSkipped)
}

func (s *Store) applyAction(ticketID int, action, toStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexByID(ticketID)
	if index < 0 {
		return store.ErrTicketNotFound
	}
	if !models.ValidTransition(action, s.tickets[index].Status) {
		return store.ErrInvalidState
	}
	s.tickets[index].Status = toStatus
	return nil
}

func (s *Store) ResetQueue(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now()
	kept := s.tickets[:0]
	for _, ticket := range s.tickets {
		if !sameDay(ticket.CreatedAt, today) {
			kept = append(kept, ticket)
		}
	}
	s.tickets = kept
	return nil
}

func (s *Store) Stats(ctx context.Context) (models.QueueStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now()
	var stats models.QueueStats
	for _, ticket := range s.tickets {
		if !sameDay(ticket.CreatedAt, today) {
			continue
		}
		stats.Total++
		switch ticket.Status {
		case models.StatusWaiting:
			stats.Waiting++
		case models.StatusCalling:
			stats.Calling++
		case models.StatusFinished:
			stats.Finished++
		case models.StatusSkipped:
			stats.Skipped++
		}
	}
	return stats, nil
}

func (s *Store) Categories(ctx context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories := make([]models.Category, len(s.categories))
	copy(categories, s.categories)
	return categories, nil
}

func (s *Store) DisplaySettings(ctx context.Context) (models.DisplaySettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *Store) UpdateDisplaySettings(ctx context.Context, settings models.DisplaySettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

func (s *Store) indexByID(ticketID int) int {
	for i := range s.tickets {
		if s.tickets[i].ID == ticketID {
			return i
		}
	}
	return -1
}
