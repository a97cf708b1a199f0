package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ibher16/antrian-lab-ibsi/internal/models"
	"github.com/ibher16/antrian-lab-ibsi/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const ticketColumns = "id, category_id, sequence, formatted_code, status, counter, created_at"

func scanTicket(row pgx.Row) (models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(&t.ID, &t.CategoryID, &t.Sequence, &t.FormattedCode, &t.Status, &t.Counter, &t.CreatedAt)
	return t, err
}

func (s *Store) CreateTicket(ctx context.Context, categoryID int) (models.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Serializes sequence assignment within a category.
	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(categoryID)); err != nil {
		return models.Ticket{}, err
	}

	var prefix string
	err = tx.QueryRow(ctx, `SELECT prefix FROM categories WHERE id = $1`, categoryID).Scan(&prefix)
	if errors.Is(err, pgx.ErrNoRows) {
		err = store.ErrCategoryNotFound
		return models.Ticket{}, err
	}
	if err != nil {
		return models.Ticket{}, err
	}

	var lastSequence int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(sequence), 0)
		FROM tickets
		WHERE category_id = $1 AND created_at::date = CURRENT_DATE
	`, categoryID).Scan(&lastSequence)
	if err != nil {
		return models.Ticket{}, err
	}

	sequence := lastSequence + 1
	code := models.FormatCode(prefix, sequence)

	ticket := models.Ticket{
		CategoryID:    categoryID,
		Sequence:      sequence,
		FormattedCode: code,
		Status:        models.StatusWaiting,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO tickets (category_id, sequence, formatted_code, status, counter)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING id, created_at
	`, categoryID, sequence, code, models.StatusWaiting).Scan(&ticket.ID, &ticket.CreatedAt)
	if err != nil {
		return models.Ticket{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (s *Store) WaitingTickets(ctx context.Context) ([]models.Ticket, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE status = $1 AND created_at::date = CURRENT_DATE
		ORDER BY id ASC
	`, models.StatusWaiting)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (s *Store) RecentTickets(ctx context.Context, limit int) ([]models.Ticket, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE created_at::date = CURRENT_DATE
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (s *Store) TicketByCode(ctx context.Context, code string) (models.Ticket, error) {
	ticket, err := scanTicket(s.pool.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE formatted_code = $1 AND created_at::date = CURRENT_DATE
	`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Ticket{}, store.ErrTicketNotFound
	}
	return ticket, err
}

func (s *Store) CallTicket(ctx context.Context, ticketID, counter int) (models.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	ticket, err := scanTicket(tx.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE id = $1
		FOR UPDATE
	`, ticketID))
	if errors.Is(err, pgx.ErrNoRows) {
		err = store.ErrTicketNotFound
		return models.Ticket{}, err
	}
	if err != nil {
		return models.Ticket{}, err
	}
	if !models.ValidTransition(models.ActionCall, ticket.Status) {
		err = store.ErrInvalidState
		return models.Ticket{}, err
	}

	var busy bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM tickets
			WHERE status = $1 AND counter = $2 AND created_at::date = CURRENT_DATE
		)
	`, models.StatusCalling, counter).Scan(&busy)
	if err != nil {
		return models.Ticket{}, err
	}
	if busy {
		err = store.ErrCounterBusy
		return models.Ticket{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE tickets SET status = $1, counter = $2 WHERE id = $3
	`, models.StatusCalling, counter, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, err
	}
	ticket.Status = models.StatusCalling
	ticket.Counter = counter
	return ticket, nil
}

func (s *Store) RecallTicket(ctx context.Context, counter int) (models.Ticket, error) {
	ticket, err := scanTicket(s.pool.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE status = $1 AND counter = $2 AND created_at::date = CURRENT_DATE
		ORDER BY id DESC
		LIMIT 1
	`, models.StatusCalling, counter))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Ticket{}, store.ErrNothingToRecall
	}
	return ticket, err
}

func (s *Store) FinishTicket(ctx context.Context, ticketID int) error {
	return s.transition(ctx, ticketID, models.StatusCalling, models.StatusFinished)
}

func (s *Store) SkipTicket(ctx context.Context, ticketID int) error {
	return s.transition(ctx, ticketID, models.StatusWaiting, models.StatusSkipped)
}

func (s *Store) transition(ctx context.Context, ticketID int, fromStatus, toStatus string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tickets SET status = $1 WHERE id = $2 AND status = $3
	`, toStatus, ticketID, fromStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id = $1)`, ticketID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return store.ErrTicketNotFound
	}
	return store.ErrInvalidState
}

func (s *Store) ResetQueue(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM tickets WHERE created_at::date = CURRENT_DATE`)
	return err
}

func (s *Store) Stats(ctx context.Context) (models.QueueStats, error) {
	var stats models.QueueStats
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'waiting'),
			COUNT(*) FILTER (WHERE status = 'calling'),
			COUNT(*) FILTER (WHERE status = 'finished'),
			COUNT(*) FILTER (WHERE status = 'skipped'),
			COUNT(*)
		FROM tickets
		WHERE created_at::date = CURRENT_DATE
	`).Scan(&stats.Waiting, &stats.Calling, &stats.Finished, &stats.Skipped, &stats.Total)
	return stats, err
}

func (s *Store) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, prefix, color_code FROM categories ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Prefix, &category.Color); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (s *Store) DisplaySettings(ctx context.Context) (models.DisplaySettings, error) {
	var settings models.DisplaySettings
	err := s.pool.QueryRow(ctx, `
		SELECT video_url, title, subtitle FROM display_settings WHERE id = 1
	`).Scan(&settings.VideoURL, &settings.Title, &settings.Subtitle)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DisplaySettings{}, nil
	}
	return settings, err
}

func (s *Store) UpdateDisplaySettings(ctx context.Context, settings models.DisplaySettings) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE display_settings SET video_url = $1, title = $2, subtitle = $3 WHERE id = 1
	`, settings.VideoURL, settings.Title, settings.Subtitle)
	return err
}

func collectTickets(rows pgx.Rows) ([]models.Ticket, error) {
	var tickets []models.Ticket
	for rows.Next() {
		var t models.Ticket
		if err := rows.Scan(&t.ID, &t.CategoryID, &t.Sequence, &t.FormattedCode, &t.Status, &t.Counter, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
