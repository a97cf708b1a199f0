// Package client is the surfaces' request/response access to the ticket
// store. Calls are bounded in time; domain-expected negative outcomes map to
// the store's sentinel errors so surfaces can treat them as ordinary states.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ibher16/antrian-lab-ibsi/internal/models"
	"github.com/ibher16/antrian-lab-ibsi/internal/store"
)

const requestTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// WebSocketURL is the broadcast endpoint matching the store's base URL.
func (c *Client) WebSocketURL() string {
	url := c.baseURL + "/ws"
	if strings.HasPrefix(url, "https:") {
		return "wss:" + strings.TrimPrefix(url, "https:")
	}
	return "ws:" + strings.TrimPrefix(url, "http:")
}

func (c *Client) Stats(ctx context.Context) (models.QueueStats, error) {
	var stats models.QueueStats
	err := c.get(ctx, "/api/queue/stats", &stats)
	return stats, err
}

func (c *Client) WaitingTickets(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := c.get(ctx, "/api/queue/waiting", &tickets)
	return tickets, err
}

func (c *Client) RecentTickets(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := c.get(ctx, "/api/queue/recent", &tickets)
	return tickets, err
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := c.get(ctx, "/api/queue/categories", &categories)
	return categories, err
}

func (c *Client) CreateTicket(ctx context.Context, categoryID int) (models.Ticket, error) {
	var ticket models.Ticket
	err := c.post(ctx, "/api/queue/create", map[string]int{"category_id": categoryID}, &ticket)
	return ticket, err
}

func (c *Client) CallTicket(ctx context.Context, ticketID, counter int) (models.Ticket, error) {
	var ticket models.Ticket
	err := c.post(ctx, "/api/queue/call", map[string]int{"ticket_id": ticketID, "counter": counter}, &ticket)
	return ticket, err
}

func (c *Client) CallManual(ctx context.Context, code string, counter int) (models.Ticket, error) {
	var ticket models.Ticket
	err := c.post(ctx, "/api/queue/call-manual", map[string]any{"code": code, "counter": counter}, &ticket)
	return ticket, err
}

func (c *Client) Recall(ctx context.Context, counter int) (models.Ticket, error) {
	var ticket models.Ticket
	err := c.post(ctx, "/api/queue/recall", map[string]int{"counter": counter}, &ticket)
	return ticket, err
}

func (c *Client) SkipTicket(ctx context.Context, ticketID int) error {
	return c.post(ctx, "/api/queue/skip", map[string]int{"ticket_id": ticketID}, nil)
}

func (c *Client) FinishTicket(ctx context.Context, ticketID int) error {
	return c.post(ctx, "/api/queue/finish", map[string]int{"ticket_id": ticketID}, nil)
}

func (c *Client) ResetQueue(ctx context.Context) error {
	return c.post(ctx, "/api/queue/reset", map[string]string{}, nil)
}

func (c *Client) DisplaySettings(ctx context.Context) (models.DisplaySettings, error) {
	var settings models.DisplaySettings
	err := c.get(ctx, "/api/display/video", &settings)
	return settings, err
}

func (c *Client) UpdateDisplaySettings(ctx context.Context, settings models.DisplaySettings) error {
	return c.post(ctx, "/api/display/video", settings, nil)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeError(res)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(res *http.Response) error {
	var body errorBody
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil {
		switch body.Error.Code {
		case "ticket_not_found":
			return store.ErrTicketNotFound
		case "category_not_found":
			return store.ErrCategoryNotFound
		case "nothing_to_recall":
			return store.ErrNothingToRecall
		case "counter_busy":
			return store.ErrCounterBusy
		case "invalid_state":
			return store.ErrInvalidState
		}
	}
	return fmt.Errorf("store returned status %d", res.StatusCode)
}
