package surface

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ibher16/antrian-lab-ibsi/internal/announce"
	"github.com/ibher16/antrian-lab-ibsi/internal/client"
	"github.com/ibher16/antrian-lab-ibsi/internal/event"
	"github.com/ibher16/antrian-lab-ibsi/internal/httpapi"
	"github.com/ibher16/antrian-lab-ibsi/internal/models"
	"github.com/ibher16/antrian-lab-ibsi/internal/store/memory"
)

type nopHub struct{}

func (nopHub) Broadcast([]byte) {}

func newTestClient(t *testing.T) (*client.Client, *memory.Store) {
	t.Helper()
	ticketStore := memory.NewStore(memory.Options{})
	handler := httpapi.NewHandler(ticketStore, nopHub{}, nil)
	srv := httptest.NewServer(handler.Routes())
	t.Cleanup(srv.Close)
	return client.New(srv.URL), ticketStore
}

func TestAdminCallNextServesOldestWaiting(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	admin := NewAdmin(c, "", nil)
	admin.SetCounter(2)

	first, err := c.CreateTicket(ctx, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.CreateTicket(ctx, 1); err != nil {
		t.Fatalf("create: %v", err)
	}

	called, err := admin.CallNext(ctx)
	if err != nil {
		t.Fatalf("call next: %v", err)
	}
	if called.ID != first.ID {
		t.Fatalf("called ticket %d, want oldest %d", called.ID, first.ID)
	}
	if called.Counter != 2 {
		t.Fatalf("counter = %d, want 2", called.Counter)
	}
	if current, ok := admin.Current(); !ok || current.ID != first.ID {
		t.Fatalf("current = %+v ok=%v, want ticket %d", current, ok, first.ID)
	}
}

func TestAdminCallNextEmptyQueue(t *testing.T) {
	c, _ := newTestClient(t)
	admin := NewAdmin(c, "", nil)

	if _, err := admin.CallNext(context.Background()); err != ErrNoWaitingTickets {
		t.Fatalf("err = %v, want ErrNoWaitingTickets", err)
	}
}

func TestAdminFinishAndCallNext(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	admin := NewAdmin(c, "", nil)

	if _, err := c.CreateTicket(ctx, 1); err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := c.CreateTicket(ctx, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := admin.CallNext(ctx); err != nil {
		t.Fatalf("call next: %v", err)
	}

	next, err := admin.FinishAndCallNext(ctx)
	if err != nil {
		t.Fatalf("finish and call next: %v", err)
	}
	if next.ID != second.ID {
		t.Fatalf("next = %d, want %d", next.ID, second.ID)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Finished != 1 || stats.Calling != 1 {
		t.Fatalf("stats = %+v, want 1 finished 1 calling", stats)
	}
}

func TestAdminFinishWithoutCurrent(t *testing.T) {
	c, _ := newTestClient(t)
	admin := NewAdmin(c, "", nil)

	if err := admin.Finish(context.Background()); err != ErrNoCurrentTicket {
		t.Fatalf("err = %v, want ErrNoCurrentTicket", err)
	}
}

func TestAdminRecallAfterRestart(t *testing.T) {
	// A fresh admin process recovers the counter's current ticket from the
	// server rather than local memory.
	ctx := context.Background()
	c, _ := newTestClient(t)

	ticketA, err := c.CreateTicket(ctx, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.CallTicket(ctx, ticketA.ID, 3); err != nil {
		t.Fatalf("call: %v", err)
	}

	restarted := NewAdmin(c, "", nil)
	restarted.SetCounter(3)
	recalled, err := restarted.Recall(ctx)
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if recalled.ID != ticketA.ID {
		t.Fatalf("recalled %d, want %d", recalled.ID, ticketA.ID)
	}
}

func TestAdminResetNeedsTwoConfirmations(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	admin := NewAdmin(c, "", nil)

	if _, err := c.CreateTicket(ctx, 1); err != nil {
		t.Fatalf("create: %v", err)
	}

	answers := []bool{true, false}
	confirm := func(string) bool {
		answer := answers[0]
		answers = answers[1:]
		return answer
	}
	if err := admin.Reset(ctx, confirm); err != ErrResetAborted {
		t.Fatalf("err = %v, want ErrResetAborted", err)
	}
	stats, _ := c.Stats(ctx)
	if stats.Total != 1 {
		t.Fatalf("aborted reset removed tickets: %+v", stats)
	}

	if err := admin.Reset(ctx, func(string) bool { return true }); err != nil {
		t.Fatalf("reset: %v", err)
	}
	stats, _ = c.Stats(ctx)
	if stats.Total != 0 {
		t.Fatalf("stats after reset = %+v, want empty", stats)
	}
}

func TestAdminCounterPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter")
	c, _ := newTestClient(t)

	admin := NewAdmin(c, path, nil)
	if admin.Counter() != 1 {
		t.Fatalf("fresh counter = %d, want 1", admin.Counter())
	}
	admin.SetCounter(4)

	reloaded := NewAdmin(c, path, nil)
	if reloaded.Counter() != 4 {
		t.Fatalf("reloaded counter = %d, want 4", reloaded.Counter())
	}
}

func TestAdminRefetchIntervalIsConfigurable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fetches atomic.Int64
	ticketStore := memory.NewStore(memory.Options{})
	handler := httpapi.NewHandler(ticketStore, nopHub{}, nil)
	routes := handler.Routes()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/queue/waiting" {
			fetches.Add(1)
		}
		routes.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	admin := NewAdmin(client.New(srv.URL), "", nil)
	admin.RefetchEvery = 20 * time.Millisecond
	go admin.Run(ctx)

	deadline := time.After(2 * time.Second)
	for fetches.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("fetches = %d, want periodic refetch at the configured interval", fetches.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestAdminEventProjection(t *testing.T) {
	c, _ := newTestClient(t)
	admin := NewAdmin(c, "", nil)

	waiting := ticket(1, "A-001", models.StatusWaiting)
	admin.apply(event.NewTicket(waiting))
	admin.apply(event.NewTicket(waiting))

	s := admin.Snapshot()
	if len(s.Waiting) != 1 || s.Stats.Waiting != 1 {
		t.Fatalf("snapshot = %+v, want one waiting ticket counted once", s)
	}

	called := ticket(1, "A-001", models.StatusCalling)
	called.Counter = 1
	admin.apply(event.CallTicket(called))
	if s := admin.Snapshot(); len(s.Waiting) != 0 {
		t.Fatalf("waiting after call = %v, want empty", s.Waiting)
	}

	admin.apply(event.ResetQueue())
	if s := admin.Snapshot(); s.Current != nil || len(s.Waiting) != 0 {
		t.Fatalf("state after reset = %+v, want cleared", s)
	}
}

type countingPlayer struct {
	mu     sync.Mutex
	spoken []string
}

func (p *countingPlayer) Chime(context.Context) error { return nil }

func (p *countingPlayer) Speak(_ context.Context, text string) error {
	p.mu.Lock()
	p.spoken = append(p.spoken, text)
	p.mu.Unlock()
	return nil
}

func (p *countingPlayer) snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.spoken...)
}

func TestDisplayAnnouncesCalls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, _ := newTestClient(t)
	player := &countingPlayer{}
	sequencer := announce.NewSequencer(player, nil)
	go sequencer.Run(ctx)

	display := NewDisplay(c, sequencer, nil)
	rendered := make(chan State, 8)
	display.Render = func(s *State) { rendered <- *s }
	go display.Run(ctx)

	called := ticket(1, "A-001", models.StatusCalling)
	called.Counter = 2
	display.OnEvent(event.CallTicket(called))
	// Recall of the same ticket announces again but leaves state alone.
	display.OnEvent(event.CallTicket(called))

	var last State
	for i := 0; i < 2; i++ {
		select {
		case last = <-rendered:
		case <-time.After(2 * time.Second):
			t.Fatal("display never rendered")
		}
	}
	if last.Current == nil || last.Current.FormattedCode != "A-001" {
		t.Fatalf("current = %+v, want A-001", last.Current)
	}
	if len(last.History) != 0 {
		t.Fatalf("history = %v, want empty after recall", last.History)
	}

	deadline := time.After(2 * time.Second)
	for {
		spoken := player.snapshot()
		if len(spoken) == 2 {
			if !strings.Contains(spoken[0], "Nomor Antrian") {
				t.Fatalf("announcement text = %q", spoken[0])
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("announcements = %v, want 2", spoken)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDisplaySeedFromSnapshot(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	var ids []int
	for i := 0; i < 3; i++ {
		created, err := c.CreateTicket(ctx, 1)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, created.ID)
	}
	if _, err := c.CallTicket(ctx, ids[0], 1); err != nil {
		t.Fatalf("call: %v", err)
	}
	if err := c.FinishTicket(ctx, ids[0]); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := c.CallTicket(ctx, ids[1], 1); err != nil {
		t.Fatalf("call: %v", err)
	}

	display := NewDisplay(c, announce.NewSequencer(&countingPlayer{}, nil), nil)
	display.seed(ctx)

	if display.state.Current == nil || display.state.Current.ID != ids[1] {
		t.Fatalf("current = %+v, want calling ticket %d", display.state.Current, ids[1])
	}
	if len(display.state.History) != 1 || display.state.History[0].ID != ids[0] {
		t.Fatalf("history = %v, want finished ticket %d", display.state.History, ids[0])
	}
	if display.state.Settings.Title == "" {
		t.Fatal("settings not seeded")
	}
}

type recordingPrinter struct {
	tickets []models.Ticket
}

func (p *recordingPrinter) Print(t models.Ticket, _ models.Category) error {
	p.tickets = append(p.tickets, t)
	return nil
}

func TestKioskIssuePrintsTicket(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	printer := &recordingPrinter{}
	kiosk := NewKiosk(c, printer, nil)

	categories, err := kiosk.LoadCategories(ctx)
	if err != nil {
		t.Fatalf("load categories: %v", err)
	}
	if len(categories) != 3 {
		t.Fatalf("categories = %d, want 3", len(categories))
	}

	issued, err := kiosk.Issue(ctx, categories[1].ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued.FormattedCode != "B-001" {
		t.Fatalf("code = %q, want B-001", issued.FormattedCode)
	}
	if len(printer.tickets) != 1 || printer.tickets[0].ID != issued.ID {
		t.Fatalf("printed = %v, want issued ticket", printer.tickets)
	}
}
