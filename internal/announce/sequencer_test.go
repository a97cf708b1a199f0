package announce

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ibher16/antrian-lab-ibsi/internal/models"
)

func TestSpokenCode(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"A-005", "A nol nol lima"},
		{"B-012", "Be nol satu dua"},
		{"C-130", "Ce satu tiga nol"},
		{"Z-001", "Zet nol nol satu"},
	}
	for _, tt := range cases {
		if got := SpokenCode(tt.code); got != tt.want {
			t.Fatalf("SpokenCode(%q)=%q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestSpokenCounter(t *testing.T) {
	cases := []struct {
		counter int
		want    string
	}{
		{1, "satu"},
		{12, "dua belas"},
		{20, "dua puluh"},
		{21, "dua satu"},
		{105, "satu nol lima"},
	}
	for _, tt := range cases {
		if got := SpokenCounter(tt.counter); got != tt.want {
			t.Fatalf("SpokenCounter(%d)=%q, want %q", tt.counter, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	ticket := models.Ticket{FormattedCode: "A-005", Counter: 3}
	want := "Nomor Antrian A nol nol lima, Menuju Loket tiga"
	if got := Text(ticket); got != want {
		t.Fatalf("Text=%q, want %q", got, want)
	}

	// Counter zero falls back to counter one, as the display does.
	unassigned := models.Ticket{FormattedCode: "B-001"}
	if got := Text(unassigned); got != "Nomor Antrian Be nol nol satu, Menuju Loket satu" {
		t.Fatalf("Text=%q", got)
	}
}

type step struct {
	kind string // "chime" or "speak"
	text string
	at   time.Time
}

type recordingPlayer struct {
	mu            sync.Mutex
	steps         []step
	chimeDuration time.Duration
}

func (p *recordingPlayer) Chime(ctx context.Context) error {
	p.record("chime", "")
	time.Sleep(p.chimeDuration)
	return nil
}

func (p *recordingPlayer) Speak(ctx context.Context, text string) error {
	p.record("speak", text)
	return nil
}

func (p *recordingPlayer) record(kind, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, step{kind: kind, text: text, at: time.Now()})
}

func (p *recordingPlayer) snapshot() []step {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]step(nil), p.steps...)
}

func TestAnnouncementsAreSerialized(t *testing.T) {
	player := &recordingPlayer{chimeDuration: 30 * time.Millisecond}
	sequencer := NewSequencer(player, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sequencer.Run(ctx)

	// Two calls on different counters arriving back to back.
	sequencer.Announce(models.Ticket{FormattedCode: "A-001", Counter: 1})
	sequencer.Announce(models.Ticket{FormattedCode: "B-001", Counter: 2})

	deadline := time.Now().Add(2 * time.Second)
	var steps []step
	for {
		steps = player.snapshot()
		if len(steps) >= 4 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	wantKinds := []string{"chime", "speak", "chime", "speak"}
	if len(steps) != len(wantKinds) {
		t.Fatalf("got %d steps, want %d", len(steps), len(wantKinds))
	}
	for i, kind := range wantKinds {
		if steps[i].kind != kind {
			t.Fatalf("step %d is %s, want %s", i, steps[i].kind, kind)
		}
	}

	// The first announcement's speech begins only after its chime completes,
	// and the second chime only after that.
	if steps[1].at.Sub(steps[0].at) < player.chimeDuration {
		t.Fatal("speech started before the chime finished")
	}
	if steps[1].text != Text(models.Ticket{FormattedCode: "A-001", Counter: 1}) {
		t.Fatalf("first speech=%q", steps[1].text)
	}
	if steps[3].text != Text(models.Ticket{FormattedCode: "B-001", Counter: 2}) {
		t.Fatalf("second speech=%q", steps[3].text)
	}
}
