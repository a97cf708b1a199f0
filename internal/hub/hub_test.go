package hub

import "testing"

func TestBroadcastReachesAllClients(t *testing.T) {
	h := New(nil)
	a := &Client{ID: "a", Send: make(chan []byte, 1)}
	b := &Client{ID: "b", Send: make(chan []byte, 1)}
	h.Register(a)
	h.Register(b)

	h.Broadcast([]byte("hello"))

	for _, client := range []*Client{a, b} {
		select {
		case payload := <-client.Send:
			if string(payload) != "hello" {
				t.Fatalf("client %s got %q", client.ID, payload)
			}
		default:
			t.Fatalf("client %s received nothing", client.ID)
		}
	}
}

func TestBroadcastDropsForSlowClient(t *testing.T) {
	h := New(nil)
	slow := &Client{ID: "slow", Send: make(chan []byte, 1)}
	h.Register(slow)

	h.Broadcast([]byte("one"))
	h.Broadcast([]byte("two")) // buffer full, dropped

	if got := <-slow.Send; string(got) != "one" {
		t.Fatalf("got %q, want first message", got)
	}
	select {
	case payload := <-slow.Send:
		t.Fatalf("unexpected second message %q", payload)
	default:
	}
}

func TestUnregisterClosesSendOnce(t *testing.T) {
	h := New(nil)
	client := &Client{ID: "c", Send: make(chan []byte, 1)}
	h.Register(client)
	h.Unregister(client)
	h.Unregister(client) // second call is a no-op

	if _, open := <-client.Send; open {
		t.Fatal("send channel still open after unregister")
	}
	if h.ClientCount() != 0 {
		t.Fatalf("client count=%d, want 0", h.ClientCount())
	}
	h.Broadcast([]byte("late")) // must not panic
}
