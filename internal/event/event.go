// Package event defines the broadcast envelope shared by the ticket store and
// every connected surface. Events are best-effort: a surface that is offline
// when one is emitted never sees it and recovers via snapshot refetch.
package event

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ibher16/antrian-lab-ibsi/internal/models"
)

type Kind string

const (
	KindNewTicket   Kind = "NEW_TICKET"
	KindCallTicket  Kind = "CALL_TICKET"
	KindResetQueue  Kind = "RESET_QUEUE"
	KindUpdateVideo Kind = "UPDATE_VIDEO"
)

var ErrUnknownKind = errors.New("unknown event kind")

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event is the decoded form of one broadcast message. Exactly one payload
// field is set, matching the kind; RESET_QUEUE carries none.
type Event struct {
	Kind     Kind
	Ticket   *models.Ticket
	Settings *models.DisplaySettings
}

func NewTicket(ticket models.Ticket) Event {
	return Event{Kind: KindNewTicket, Ticket: &ticket}
}

func CallTicket(ticket models.Ticket) Event {
	return Event{Kind: KindCallTicket, Ticket: &ticket}
}

func ResetQueue() Event {
	return Event{Kind: KindResetQueue}
}

func UpdateVideo(settings models.DisplaySettings) Event {
	return Event{Kind: KindUpdateVideo, Settings: &settings}
}

// Encode renders the event as a wire envelope.
func Encode(ev Event) ([]byte, error) {
	env := envelope{Type: string(ev.Kind)}
	var payload any
	switch ev.Kind {
	case KindNewTicket, KindCallTicket:
		payload = ev.Ticket
	case KindUpdateVideo:
		payload = ev.Settings
	case KindResetQueue:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// Decode parses one inbound message. A malformed envelope or payload returns
// an error so the channel can discard the message without closing.
func Decode(raw []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, err
	}
	switch Kind(env.Type) {
	case KindNewTicket, KindCallTicket:
		var ticket models.Ticket
		if err := json.Unmarshal(env.Data, &ticket); err != nil {
			return Event{}, err
		}
		return Event{Kind: Kind(env.Type), Ticket: &ticket}, nil
	case KindUpdateVideo:
		var settings models.DisplaySettings
		if err := json.Unmarshal(env.Data, &settings); err != nil {
			return Event{}, err
		}
		return Event{Kind: KindUpdateVideo, Settings: &settings}, nil
	case KindResetQueue:
		return Event{Kind: KindResetQueue}, nil
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}
}
