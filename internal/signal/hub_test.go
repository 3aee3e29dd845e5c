package signal

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordedEvent struct {
	roomID    string
	userID    primitive.ObjectID
	remaining int
}

type fakeRoomEvents struct {
	mu     sync.Mutex
	joins  []recordedEvent
	leaves []recordedEvent
}

func (f *fakeRoomEvents) PeerJoined(_ context.Context, roomID string, userID primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, recordedEvent{roomID: roomID, userID: userID})
}

func (f *fakeRoomEvents) PeerLeft(_ context.Context, roomID string, userID primitive.ObjectID, remaining int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaves = append(f.leaves, recordedEvent{roomID: roomID, userID: userID, remaining: remaining})
}

func drain(p *Peer) []Envelope {
	var out []Envelope
	for {
		select {
		case env := <-p.Outbox():
			out = append(out, env)
		default:
			return out
		}
	}
}

func joinPeer(hub *Hub, room string) *Peer {
	p := NewPeer(primitive.NewObjectID(), room, nil)
	hub.Join(context.Background(), p)
	return p
}

func TestJoinSendsPeerList(t *testing.T) {
	hub := NewHub(nil)

	first := joinPeer(hub, "room-1")
	got := drain(first)
	if len(got) != 1 || got[0].Event != EventPeerList {
		t.Fatalf("first peer frames = %+v, want one peer-list", got)
	}
	var list []string
	if err := json.Unmarshal(got[0].Payload, &list); err != nil {
		t.Fatalf("bad peer-list payload: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("peer-list = %v, want empty", list)
	}

	second := joinPeer(hub, "room-1")
	got = drain(second)
	if len(got) != 1 || got[0].Event != EventPeerList {
		t.Fatalf("second peer frames = %+v, want one peer-list", got)
	}
	if err := json.Unmarshal(got[0].Payload, &list); err != nil {
		t.Fatalf("bad peer-list payload: %v", err)
	}
	if len(list) != 1 || list[0] != first.ID {
		t.Errorf("peer-list = %v, want [%s]", list, first.ID)
	}

	// The first peer hears the join announcement.
	got = drain(first)
	if len(got) != 1 || got[0].Event != EventJoinRoom || got[0].From != second.ID {
		t.Fatalf("announcement = %+v, want join-room from %s", got, second.ID)
	}
}

func TestOfferRoutedToAddressee(t *testing.T) {
	hub := NewHub(nil)
	a := joinPeer(hub, "room-1")
	b := joinPeer(hub, "room-1")
	c := joinPeer(hub, "room-1")
	drain(a)
	drain(b)
	drain(c)

	hub.Route(a, Envelope{Event: EventOffer, To: b.ID, Payload: json.RawMessage(`{"sdp":"x"}`)})

	got := drain(b)
	if len(got) != 1 || got[0].Event != EventOffer {
		t.Fatalf("addressee frames = %+v, want one offer", got)
	}
	if got[0].From != a.ID {
		t.Errorf("from = %q, want sender id %q (server-assigned)", got[0].From, a.ID)
	}
	if got[0].UserID != a.UserID.Hex() {
		t.Errorf("userId = %q, want %q", got[0].UserID, a.UserID.Hex())
	}
	if frames := drain(c); len(frames) != 0 {
		t.Errorf("third peer got %+v, want nothing", frames)
	}
}

func TestOfferWithoutAddresseeReturnsError(t *testing.T) {
	hub := NewHub(nil)
	a := joinPeer(hub, "room-1")
	drain(a)

	hub.Route(a, Envelope{Event: EventOffer})

	got := drain(a)
	if len(got) != 1 || got[0].Event != EventError {
		t.Fatalf("frames = %+v, want one error", got)
	}
}

func TestTogglesBroadcast(t *testing.T) {
	hub := NewHub(nil)
	a := joinPeer(hub, "room-1")
	b := joinPeer(hub, "room-1")
	c := joinPeer(hub, "room-1")
	drain(a)
	drain(b)
	drain(c)

	hub.Route(a, Envelope{Event: EventToggleAudio, Payload: json.RawMessage(`{"muted":true}`)})

	for _, p := range []*Peer{b, c} {
		got := drain(p)
		if len(got) != 1 || got[0].Event != EventToggleAudio {
			t.Fatalf("peer %s frames = %+v, want one toggle-audio", p.ID, got)
		}
	}
	// Never echoed back to the sender.
	if frames := drain(a); len(frames) != 0 {
		t.Errorf("sender got %+v, want nothing", frames)
	}
}

func TestSpoofedSenderOverwritten(t *testing.T) {
	hub := NewHub(nil)
	a := joinPeer(hub, "room-1")
	b := joinPeer(hub, "room-1")
	drain(a)
	drain(b)

	hub.Route(a, Envelope{Event: EventAnswer, To: b.ID, From: "someone-else", UserID: "fake"})

	got := drain(b)
	if len(got) != 1 {
		t.Fatalf("frames = %+v, want one answer", got)
	}
	if got[0].From != a.ID || got[0].UserID != a.UserID.Hex() {
		t.Errorf("sender identity = (%q, %q), want (%q, %q)", got[0].From, got[0].UserID, a.ID, a.UserID.Hex())
	}
}

func TestUnknownEventDropped(t *testing.T) {
	hub := NewHub(nil)
	a := joinPeer(hub, "room-1")
	b := joinPeer(hub, "room-1")
	drain(a)
	drain(b)

	hub.Route(a, Envelope{Event: "eavesdrop", To: b.ID})

	if frames := drain(b); len(frames) != 0 {
		t.Errorf("unknown event delivered: %+v", frames)
	}
}

func TestLeaveNotifiesRoom(t *testing.T) {
	events := &fakeRoomEvents{}
	hub := NewHub(events)
	ctx := context.Background()

	a := joinPeer(hub, "room-1")
	b := joinPeer(hub, "room-1")
	drain(a)
	drain(b)

	hub.Leave(ctx, b)

	got := drain(a)
	if len(got) != 1 || got[0].Event != EventLeaveRoom || got[0].From != b.ID {
		t.Fatalf("frames = %+v, want leave-room from %s", got, b.ID)
	}
	if hub.PeerCount("room-1") != 1 {
		t.Errorf("peer count = %d, want 1", hub.PeerCount("room-1"))
	}

	hub.Leave(ctx, a)
	if hub.PeerCount("room-1") != 0 {
		t.Errorf("peer count = %d after last leave, want 0", hub.PeerCount("room-1"))
	}

	events.mu.Lock()
	defer events.mu.Unlock()
	if len(events.joins) != 2 || len(events.leaves) != 2 {
		t.Fatalf("events = %d joins / %d leaves, want 2 / 2", len(events.joins), len(events.leaves))
	}
	if events.leaves[0].remaining != 1 || events.leaves[1].remaining != 0 {
		t.Errorf("remaining counts = %d, %d, want 1, 0", events.leaves[0].remaining, events.leaves[1].remaining)
	}
}

func TestRelayRacingDisconnect(t *testing.T) {
	hub := NewHub(nil)
	sender := joinPeer(hub, "room-1")
	target := joinPeer(hub, "room-1")
	drain(sender)
	drain(target)

	// ICE bursts keep arriving while the addressee disconnects; frames for
	// the departed peer are dropped, and relaying must not tear anything down.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			hub.Route(sender, Envelope{Event: EventICECandidate, To: target.ID, Payload: json.RawMessage(`{"candidate":"x"}`)})
		}
	}()
	hub.Leave(context.Background(), target)
	wg.Wait()

	if got := hub.PeerCount("room-1"); got != 1 {
		t.Fatalf("peer count = %d, want 1", got)
	}
	// The sender still works: only the leave announcement arrived.
	for _, env := range drain(sender) {
		if env.Event != EventLeaveRoom {
			t.Errorf("sender got %q, want only leave-room", env.Event)
		}
	}
}

func TestRoomsIsolated(t *testing.T) {
	hub := NewHub(nil)
	a := joinPeer(hub, "room-1")
	b := joinPeer(hub, "room-2")
	drain(a)
	drain(b)

	hub.Route(a, Envelope{Event: EventToggleVideo})

	if frames := drain(b); len(frames) != 0 {
		t.Errorf("cross-room delivery: %+v", frames)
	}
}
