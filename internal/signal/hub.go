package signal

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Signaling events. Offer/answer/ICE are relayed to the addressed peer only;
// the rest broadcast to everyone else in the room.
const (
	EventJoinRoom     = "join-room"
	EventLeaveRoom    = "leave-room"
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "ice-candidate"
	EventToggleAudio  = "toggle-audio"
	EventToggleVideo  = "toggle-video"
	EventPeerList     = "peer-list"
	EventError        = "error"
)

// Envelope is the JSON frame exchanged on the signaling socket. Payload
// carries SDP or ICE data and is forwarded verbatim.
type Envelope struct {
	Event   string          `json:"event"`
	From    string          `json:"from,omitempty"`
	To      string          `json:"to,omitempty"`
	UserID  string          `json:"userId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RoomEvents receives lifecycle notifications from the hub.
type RoomEvents interface {
	PeerJoined(ctx context.Context, roomID string, userID primitive.ObjectID)
	PeerLeft(ctx context.Context, roomID string, userID primitive.ObjectID, remaining int)
}

// Hub tracks connected peers per room and relays signaling frames between
// them. It never inspects payloads.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]*Peer
	events RoomEvents
}

func NewHub(events RoomEvents) *Hub {
	return &Hub{
		rooms:  make(map[string]map[string]*Peer),
		events: events,
	}
}

// Join registers the peer, announces it to the room and notifies RoomEvents.
// The joining peer receives the current peer list.
func (h *Hub) Join(ctx context.Context, p *Peer) {
	h.mu.Lock()
	room, ok := h.rooms[p.RoomID]
	if !ok {
		room = make(map[string]*Peer)
		h.rooms[p.RoomID] = room
	}
	peers := make([]string, 0, len(room))
	for id := range room {
		peers = append(peers, id)
	}
	room[p.ID] = p
	h.mu.Unlock()

	list, _ := json.Marshal(peers)
	p.enqueue(Envelope{Event: EventPeerList, Payload: list})

	h.broadcast(p, Envelope{Event: EventJoinRoom, From: p.ID, UserID: p.UserID.Hex()})

	if h.events != nil {
		h.events.PeerJoined(ctx, p.RoomID, p.UserID)
	}
	logrus.WithFields(logrus.Fields{
		"roomId": p.RoomID,
		"peerId": p.ID,
		"userId": p.UserID.Hex(),
	}).Info("peer joined room")
}

// Leave unregisters the peer, announces the departure and notifies RoomEvents
// with the number of peers remaining.
func (h *Hub) Leave(ctx context.Context, p *Peer) {
	h.mu.Lock()
	remaining := 0
	if room, ok := h.rooms[p.RoomID]; ok {
		delete(room, p.ID)
		remaining = len(room)
		if remaining == 0 {
			delete(h.rooms, p.RoomID)
		}
	}
	h.mu.Unlock()

	p.close()
	h.broadcast(p, Envelope{Event: EventLeaveRoom, From: p.ID, UserID: p.UserID.Hex()})

	if h.events != nil {
		h.events.PeerLeft(ctx, p.RoomID, p.UserID, remaining)
	}
	logrus.WithFields(logrus.Fields{
		"roomId":    p.RoomID,
		"peerId":    p.ID,
		"remaining": remaining,
	}).Info("peer left room")
}

// Route dispatches one inbound frame from p. The sender id is always
// overwritten server-side; clients cannot spoof From.
func (h *Hub) Route(p *Peer, env Envelope) {
	env.From = p.ID
	env.UserID = p.UserID.Hex()

	switch env.Event {
	case EventOffer, EventAnswer, EventICECandidate:
		if env.To == "" {
			p.enqueue(Envelope{Event: EventError, Payload: json.RawMessage(`"missing 'to' peer id"`)})
			return
		}
		h.sendTo(p.RoomID, env.To, env)
	case EventToggleAudio, EventToggleVideo:
		h.broadcast(p, env)
	default:
		logrus.WithFields(logrus.Fields{
			"roomId": p.RoomID,
			"peerId": p.ID,
			"event":  env.Event,
		}).Warn("dropping unknown signaling event")
	}
}

// sendTo delivers to one peer in the room.
func (h *Hub) sendTo(roomID, peerID string, env Envelope) {
	h.mu.RLock()
	var target *Peer
	if room, ok := h.rooms[roomID]; ok {
		target = room[peerID]
	}
	h.mu.RUnlock()

	if target == nil {
		logrus.WithFields(logrus.Fields{
			"roomId": roomID,
			"peerId": peerID,
			"event":  env.Event,
		}).Debug("dropping frame for unknown peer")
		return
	}
	target.enqueue(env)
}

// broadcast delivers to every peer in the room except the sender.
func (h *Hub) broadcast(sender *Peer, env Envelope) {
	h.mu.RLock()
	room := h.rooms[sender.RoomID]
	targets := make([]*Peer, 0, len(room))
	for id, peer := range room {
		if id != sender.ID {
			targets = append(targets, peer)
		}
	}
	h.mu.RUnlock()

	for _, peer := range targets {
		peer.enqueue(env)
	}
}

// PeerCount returns the number of connected peers in a room.
func (h *Hub) PeerCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
