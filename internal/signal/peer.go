package signal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	sendBuffer   = 32
	writeTimeout = 10 * time.Second
)

// Peer is one connected signaling client.
type Peer struct {
	ID     string
	UserID primitive.ObjectID
	RoomID string

	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan Envelope
}

// NewPeer creates a peer for a room. conn may be nil in tests.
func NewPeer(userID primitive.ObjectID, roomID string, conn *websocket.Conn) *Peer {
	return &Peer{
		ID:     uuid.NewString(),
		UserID: userID,
		RoomID: roomID,
		conn:   conn,
		send:   make(chan Envelope, sendBuffer),
	}
}

// Outbox exposes the send queue (read side).
func (p *Peer) Outbox() <-chan Envelope { return p.send }

// enqueue queues a frame, dropping it if the peer has disconnected or its
// buffer is full. A slow consumer must not stall the room. The mutex pairs
// with close: a frame racing a disconnect is dropped, never sent on a closed
// channel.
func (p *Peer) enqueue(env Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.send <- env:
	default:
		logrus.WithFields(logrus.Fields{
			"peerId": p.ID,
			"event":  env.Event,
		}).Warn("peer send buffer full, dropping frame")
	}
}

func (p *Peer) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.send)
}

// Serve pumps frames between the websocket connection and the hub until the
// client disconnects. It blocks; the caller owns the connection.
func (h *Hub) Serve(ctx context.Context, p *Peer) {
	defer p.conn.Close()

	h.Join(ctx, p)

	// Writer. Leave closes the send channel, which lets the writer drain
	// pending frames; the wait on done keeps the connection open until it has.
	done := make(chan struct{})
	defer func() {
		h.Leave(context.WithoutCancel(ctx), p)
		<-done
	}()
	go func() {
		defer close(done)
		for env := range p.send {
			p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := p.conn.WriteJSON(env); err != nil {
				return
			}
		}
	}()

	// Reader
	for {
		var env Envelope
		if err := p.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("peerId", p.ID).Debug("signaling read error")
			}
			break
		}
		if env.Event == EventLeaveRoom {
			break
		}
		h.Route(p, env)
	}
}
