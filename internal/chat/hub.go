package chat

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"go-chat-auth/internal/metrics"
)

// Hub owns the set of live clients. Only the Run goroutine touches the
// set; everything else talks to it through Join, Leave and Broadcast.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	count atomic.Int64

	// pumps counts running client goroutines. mu guards Add against the
	// Wait in Shutdown: once stopped is set nothing new is tracked.
	mu      sync.Mutex
	stopped bool
	pumps   sync.WaitGroup

	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewHub(log *zap.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
		metrics:    m,
	}
}

// Join adds c to the broadcast set. If the hub has already stopped, c's
// send channel is closed so its write pump exits.
func (h *Hub) Join(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

// Leave removes c. Calling it more than once is harmless.
func (h *Hub) Leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast hands msg to every client live at the time the hub picks it
// up, the sender included.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// Count returns the number of clients in the set.
func (h *Hub) Count() int {
	return int(h.count.Load())
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.setCount()
			h.metrics.ConnectionsTotal.Inc()
			h.log.Info("client joined", zap.String("client", client.ID), zap.Int("total", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				h.log.Info("client left", zap.String("client", client.ID), zap.Int("total", len(h.clients)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
					h.metrics.MessagesRelayed.Inc()
				default:
					// slow consumer
					h.remove(client)
					h.metrics.ConnectionsDropped.Inc()
					h.log.Warn("client dropped: send buffer full", zap.String("client", client.ID))
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	h.setCount()
	close(c.send)
}

func (h *Hub) setCount() {
	h.count.Store(int64(len(h.clients)))
	h.metrics.ConnectionsActive.Set(float64(len(h.clients)))
}

func (h *Hub) closeAll() {
	n := len(h.clients)
	for client := range h.clients {
		h.remove(client)
	}
	h.log.Info("hub stopped", zap.Int("closed", n))
}

// track runs each fn in its own goroutine counted by Shutdown. It returns
// false without starting anything once Shutdown has begun waiting.
func (h *Hub) track(fns ...func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.pumps.Add(len(fns))
	for _, fn := range fns {
		go func() {
			defer h.pumps.Done()
			fn()
		}()
	}
	return true
}

// Shutdown waits for Run to return and for every client pump to finish.
// The caller stops Run by cancelling its context.
func (h *Hub) Shutdown(timeout time.Duration) error {
	finished := make(chan struct{})
	go func() {
		<-h.done
		h.mu.Lock()
		h.stopped = true
		h.mu.Unlock()
		h.pumps.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}
