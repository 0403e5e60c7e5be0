package web

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// sseHub fans change events out to Server-Sent Events clients.
type sseHub struct {
	subscribe   chan chan string
	unsubscribe chan chan string
	broadcast   chan string
	quit        chan struct{}
	stopOnce    sync.Once
	clients     map[chan string]struct{}
}

func newSSEHub() *sseHub {
	return &sseHub{
		subscribe:   make(chan chan string),
		unsubscribe: make(chan chan string, 8),
		broadcast:   make(chan string, 64),
		quit:        make(chan struct{}),
		clients:     make(map[chan string]struct{}),
	}
}

// run is the event loop for the hub and the sole owner of clients.
func (h *sseHub) run() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case ch := <-h.subscribe:
			h.clients[ch] = struct{}{}

		case ch := <-h.unsubscribe:
			if _, ok := h.clients[ch]; ok {
				delete(h.clients, ch)
				close(ch)
			}

		case msg := <-h.broadcast:
			h.send(msg)

		case <-ticker.C:
			h.send("event: ping\ndata: {}\n\n")

		case <-h.quit:
			for ch := range h.clients {
				delete(h.clients, ch)
				close(ch)
			}
			return
		}
	}
}

// send never blocks: a slow client misses the message.
func (h *sseHub) send(msg string) {
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// emit queues a named event with a JSON payload for every client. The
// event is dropped if the backlog is full.
func (h *sseHub) emit(event, data string) {
	msg := fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)
	select {
	case h.broadcast <- msg:
	default:
	}
}

func (h *sseHub) stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// handleSSE streams project_saved and project_deleted events.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan string, 32)
	select {
	case s.hub.subscribe <- ch:
	case <-s.hub.quit:
		return
	}
	defer func() {
		select {
		case s.hub.unsubscribe <- ch:
		case <-s.hub.quit:
		}
	}()

	if _, err := fmt.Fprint(w, "event: connected\ndata: {}\n\n"); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case msg, open := <-ch:
			if !open {
				return
			}
			fmt.Fprint(w, msg)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
