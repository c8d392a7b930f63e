// Package websocket pushes export job events to the browsers watching them.
// Watchers subscribe per job id; each event is marshalled once and fanned
// out to every subscriber of that job.
package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/cutreel/api/internal/model"
)

// sendBuffer is the per-subscriber outbound queue. A watcher that cannot
// drain it is dropped rather than allowed to stall the fan-out.
const sendBuffer = 64

const keepAliveInterval = 30 * time.Second

// subscriber is one connection watching a single export job.
type subscriber struct {
	jobID string
	send  chan []byte
}

type event struct {
	jobID   string
	payload []byte
}

// Hub routes export job events to their per-job subscriber sets.
type Hub struct {
	mu   sync.Mutex
	jobs map[string]map[*subscriber]struct{}

	attach chan *subscriber
	detach chan *subscriber
	events chan event
}

func NewHub() *Hub {
	return &Hub{
		jobs:   make(map[string]map[*subscriber]struct{}),
		attach: make(chan *subscriber),
		detach: make(chan *subscriber),
		events: make(chan event, 256),
	}
}

// Run drives the hub loop; call it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.attach:
			h.mu.Lock()
			if h.jobs[sub.jobID] == nil {
				h.jobs[sub.jobID] = make(map[*subscriber]struct{})
			}
			h.jobs[sub.jobID][sub] = struct{}{}
			h.mu.Unlock()

		case sub := <-h.detach:
			h.mu.Lock()
			h.drop(sub)
			h.mu.Unlock()

		case ev := <-h.events:
			h.mu.Lock()
			for sub := range h.jobs[ev.jobID] {
				select {
				case sub.send <- ev.payload:
				default:
					h.drop(sub)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop removes a subscriber and closes its queue. Callers hold h.mu.
func (h *Hub) drop(sub *subscriber) {
	subs, ok := h.jobs[sub.jobID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.send)
	if len(subs) == 0 {
		delete(h.jobs, sub.jobID)
	}
}

// BroadcastProgress pushes a progress update to the job's watchers.
func (h *Hub) BroadcastProgress(jobID string, progress int, status model.JobStatus, step string) {
	h.publish(jobID, model.WSProgressEvent{
		Type:        model.WSEventProgress,
		JobID:       jobID,
		Progress:    progress,
		Status:      status,
		CurrentStep: step,
	})
}

// BroadcastComplete pushes the final export result to the job's watchers.
func (h *Hub) BroadcastComplete(jobID string, result *model.ExportResultResponse) {
	h.publish(jobID, model.WSCompleteEvent{
		Type:   model.WSEventComplete,
		JobID:  jobID,
		Result: result,
	})
}

// BroadcastCanceled tells the job's watchers the queued job was canceled
// before the worker picked it up.
func (h *Hub) BroadcastCanceled(jobID string) {
	h.publish(jobID, model.WSCanceledEvent{
		Type:   model.WSEventCanceled,
		JobID:  jobID,
		Status: model.JobStatusCanceled,
	})
}

// BroadcastError pushes a fatal export failure to the job's watchers.
func (h *Hub) BroadcastError(jobID string, code, message string) {
	h.publish(jobID, model.WSErrorEvent{
		Type:    model.WSEventError,
		JobID:   jobID,
		Code:    code,
		Message: message,
	})
}

func (h *Hub) publish(jobID string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal %T for job %s: %v", v, jobID, err)
		return
	}
	h.events <- event{jobID: jobID, payload: payload}
}

// Serve subscribes a connection to one job's events and blocks until the
// peer disconnects. Events flow one way; inbound frames are drained only to
// detect the close.
func (h *Hub) Serve(c *websocket.Conn, jobID string) {
	sub := &subscriber{
		jobID: jobID,
		send:  make(chan []byte, sendBuffer),
	}
	h.attach <- sub
	defer func() { h.detach <- sub }()

	go func() {
		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case payload, ok := <-sub.send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}

			case <-ticker.C:
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error on job %s: %v", jobID, err)
			}
			return
		}
	}
}
