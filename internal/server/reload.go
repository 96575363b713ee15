package server

import (
	"bytes"
	"context"
	"sync"

	"github.com/julianstephens/confsched/internal/logger"
	"github.com/julianstephens/confsched/internal/models"
	"github.com/julianstephens/confsched/internal/schedule"
	"github.com/julianstephens/confsched/internal/storage"
)

// ReloadNotifier tells live clients about schedule edits made outside the
// API, such as a hand-edited schedule.json. Saves made through the service
// are recorded so their own file events do not produce a second message.
type ReloadNotifier struct {
	hub *Hub
	svc *schedule.Service

	mu   sync.Mutex
	last []byte
}

// NewReloadNotifier creates a notifier. Prime should be called once the
// service is ready so the initial document is not reported as a change.
func NewReloadNotifier(hub *Hub, svc *schedule.Service) *ReloadNotifier {
	return &ReloadNotifier{hub: hub, svc: svc}
}

// SetService attaches the service whose document is compared on Check.
func (n *ReloadNotifier) SetService(svc *schedule.Service) {
	n.mu.Lock()
	n.svc = svc
	n.mu.Unlock()
}

// Listener records documents saved through the service.
func (n *ReloadNotifier) Listener() schedule.Listener {
	return func(_ schedule.Change, s models.Schedule) {
		n.remember(s)
	}
}

// Prime records the current document without broadcasting.
func (n *ReloadNotifier) Prime(ctx context.Context) error {
	current, err := n.service().Schedule(ctx)
	if err != nil {
		return err
	}
	n.remember(current)
	return nil
}

// Check reloads the document and broadcasts it if it differs from the last
// one seen. It reports whether a message was sent.
func (n *ReloadNotifier) Check(ctx context.Context) bool {
	current, err := n.service().Schedule(ctx)
	if err != nil {
		logger.Warn("Failed to reload schedule after external change", "error", err)
		return false
	}
	data, err := storage.Encode(current)
	if err != nil {
		return false
	}

	n.mu.Lock()
	changed := !bytes.Equal(data, n.last)
	n.last = data
	n.mu.Unlock()

	if !changed {
		return false
	}

	logger.Info("Schedule changed on disk", "days", len(current), "events", current.EventCount())
	if n.hub != nil {
		n.hub.Broadcast(MessageTypeReloaded, ChangeData{Schedule: current})
	}
	return true
}

func (n *ReloadNotifier) service() *schedule.Service {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.svc
}

func (n *ReloadNotifier) remember(s models.Schedule) {
	data, err := storage.Encode(s)
	if err != nil {
		return
	}
	n.mu.Lock()
	n.last = data
	n.mu.Unlock()
}
