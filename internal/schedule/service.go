package schedule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/julianstephens/confsched/internal/attachments"
	"github.com/julianstephens/confsched/internal/logger"
	"github.com/julianstephens/confsched/internal/models"
	"github.com/julianstephens/confsched/internal/storage"
	"github.com/julianstephens/confsched/internal/utils"
)

// Change types reported to listeners after a successful save.
const (
	ChangeDayAdded     = "day_added"
	ChangeDayDeleted   = "day_deleted"
	ChangeEventAdded   = "event_added"
	ChangeEventUpdated = "event_updated"
	ChangeEventDeleted = "event_deleted"
	ChangeOutline      = "outline_uploaded"
	ChangeInitialized  = "schedule_initialized"
)

// Change describes one committed mutation.
type Change struct {
	Type    string `json:"type"`
	DayID   string `json:"day_id,omitempty"`
	EventID string `json:"event_id,omitempty"`
	// PreviousEventID is set when an update renamed the event.
	PreviousEventID string `json:"previous_event_id,omitempty"`
}

// Listener is called after a mutation has been saved.
type Listener func(Change, models.Schedule)

// Option configures a Service.
type Option func(*Service)

// WithListener registers fn to be notified of every committed mutation.
func WithListener(fn Listener) Option {
	return func(s *Service) {
		s.listeners = append(s.listeners, fn)
	}
}

// WithBeforeInitialize registers a hook that runs with the current document
// before Initialize replaces it. A hook error aborts the initialization.
func WithBeforeInitialize(fn func(models.Schedule) error) Option {
	return func(s *Service) {
		s.beforeInitialize = fn
	}
}

// Service applies schedule operations against a storage provider. All
// operations run under a single lock, so each load-mutate-save sequence
// sees the result of the previous one.
type Service struct {
	mu               sync.Mutex
	store            storage.Provider
	files            *attachments.Manager
	listeners        []Listener
	beforeInitialize func(models.Schedule) error
}

// NewService creates a service. files may be nil when attachments are not used.
func NewService(store storage.Provider, files *attachments.Manager, opts ...Option) *Service {
	s := &Service{store: store, files: files}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying provider.
func (s *Service) Store() storage.Provider {
	return s.store
}

// Schedule returns the full current schedule.
func (s *Service) Schedule(ctx context.Context) (models.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return schedule.Clone(), nil
}

// GetDay returns a single day.
func (s *Service) GetDay(ctx context.Context, dayID string) (models.Day, error) {
	schedule, err := s.Schedule(ctx)
	if err != nil {
		return models.Day{}, err
	}
	idx := schedule.FindDay(dayID)
	if idx < 0 {
		return models.Day{}, dayNotFound(dayID)
	}
	return schedule[idx], nil
}

// GetEvent returns an event together with the day that holds it.
func (s *Service) GetEvent(ctx context.Context, dayID, eventID string) (models.Day, models.Event, error) {
	day, err := s.GetDay(ctx, dayID)
	if err != nil {
		return models.Day{}, models.Event{}, err
	}
	idx := day.FindEvent(eventID)
	if idx < 0 {
		return models.Day{}, models.Event{}, eventNotFound(eventID)
	}
	return day, day.Events[idx], nil
}

// AddDay appends a new day with no events.
func (s *Service) AddDay(ctx context.Context, in models.DayInput) (models.Schedule, error) {
	if strings.TrimSpace(in.Day) == "" || strings.TrimSpace(in.Date) == "" {
		return nil, newError(ErrValidation, "day and date are required")
	}

	return s.mutate(ctx, func(schedule models.Schedule) (models.Schedule, Change, error) {
		for _, d := range schedule {
			if d.Day == in.Day || d.Date == in.Date {
				return nil, Change{}, newError(ErrConflict, "This day or date already exists in the schedule")
			}
		}

		id := utils.DayID(in.Day)
		if schedule.FindDay(id) >= 0 {
			return nil, Change{}, newError(ErrConflict, "Day with ID '%s' already exists in the schedule", id)
		}

		schedule = append(schedule, models.Day{
			ID:     id,
			Day:    in.Day,
			Date:   in.Date,
			Events: []models.Event{},
		})
		return schedule, Change{Type: ChangeDayAdded, DayID: id}, nil
	})
}

// DeleteDay removes a day and the outline directories of its events.
func (s *Service) DeleteDay(ctx context.Context, dayID string) (models.Schedule, error) {
	var removed []models.Event
	result, err := s.mutate(ctx, func(schedule models.Schedule) (models.Schedule, Change, error) {
		idx := schedule.FindDay(dayID)
		if idx < 0 {
			return nil, Change{}, dayNotFound(dayID)
		}
		removed = schedule[idx].Events
		schedule = append(schedule[:idx], schedule[idx+1:]...)
		return schedule, Change{Type: ChangeDayDeleted, DayID: dayID}, nil
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range removed {
		s.removeOutlines(ev.ID)
	}
	return result, nil
}

// AddEvent appends an event to the day named by in.DayID.
func (s *Service) AddEvent(ctx context.Context, in models.EventInput) (models.Schedule, error) {
	if err := validateEvent(in); err != nil {
		return nil, err
	}

	return s.mutate(ctx, func(schedule models.Schedule) (models.Schedule, Change, error) {
		idx := schedule.FindDay(in.DayID)
		if idx < 0 {
			return nil, Change{}, dayNotFound(in.DayID)
		}
		day := &schedule[idx]

		for _, ev := range day.Events {
			if ev.Name == in.Name {
				return nil, Change{}, newError(ErrConflict, "Event with name '%s' already exists for %s", in.Name, day.Day)
			}
		}

		id := utils.EventID(day.ID, in.Name)
		if day.FindEvent(id) >= 0 {
			return nil, Change{}, newError(ErrConflict, "Event with ID '%s' already exists for %s", id, day.Day)
		}

		day.Events = append(day.Events, newEvent(id, in))
		return schedule, Change{Type: ChangeEventAdded, DayID: day.ID, EventID: id}, nil
	})
}

// UpdateEvent replaces the fields of an event. A new name produces a new
// identifier and moves the event's outline directory along with it.
func (s *Service) UpdateEvent(ctx context.Context, dayID, eventID string, in models.EventInput) (models.Schedule, error) {
	if err := validateEvent(in); err != nil {
		return nil, err
	}

	var renamed bool
	var newID string
	result, err := s.mutate(ctx, func(schedule models.Schedule) (models.Schedule, Change, error) {
		dayIdx := schedule.FindDay(dayID)
		if dayIdx < 0 {
			return nil, Change{}, dayNotFound(dayID)
		}
		day := &schedule[dayIdx]

		evIdx := day.FindEvent(eventID)
		if evIdx < 0 {
			return nil, Change{}, eventNotFound(eventID)
		}
		current := day.Events[evIdx]

		newID = current.ID
		if in.Name != current.Name {
			for i, ev := range day.Events {
				if i != evIdx && ev.Name == in.Name {
					return nil, Change{}, newError(ErrConflict, "Event with name '%s' already exists for %s", in.Name, day.Day)
				}
			}
			newID = utils.EventID(day.ID, in.Name)
			if other := day.FindEvent(newID); other >= 0 && other != evIdx {
				return nil, Change{}, newError(ErrConflict, "Event with ID '%s' already exists for %s", newID, day.Day)
			}
		}

		updated := newEvent(newID, in)
		updated.OutlineFile = current.OutlineFile

		if newID != current.ID && s.files != nil && s.files.Exists(current.ID) {
			if err := s.files.Rename(current.ID, newID); err != nil {
				return nil, Change{}, fmt.Errorf("failed to move outlines for event %s: %w", current.ID, err)
			}
			renamed = true
			updated.OutlineFile = attachments.RewritePath(current.OutlineFile, current.ID, newID)
		}
		if updated.OutlineFile != "" {
			updated.HasOutline = true
		}

		day.Events[evIdx] = updated
		change := Change{Type: ChangeEventUpdated, DayID: day.ID, EventID: newID}
		if newID != current.ID {
			change.PreviousEventID = current.ID
		}
		return schedule, change, nil
	})
	if err != nil {
		if renamed {
			if rerr := s.files.Rename(newID, eventID); rerr != nil {
				logger.Error("Failed to restore outline directory after failed save", "event", eventID, "error", rerr)
			}
		}
		return nil, err
	}
	return result, nil
}

// DeleteEvent removes an event and its outline directory.
func (s *Service) DeleteEvent(ctx context.Context, dayID, eventID string) (models.Schedule, error) {
	result, err := s.mutate(ctx, func(schedule models.Schedule) (models.Schedule, Change, error) {
		dayIdx := schedule.FindDay(dayID)
		if dayIdx < 0 {
			return nil, Change{}, dayNotFound(dayID)
		}
		day := &schedule[dayIdx]

		evIdx := day.FindEvent(eventID)
		if evIdx < 0 {
			return nil, Change{}, eventNotFound(eventID)
		}
		day.Events = append(day.Events[:evIdx], day.Events[evIdx+1:]...)
		return schedule, Change{Type: ChangeEventDeleted, DayID: dayID, EventID: eventID}, nil
	})
	if err != nil {
		return nil, err
	}

	s.removeOutlines(eventID)
	return result, nil
}

// AttachOutline stores an uploaded outline for an event and records its
// public path on the event.
func (s *Service) AttachOutline(ctx context.Context, dayID, eventID, filename string, content io.Reader) (models.Event, error) {
	if s.files == nil {
		return models.Event{}, errors.New("outline storage is not configured")
	}

	var event models.Event
	_, err := s.mutate(ctx, func(schedule models.Schedule) (models.Schedule, Change, error) {
		dayIdx := schedule.FindDay(dayID)
		if dayIdx < 0 {
			return nil, Change{}, dayNotFound(dayID)
		}
		day := &schedule[dayIdx]

		evIdx := day.FindEvent(eventID)
		if evIdx < 0 {
			return nil, Change{}, eventNotFound(eventID)
		}

		publicPath, err := s.files.Save(eventID, filename, content)
		if err != nil {
			if errors.Is(err, attachments.ErrInvalidName) {
				return nil, Change{}, newError(ErrValidation, "%s", err.Error())
			}
			return nil, Change{}, err
		}

		day.Events[evIdx].HasOutline = true
		day.Events[evIdx].OutlineFile = publicPath
		event = day.Events[evIdx]
		return schedule, Change{Type: ChangeOutline, DayID: dayID, EventID: eventID}, nil
	})
	if err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// Initialize replaces the whole schedule with the sample conference data.
func (s *Service) Initialize(ctx context.Context) (models.Schedule, error) {
	var stale []string
	result, err := s.mutate(ctx, func(schedule models.Schedule) (models.Schedule, Change, error) {
		if s.beforeInitialize != nil {
			if err := s.beforeInitialize(schedule); err != nil {
				return nil, Change{}, fmt.Errorf("failed to back up schedule before initialize: %w", err)
			}
		}
		sample := SampleSchedule()
		stale = staleOutlines(schedule, sample)
		return sample, Change{Type: ChangeInitialized}, nil
	})
	if err != nil {
		return nil, err
	}

	for _, id := range stale {
		s.removeOutlines(id)
	}
	return result, nil
}

// Replace overwrites the whole schedule, as when restoring a backup.
func (s *Service) Replace(ctx context.Context, schedule models.Schedule) error {
	var stale []string
	_, err := s.mutate(ctx, func(current models.Schedule) (models.Schedule, Change, error) {
		stale = staleOutlines(current, schedule)
		return schedule.Clone(), Change{Type: ChangeInitialized}, nil
	})
	if err != nil {
		return err
	}

	for _, id := range stale {
		s.removeOutlines(id)
	}
	return nil
}

// staleOutlines lists the events of prev whose outline directory has no
// owner in next. An event survives only if next records an outline file
// under the same ID.
func staleOutlines(prev, next models.Schedule) []string {
	kept := make(map[string]bool)
	for _, day := range next {
		for _, ev := range day.Events {
			if ev.OutlineFile != "" {
				kept[ev.ID] = true
			}
		}
	}

	var stale []string
	for _, day := range prev {
		for _, ev := range day.Events {
			if !kept[ev.ID] {
				stale = append(stale, ev.ID)
			}
		}
	}
	return stale
}

// mutate runs fn against a freshly loaded schedule under the service lock,
// saves the result and notifies listeners.
func (s *Service) mutate(ctx context.Context, fn func(models.Schedule) (models.Schedule, Change, error)) (models.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	schedule, err := s.store.Load()
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	updated, change, err := fn(schedule)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	if err := s.store.Save(updated); err != nil {
		s.mu.Unlock()
		logger.Error("Failed to save schedule", "change", change.Type, "error", err)
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}
	result := updated.Clone()
	s.mu.Unlock()

	logger.Info("Schedule updated", "change", change.Type, "day", change.DayID, "event", change.EventID)
	for _, l := range s.listeners {
		l(change, result.Clone())
	}
	return result, nil
}

func (s *Service) removeOutlines(eventID string) {
	if s.files == nil {
		return
	}
	if err := s.files.Remove(eventID); err != nil {
		logger.Warn("Failed to remove outline directory", "event", eventID, "error", err)
	}
}

func validateEvent(in models.EventInput) error {
	if strings.TrimSpace(in.Time) == "" || strings.TrimSpace(in.Name) == "" {
		return newError(ErrValidation, "time and name are required")
	}
	return nil
}

// newEvent builds an event keeping only the optional fields that are set.
func newEvent(id string, in models.EventInput) models.Event {
	return models.Event{
		ID:         id,
		Time:       in.Time,
		Name:       in.Name,
		Link:       in.Link,
		HasOutline: in.HasOutline,
	}
}
