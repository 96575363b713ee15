package storage

import "github.com/julianstephens/confsched/internal/models"

// Provider persists the whole schedule document. Implementations are not
// safe for concurrent mutation on their own; callers serialize writes.
type Provider interface {
	// Lifecycle
	Init() error
	Close() error

	// Document
	Load() (models.Schedule, error)
	Save(models.Schedule) error

	// Utils
	GetConfigPath() string
	Kind() string
}
