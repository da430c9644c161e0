package usecase

import (
	"context"

	"github.com/dropanchorapp/anchorpds/internal/domain"
)

// CheckinRepository defines storage operations for check-in records.
type CheckinRepository interface {
	// Create persists one row. A duplicate record key is an
	// domain.AlreadyExistsError, never a silent overwrite.
	Create(ctx context.Context, checkin domain.StoredCheckin) error
	GetByURI(ctx context.Context, uri string) (*domain.StoredCheckin, error)
	// ListByAuthor returns the author's rows ordered by createdAt
	// descending. A non-empty cursor restricts to rows with createdAt
	// strictly less than the cursor. The limit is not capped here.
	ListByAuthor(ctx context.Context, did string, limit int, cursor string) ([]domain.StoredCheckin, error)
	// ListGlobal is the same query without the author filter; the limit is
	// clamped to domain.MaxGlobalFeedLimit.
	ListGlobal(ctx context.Context, limit int, cursor string) ([]domain.StoredCheckin, error)
}

// SettingsRepository persists per-owner preferences.
type SettingsRepository interface {
	Get(ctx context.Context, did string) (*domain.UserSettings, error)
	Upsert(ctx context.Context, settings domain.UserSettings) error
}

// RecordCache is a read-through cache over immutable stored records.
type RecordCache interface {
	Get(uri string) (*domain.StoredCheckin, bool)
	Set(uri string, checkin domain.StoredCheckin)
}

// EventPublisher announces accepted check-ins to interested listeners.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.CheckinEvent) error
}
