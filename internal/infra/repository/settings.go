package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dropanchorapp/anchorpds/internal/domain"
	"github.com/dropanchorapp/anchorpds/internal/infra/database/models"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, did string) (*domain.UserSettings, error) {
	var row models.UserSettings
	err := r.db.WithContext(ctx).
		Where("did = ?", did).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundError{Resource: "settings"}
	}
	if err != nil {
		return nil, err
	}

	return &domain.UserSettings{
		DID:             row.Did,
		EnableFeedPosts: row.EnableFeedPosts,
	}, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings domain.UserSettings) error {
	row := models.UserSettings{
		Did:             settings.DID,
		EnableFeedPosts: settings.EnableFeedPosts,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "did"}},
		DoUpdates: clause.AssignmentColumns([]string{"enable_feed_posts"}),
	}).Create(&row).Error
}
