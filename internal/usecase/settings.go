package usecase

import (
	"context"

	"github.com/pkg/errors"

	"github.com/dropanchorapp/anchorpds/internal/domain"
)

type SettingsUsecase struct {
	repo SettingsRepository
}

func NewSettingsUsecase(repo SettingsRepository) *SettingsUsecase {
	return &SettingsUsecase{repo: repo}
}

// Get returns the owner's settings, falling back to the defaults when no
// row exists.
func (uc *SettingsUsecase) Get(ctx context.Context, did string) (*domain.UserSettings, error) {
	settings, err := uc.repo.Get(ctx, did)
	if errors.Is(err, domain.ErrNotFound) {
		defaults := domain.DefaultSettings(did)
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Update overwrites the owner's settings idempotently.
func (uc *SettingsUsecase) Update(ctx context.Context, did string, enableFeedPosts bool) (*domain.UserSettings, error) {
	settings := domain.UserSettings{DID: did, EnableFeedPosts: enableFeedPosts}
	if err := uc.repo.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	return &settings, nil
}
