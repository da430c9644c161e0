package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/dropanchorapp/anchorpds"
	"github.com/dropanchorapp/anchorpds/internal/domain"
	"github.com/dropanchorapp/anchorpds/internal/infra/database/models"
	"github.com/dropanchorapp/anchorpds/lexicon"
)

type CheckinRepository struct {
	db *gorm.DB
}

func NewCheckinRepository(db *gorm.DB) *CheckinRepository {
	return &CheckinRepository{db: db}
}

func (r *CheckinRepository) Create(ctx context.Context, checkin domain.StoredCheckin) error {
	row := models.Checkin{
		ID:            checkin.ID,
		AuthorDid:     checkin.AuthorDid,
		Cid:           checkin.Cid,
		Text:          checkin.Text,
		CreatedAt:     checkin.CreatedAt,
		Category:      checkin.Category,
		CategoryGroup: checkin.CategoryGroup,
		CategoryIcon:  checkin.CategoryIcon,
	}

	if len(checkin.Locations) > 0 {
		encoded, err := json.Marshal(checkin.Locations)
		if err != nil {
			return errors.Wrap(err, "failed to encode locations")
		}
		locations := string(encoded)
		row.Locations = &locations
	}

	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.AlreadyExistsError{Resource: "record"}
	}
	return err
}

func (r *CheckinRepository) GetByURI(ctx context.Context, uri string) (*domain.StoredCheckin, error) {
	did, collection, rkey, err := anchorpds.ParseATURI(uri)
	if err != nil {
		return nil, err
	}
	if collection != lexicon.CheckinNSID {
		return nil, domain.NotFoundError{Resource: "record"}
	}

	var row models.Checkin
	err = r.db.WithContext(ctx).
		Where("id = ? AND author_did = ?", rkey, did).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundError{Resource: "record"}
	}
	if err != nil {
		return nil, err
	}

	return r.toDomain(ctx, row), nil
}

func (r *CheckinRepository) ListByAuthor(ctx context.Context, did string, limit int, cursor string) ([]domain.StoredCheckin, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Checkin{}).
		Where("author_did = ?", did)
	return r.list(ctx, query, limit, cursor)
}

func (r *CheckinRepository) ListGlobal(ctx context.Context, limit int, cursor string) ([]domain.StoredCheckin, error) {
	if limit > domain.MaxGlobalFeedLimit {
		limit = domain.MaxGlobalFeedLimit
	}
	query := r.db.WithContext(ctx).Model(&models.Checkin{})
	return r.list(ctx, query, limit, cursor)
}

func (r *CheckinRepository) list(ctx context.Context, query *gorm.DB, limit int, cursor string) ([]domain.StoredCheckin, error) {
	if cursor != "" {
		query = query.Where("created_at < ?", cursor)
	}

	var rows []models.Checkin
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	checkins := make([]domain.StoredCheckin, 0, len(rows))
	for _, row := range rows {
		checkins = append(checkins, *r.toDomain(ctx, row))
	}
	return checkins, nil
}

func (r *CheckinRepository) toDomain(ctx context.Context, row models.Checkin) *domain.StoredCheckin {
	checkin := &domain.StoredCheckin{
		ID:        row.ID,
		URI:       anchorpds.ComposeATURI(row.AuthorDid, lexicon.CheckinNSID, row.ID),
		Cid:       row.Cid,
		AuthorDid: row.AuthorDid,
		CheckinRecord: anchorpds.CheckinRecord{
			Type:          lexicon.CheckinNSID,
			Text:          row.Text,
			CreatedAt:     row.CreatedAt,
			Category:      row.Category,
			CategoryGroup: row.CategoryGroup,
			CategoryIcon:  row.CategoryIcon,
		},
	}

	if row.Locations != nil {
		var locations anchorpds.LocationList
		if err := json.Unmarshal([]byte(*row.Locations), &locations); err != nil {
			// Corrupted stored locations degrade to an absent field; the
			// record itself is still served.
			slog.WarnContext(ctx, "Dropping unreadable locations",
				slog.String("id", row.ID),
				slog.String("error", err.Error()),
				slog.String("module", "repository"),
			)
		} else {
			checkin.Locations = locations
		}
	}

	return checkin
}
