package usecase

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dropanchorapp/anchorpds"
	"github.com/dropanchorapp/anchorpds/internal/domain"
	"github.com/dropanchorapp/anchorpds/internal/validation"
	"github.com/dropanchorapp/anchorpds/lexicon"
)

type CheckinUsecase struct {
	repo     CheckinRepository
	settings SettingsRepository
	cache    RecordCache
	signal   EventPublisher
}

func NewCheckinUsecase(
	repo CheckinRepository,
	settings SettingsRepository,
	cache RecordCache,
	signal EventPublisher,
) *CheckinUsecase {
	return &CheckinUsecase{
		repo:     repo,
		settings: settings,
		cache:    cache,
		signal:   signal,
	}
}

// Create validates the input, assigns identity (record key, URI, CID) and
// persists the record. The record key comes from the client when supplied,
// otherwise it is generated.
func (uc *CheckinUsecase) Create(ctx context.Context, authorDid string, input any, rkey string) (*domain.StoredCheckin, error) {
	record, err := validation.Validate(input)
	if err != nil {
		return nil, err
	}

	if rkey == "" {
		rkey = anchorpds.NewRecordKey()
	}

	uri := anchorpds.ComposeATURI(authorDid, lexicon.CheckinNSID, rkey)
	cid, err := anchorpds.NewCID(record)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive cid")
	}

	checkin := domain.StoredCheckin{
		ID:            rkey,
		URI:           uri,
		Cid:           cid,
		AuthorDid:     authorDid,
		CheckinRecord: *record,
	}

	if err := uc.repo.Create(ctx, checkin); err != nil {
		return nil, err
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("RecordURI", uri))

	if uc.cache != nil {
		uc.cache.Set(uri, checkin)
	}

	uc.announce(ctx, checkin)

	return &checkin, nil
}

// announce publishes the new check-in unless the author opted out of feed
// posts. Publishing is best effort; a broken broker never fails the write.
func (uc *CheckinUsecase) announce(ctx context.Context, checkin domain.StoredCheckin) {
	if uc.signal == nil {
		return
	}

	enabled := true
	if uc.settings != nil {
		settings, err := uc.settings.Get(ctx, checkin.AuthorDid)
		if err == nil {
			enabled = settings.EnableFeedPosts
		} else if !errors.Is(err, domain.ErrNotFound) {
			slog.WarnContext(ctx, "Failed to load settings, broadcasting anyway",
				slog.String("error", err.Error()),
				slog.String("module", "checkin"),
			)
		}
	}
	if !enabled {
		return
	}

	event := domain.CheckinEvent{
		URI:       checkin.URI,
		Cid:       checkin.Cid,
		AuthorDid: checkin.AuthorDid,
		Text:      checkin.Text,
		CreatedAt: checkin.CreatedAt,
	}
	if err := uc.signal.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish checkin event",
			slog.String("error", err.Error()),
			slog.String("module", "checkin"),
		)
	}
}

func (uc *CheckinUsecase) GetByURI(ctx context.Context, uri string) (*domain.StoredCheckin, error) {
	if uc.cache != nil {
		if checkin, ok := uc.cache.Get(uri); ok {
			return checkin, nil
		}
	}

	checkin, err := uc.repo.GetByURI(ctx, uri)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		uc.cache.Set(uri, *checkin)
	}

	return checkin, nil
}

// FeedPage is one page of a cursor-paginated feed. Cursor is set only when
// the page is full; a short page signals end-of-feed.
type FeedPage struct {
	Checkins []domain.StoredCheckin `json:"checkins"`
	Cursor   *string                `json:"cursor,omitempty"`
}

// ListByAuthor returns the requester's own feed. Reading another user's
// feed is forbidden.
func (uc *CheckinUsecase) ListByAuthor(ctx context.Context, requesterDid, user string, limit int, cursor string) (*FeedPage, error) {
	if user != "" && user != requesterDid {
		return nil, domain.ForbiddenError{Reason: "cannot list another user's check-ins"}
	}
	if limit <= 0 {
		limit = domain.DefaultFeedLimit
	}

	checkins, err := uc.repo.ListByAuthor(ctx, requesterDid, limit, cursor)
	if err != nil {
		return nil, err
	}

	return newFeedPage(checkins, limit), nil
}

// ListGlobal returns the global feed. The limit is clamped to the hard cap
// both here and at the storage layer.
func (uc *CheckinUsecase) ListGlobal(ctx context.Context, limit int, cursor string) (*FeedPage, error) {
	if limit <= 0 {
		limit = domain.DefaultFeedLimit
	}
	if limit > domain.MaxGlobalFeedLimit {
		limit = domain.MaxGlobalFeedLimit
	}

	checkins, err := uc.repo.ListGlobal(ctx, limit, cursor)
	if err != nil {
		return nil, err
	}

	return newFeedPage(checkins, limit), nil
}

func newFeedPage(checkins []domain.StoredCheckin, limit int) *FeedPage {
	page := &FeedPage{Checkins: checkins}
	if len(checkins) == limit && limit > 0 {
		cursor := checkins[len(checkins)-1].CreatedAt
		page.Cursor = &cursor
	}
	return page
}
