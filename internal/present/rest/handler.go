package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/dropanchorapp/anchorpds/internal/domain"
	"github.com/dropanchorapp/anchorpds/internal/present/rest/presenter"
	"github.com/dropanchorapp/anchorpds/internal/service"
	"github.com/dropanchorapp/anchorpds/internal/usecase"
	"github.com/dropanchorapp/anchorpds/lexicon"
)

const serverVersion = "anchorpds 0.1.0"

type Handler struct {
	checkin  *usecase.CheckinUsecase
	settings *usecase.SettingsUsecase
	signal   *service.SignalService
}

func NewHandler(
	checkin *usecase.CheckinUsecase,
	settings *usecase.SettingsUsecase,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		checkin:  checkin,
		settings: settings,
		signal:   signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/xrpc/_health", h.handleHealth)
	e.POST("/xrpc/com.atproto.repo.createRecord", h.handleCreateRecord)
	e.GET("/xrpc/com.atproto.repo.getRecord", h.handleGetRecord)
	e.GET("/xrpc/app.dropanchor.listCheckins", h.handleListCheckins)
	e.GET("/xrpc/app.dropanchor.getGlobalFeed", h.handleGlobalFeed)
	e.GET("/xrpc/app.dropanchor.getSettings", h.handleGetSettings)
	e.POST("/xrpc/app.dropanchor.updateSettings", h.handleUpdateSettings)
	e.GET("/realtime", h.handleRealtime)

	// Recognized XRPC namespaces answer 501 for unhandled methods; anything
	// else is a plain 404.
	e.Any("/xrpc/:method", h.handleNotImplemented)
	e.RouteNotFound("/*", h.handleNotFound)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"version": serverVersion})
}

func (h *Handler) handleNotImplemented(c echo.Context) error {
	return presenter.MethodNotImplemented(c, c.Param("method"))
}

func (h *Handler) handleNotFound(c echo.Context) error {
	return presenter.NotFound(c, "unknown route")
}

// requesterDid pulls the authenticated identity the auth middleware stored,
// if any.
func requesterDid(c echo.Context) (string, bool) {
	did, ok := c.Request().Context().Value(domain.RequesterDidCtxKey).(string)
	return did, ok && did != ""
}

type createRecordRequest struct {
	Collection string          `json:"collection"`
	RKey       string          `json:"rkey,omitempty"`
	Record     json.RawMessage `json:"record"`
}

func (h *Handler) handleCreateRecord(c echo.Context) error {
	ctx := c.Request().Context()

	did, ok := requesterDid(c)
	if !ok {
		return presenter.AuthRequired(c, "valid bearer token required")
	}

	var req createRecordRequest
	if err := c.Bind(&req); err != nil {
		return presenter.InvalidRequest(c, "malformed request body")
	}

	if req.Collection != lexicon.CheckinNSID {
		return presenter.InvalidRequest(c, "unsupported collection: "+req.Collection)
	}

	var input any
	if err := json.Unmarshal(req.Record, &input); err != nil {
		return presenter.InvalidRequest(c, "record is not valid JSON")
	}

	checkin, err := h.checkin.Create(ctx, did, input, req.RKey)
	if err != nil {
		return presenter.FromError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"uri": checkin.URI,
		"cid": checkin.Cid,
	})
}

func (h *Handler) handleGetRecord(c echo.Context) error {
	ctx := c.Request().Context()

	uri := c.QueryParam("uri")
	if uri == "" {
		return presenter.InvalidRequest(c, "uri parameter is required")
	}

	checkin, err := h.checkin.GetByURI(ctx, uri)
	if err != nil {
		return presenter.FromError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"uri":   checkin.URI,
		"cid":   checkin.Cid,
		"value": checkin.CheckinRecord,
	})
}

func (h *Handler) handleListCheckins(c echo.Context) error {
	ctx := c.Request().Context()

	did, ok := requesterDid(c)
	if !ok {
		return presenter.AuthRequired(c, "valid bearer token required")
	}

	limit, err := feedLimit(c)
	if err != nil {
		return presenter.InvalidRequest(c, "invalid limit parameter")
	}

	page, err := h.checkin.ListByAuthor(ctx, did, c.QueryParam("user"), limit, c.QueryParam("cursor"))
	if err != nil {
		return presenter.FromError(c, err)
	}

	return presenter.OK(c, page)
}

func (h *Handler) handleGlobalFeed(c echo.Context) error {
	ctx := c.Request().Context()

	// Authentication is required here as an anti-scraping measure.
	if _, ok := requesterDid(c); !ok {
		return presenter.AuthRequired(c, "valid bearer token required")
	}

	limit, err := feedLimit(c)
	if err != nil {
		return presenter.InvalidRequest(c, "invalid limit parameter")
	}

	page, err := h.checkin.ListGlobal(ctx, limit, c.QueryParam("cursor"))
	if err != nil {
		return presenter.FromError(c, err)
	}

	return presenter.OK(c, page)
}

func feedLimit(c echo.Context) (int, error) {
	limitStr := c.QueryParam("limit")
	if limitStr == "" {
		return 0, nil
	}
	return strconv.Atoi(limitStr)
}

func (h *Handler) handleGetSettings(c echo.Context) error {
	ctx := c.Request().Context()

	did, ok := requesterDid(c)
	if !ok {
		return presenter.AuthRequired(c, "valid bearer token required")
	}

	settings, err := h.settings.Get(ctx, did)
	if err != nil {
		return presenter.FromError(c, err)
	}

	return presenter.OK(c, settings)
}

type updateSettingsRequest struct {
	EnableFeedPosts bool `json:"enableFeedPosts"`
}

func (h *Handler) handleUpdateSettings(c echo.Context) error {
	ctx := c.Request().Context()

	did, ok := requesterDid(c)
	if !ok {
		return presenter.AuthRequired(c, "valid bearer token required")
	}

	var req updateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return presenter.InvalidRequest(c, "malformed request body")
	}

	settings, err := h.settings.Update(ctx, did, req.EnableFeedPosts)
	if err != nil {
		return presenter.FromError(c, err)
	}

	return presenter.OK(c, settings)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	events, cancel := h.signal.Subscribe(ctx)
	defer cancel()

	quit := make(chan struct{})

	go func() {
		for {
			// Clients send nothing meaningful; reads only detect close.
			if _, _, err := ws.ReadMessage(); err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.DebugContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				close(quit)
				return
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
