// Package presenter maps results and errors onto the XRPC response shapes.
package presenter

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dropanchorapp/anchorpds"
	"github.com/dropanchorapp/anchorpds/internal/domain"
	"github.com/dropanchorapp/anchorpds/internal/validation"
)

// errorResponse is the XRPC error body: a stable machine tag plus a human
// message. No internal detail is surfaced.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func AuthRequired(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "AuthenticationRequired", Message: msg})
}

func Forbidden(c echo.Context, msg string) error {
	return c.JSON(http.StatusForbidden, errorResponse{Error: "Forbidden", Message: msg})
}

func InvalidRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: "InvalidRequest", Message: msg})
}

func RecordNotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: "RecordNotFound", Message: msg})
}

func NotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: "NotFound", Message: msg})
}

func MethodNotImplemented(c echo.Context, method string) error {
	return c.JSON(http.StatusNotImplemented, errorResponse{Error: "MethodNotImplemented", Message: "method not implemented: " + method})
}

func InternalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "InternalServerError", Message: "internal server error"})
}

// FromError maps a domain or validation error to its XRPC shape. Anything
// unanticipated becomes a generic failure with no guaranteed structure.
func FromError(c echo.Context, err error) error {
	var rejection *validation.Error
	if errors.As(err, &rejection) {
		return InvalidRequest(c, rejection.Message)
	}

	switch {
	case errors.Is(err, anchorpds.ErrInvalidURI):
		return InvalidRequest(c, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		return AuthRequired(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return RecordNotFound(c, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		return InvalidRequest(c, err.Error())
	default:
		return InternalError(c)
	}
}
