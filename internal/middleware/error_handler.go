// ABOUTME: Centralized error handler for Echo
// ABOUTME: Renders unexpected page failures as {success:false, error, details, pageNumber}
package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"teletext/internal/infra/logger"
)

// PageError is an unrecovered failure while serving a page.
type PageError struct {
	PageNumber string
	Err        error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %s: %v", e.PageNumber, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	PageNumber string `json:"pageNumber,omitempty"`
}

// CustomHTTPErrorHandler renders PageError as a 500 with its details, echo.HTTPError with its
// own status, and anything else as a generic 500.
func CustomHTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		ctx := c.Request().Context()
		requestID := logger.RequestID(ctx)

		var (
			status   int
			response ErrorResponse
			pageErr  *PageError
			httpErr  *echo.HTTPError
		)
		switch {
		case errors.As(err, &pageErr):
			status = http.StatusInternalServerError
			response = ErrorResponse{
				Error:      "Failed to retrieve page",
				Details:    pageErr.Err.Error(),
				PageNumber: pageErr.PageNumber,
			}
			log.ErrorContext(ctx, "page request failed",
				"request_id", requestID,
				"page", pageErr.PageNumber,
				"error", pageErr.Err)

		case errors.As(err, &httpErr):
			status = httpErr.Code
			msg := http.StatusText(status)
			if m, ok := httpErr.Message.(string); ok {
				msg = m
			}
			if status >= 500 {
				msg = "An unexpected error occurred"
			}
			response = ErrorResponse{Error: msg}
			log.WarnContext(ctx, "HTTP error", "request_id", requestID, "status", status, "error", err)

		default:
			status = http.StatusInternalServerError
			response = ErrorResponse{Error: "An unexpected error occurred"}
			log.ErrorContext(ctx, "unhandled error", "request_id", requestID, "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, response)
		}
		if err != nil {
			log.ErrorContext(ctx, "failed to send error response", "request_id", requestID, "error", err)
		}
	}
}
