package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"horse.fit/pdfdesk/internal/document"
)

type errorBody struct {
	Error string `json:"error"`
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, errorBody{Error: message})
}

func statusForKind(kind document.Kind) int {
	switch kind {
	case document.KindInvalidInput:
		return http.StatusBadRequest
	case document.KindExtractionFailed:
		return http.StatusUnprocessableEntity
	case document.KindUpstreamFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// documentError logs the raw cause and answers with the stable message only.
func (s *Server) documentError(c echo.Context, op string, err error) error {
	kind := document.KindOf(err)
	status := statusForKind(kind)

	event := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).
		Str("op", op).
		Str("kind", string(kind)).
		Int("status", status).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("document request failed")

	return fail(c, status, document.PublicMessage(err))
}
