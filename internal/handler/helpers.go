package handler

import (
	"log/slog"
	"net/http"

	"scholarvault/internal/domain"
	"scholarvault/internal/httputil"
)

// handleError converts domain errors to problem responses. Unexpected
// errors are logged and reported without detail.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := domain.StatusCodeOf(err)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		logger.Error("request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", httputil.GetRequestID(r),
		)
		httputil.RespondError(w, status, "internal server error")
		return
	}

	problem := httputil.ProblemDetail{
		Status:   status,
		Detail:   err.Error(),
		Instance: r.URL.Path,
	}
	if id := httputil.GetRequestID(r); id != "" {
		problem.Extra = map[string]any{"request_id": id}
	}
	httputil.RespondProblem(w, problem)
}
