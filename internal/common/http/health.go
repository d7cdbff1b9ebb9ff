package http

import (
	"net/http"

	"github.com/SafronovIK/authgate/internal/common/logger"
)

// HealthHandler reports liveness. A non-empty serviceName is included in
// the body so callers can tell which service answered.
func HealthHandler(log *logger.Logger, serviceName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		body := map[string]string{"status": "healthy"}
		if serviceName != "" {
			body["service"] = serviceName
		}

		log.Debug("health check request")
		WriteJSON(w, http.StatusOK, body)
	}
}
