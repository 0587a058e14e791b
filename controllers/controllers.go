package controllers

import (
	"context"
	"net/http"
	"time"

	"vibin_chat/utils"
)

// HealthCheckHandler reports that the process is serving requests
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// requestContext bounds store work done on behalf of a request
func requestContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), timeout)
}
