package handler

import "net/http"

// HandleHealth reports liveness. Unauthenticated so load balancers and
// probes can hit it directly.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, "OK", map[string]string{"status": "healthy"})
}
