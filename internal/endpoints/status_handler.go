package endpoints

import (
	"encoding/json"
	"net/http"
)

// StatusHandler is the liveness probe. It touches no collaborators.
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"message": "Fulfillment Engine is live",
	})
}
