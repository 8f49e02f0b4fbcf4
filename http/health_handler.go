package http

import "net/http"

// ModelInfo describes the loaded model for health reporting.
type ModelInfo struct {
	Trees    int      `json:"trees"`
	Features []string `json:"features"`
}

type healthResponse struct {
	Status string    `json:"status"`
	Model  ModelInfo `json:"model"`
}

func HealthHandler(info ModelInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Model: info})
	}
}
