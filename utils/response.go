package utils

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the envelope every JSON endpoint returns. Data is omitted
// when a handler has nothing beyond the message to report.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteJSON writes resp with the given status code. Encode errors are ignored
// since the header is already committed by then.
func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
