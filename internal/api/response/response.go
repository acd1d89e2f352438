package response

import (
	"encoding/json"
	"net/http"
	"time"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// Meta carries execution timing metadata. It is populated on failures
// too, so callers can always see how long a trigger took.
type Meta struct {
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
	RunTimeDuration float64   `json:"run_time_duration"`
	Exception       *string   `json:"exception"`
}

// Envelope is the trigger endpoint's response shape.
type Envelope struct {
	Status bool `json:"status"`
	Meta   Meta `json:"meta"`
	Data   any  `json:"data"`
}

// WriteResult writes a successful envelope with timing metadata.
func WriteResult(w http.ResponseWriter, status int, startAt time.Time, data any) {
	end := time.Now()
	WriteJSON(w, status, Envelope{
		Status: true,
		Meta: Meta{
			StartAt:         startAt,
			EndAt:           end,
			RunTimeDuration: end.Sub(startAt).Seconds(),
		},
		Data: data,
	})
}

// WriteFailure writes a failed envelope; the error message lands in
// meta.exception and data carries it as well for older consumers.
func WriteFailure(w http.ResponseWriter, status int, startAt time.Time, err error) {
	end := time.Now()
	msg := err.Error()
	WriteJSON(w, status, Envelope{
		Status: false,
		Meta: Meta{
			StartAt:         startAt,
			EndAt:           end,
			RunTimeDuration: end.Sub(startAt).Seconds(),
			Exception:       &msg,
		},
		Data: map[string]string{"error": msg},
	})
}
