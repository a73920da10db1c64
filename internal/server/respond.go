package server

import (
	"encoding/json"
	"net/http"

	"barangay/internal/notify"
)

func (s *Service) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to write response")
	}
}

// writeError answers with the notice for err. Server side failures are
// logged; client mistakes are not.
func (s *Service) writeError(w http.ResponseWriter, err error) {
	status := notify.Status(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("request failed")
	}

	s.writeJSON(w, status, map[string]any{
		"notice": notify.FromError(err, ""),
	})
}

// writeResult answers for a write that may have partially succeeded: data is
// sent whenever the write itself went through.
func (s *Service) writeResult(w http.ResponseWriter, status int, err error, success string, data map[string]any) {
	notice := notify.FromError(err, success)
	if !notice.OK {
		s.writeError(w, err)
		return
	}
	if err != nil {
		s.logger.WithError(err).Warn("write succeeded but reload failed")
	}

	if data == nil {
		data = make(map[string]any)
	}
	data["notice"] = notice

	s.writeJSON(w, status, data)
}
