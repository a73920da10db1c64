package server

import "net/http"

func (s *Service) handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"announcements": s.store.Announcements(),
	})
}

func (s *Service) handleOfficials(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"officials": s.store.Officials(),
	})
}

func (s *Service) handleHotlines(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"hotlines": s.store.Hotlines(),
	})
}

func (s *Service) handleHouseholds(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"households": s.store.Households(),
	})
}
