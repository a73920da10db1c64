package server

import (
	"net/http"
	"net/url"

	"barangay/internal/notify"
	"barangay/pkg/types"

	"github.com/alexedwards/flow"
)

// Sheets managed through the admin record endpoints.
var adminKinds = map[string]types.SheetType{
	"announcements": types.SheetAnnouncements,
	"officials":     types.SheetOfficials,
	"hotlines":      types.SheetHotlines,
	"households":    types.SheetHouseholds,
}

func (s *Service) adminSheet(w http.ResponseWriter, r *http.Request) (types.SheetType, bool) {
	kind := flow.Param(r.Context(), "kind")

	sheet, ok := adminKinds[kind]
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]any{
			"notice": notify.Notice{Level: notify.LevelError, Message: "Unknown record kind " + kind},
		})
		return "", false
	}
	return sheet, true
}

// formFields flattens a form to the first value of each field.
func formFields(values url.Values) map[string]string {
	fields := make(map[string]string, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}
	return fields
}

func (s *Service) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	sheet, ok := s.adminSheet(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		s.writeError(w, types.NewValidationError("", "invalid form"))
		return
	}

	fields := formFields(r.PostForm)
	fields[types.FieldSheetType] = string(sheet)

	record, err := types.DecodeRecord(fields)
	if err != nil {
		s.writeError(w, types.NewValidationError("", err.Error()))
		return
	}

	created, err := s.records.Create(r.Context(), record)
	if created == nil {
		s.writeError(w, err)
		return
	}

	s.writeResult(w, http.StatusCreated, err, "Saved", map[string]any{
		"record": created,
	})
}

func (s *Service) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	sheet, ok := s.adminSheet(w, r)
	if !ok {
		return
	}

	existing, err := s.store.Record(sheet, flow.Param(r.Context(), "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.writeError(w, types.NewValidationError("", "invalid form"))
		return
	}

	updated, err := s.records.Update(r.Context(), existing, formFields(r.PostForm))
	if updated == nil {
		s.writeError(w, err)
		return
	}

	s.writeResult(w, http.StatusOK, err, "Updated", map[string]any{
		"record": updated,
	})
}

func (s *Service) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	sheet, ok := s.adminSheet(w, r)
	if !ok {
		return
	}

	existing, err := s.store.Record(sheet, flow.Param(r.Context(), "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	err = s.records.Remove(r.Context(), existing.RecordID())
	s.writeResult(w, http.StatusOK, err, "Deleted", nil)
}

func (s *Service) handleReport(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"report":  s.store.Report(),
		"pending": s.complaints.Pending(),
	})
}

func (s *Service) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, types.NewValidationError("", "invalid form"))
		return
	}

	adjustments, err := s.complaints.Reconcile(r.Context(), accountFromContext(r.Context()), r.PostForm["complaint_id"]...)
	if err != nil && len(adjustments) == 0 {
		s.writeError(w, err)
		return
	}
	if err != nil {
		s.logger.WithError(err).Warn("reconcile finished with errors")
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"adjustments": adjustments,
		"pending":     s.complaints.Pending(),
	})
}
