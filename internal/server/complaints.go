package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"barangay/internal/complaint"
	"barangay/pkg/types"

	"github.com/alexedwards/flow"
)

type complaintView struct {
	*types.Complaint
	StatusLabel string `json:"statusLabel"`
	Voted       bool   `json:"voted"`
}

func (s *Service) newComplaintView(c *types.Complaint, viewer *types.Account) complaintView {
	view := complaintView{Complaint: c, StatusLabel: c.Status.Label()}
	if viewer != nil {
		view.Voted = s.complaints.HasVoted(c.ID, viewer.ID)
	}
	return view
}

func (s *Service) handleComplaints(w http.ResponseWriter, r *http.Request) {
	viewer, _ := s.sessionAccount(r)

	list := s.store.ComplaintsByCategory(r.URL.Query().Get("category"))

	views := make([]complaintView, 0, len(list))
	for i := range list {
		views = append(views, s.newComplaintView(&list[i], viewer))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"complaints": views,
	})
}

func (s *Service) handleComplaint(w http.ResponseWriter, r *http.Request) {
	viewer, _ := s.sessionAccount(r)

	c, err := s.store.Complaint(flow.Param(r.Context(), "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"complaint": s.newComplaintView(c, viewer),
		"votes":     s.store.VoteCount(c.ID),
	})
}

func (s *Service) handleSubmitComplaint(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	// room for the text fields on top of the image
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes+1<<20)

	err := r.ParseMultipartForm(s.config.MaxUploadBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		s.logger.WithError(err).Debug("failed to parse complaint form")
		s.writeError(w, types.NewValidationError("", "invalid form or image too large"))
		return
	}

	var in complaint.Input
	if err := decoder.Decode(&in, r.PostForm); err != nil {
		s.logger.WithError(err).Debug("failed to decode complaint form")
		s.writeError(w, types.NewValidationError("", "invalid form"))
		return
	}

	in.Evidence, err = s.readEvidence(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.complaints.Submit(r.Context(), in, account)
	if result == nil {
		s.writeError(w, err)
		return
	}

	data := map[string]any{
		"complaint": s.newComplaintView(result.Complaint, account),
	}
	if result.UploadErr != nil {
		data["uploadWarning"] = "Image upload failed, the complaint was submitted without it"
	}

	s.writeResult(w, http.StatusCreated, err, "Complaint submitted", data)
}

// readEvidence returns the optional "evidence" file of a multipart request.
func (s *Service) readEvidence(r *http.Request) (*complaint.Attachment, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	file, header, err := r.FormFile("evidence")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, types.NewValidationError("evidence", "could not be read")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.config.MaxUploadBytes+1))
	if err != nil {
		return nil, types.NewValidationError("evidence", "could not be read")
	}
	if int64(len(data)) > s.config.MaxUploadBytes {
		return nil, types.NewValidationError("evidence", fmt.Sprintf("must be at most %d bytes", s.config.MaxUploadBytes))
	}

	return &complaint.Attachment{Filename: header.Filename, Data: data}, nil
}

func (s *Service) handleUpvote(w http.ResponseWriter, r *http.Request) {
	id := flow.Param(r.Context(), "id")

	count, err := s.complaints.Upvote(r.Context(), id, accountFromContext(r.Context()))

	s.writeResult(w, http.StatusOK, err, "Upvoted!", map[string]any{
		"complaintId": id,
		"upvotes":     count,
	})
}

func (s *Service) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, types.NewValidationError("", "invalid form"))
		return
	}

	status := types.ComplaintStatus(r.PostForm.Get("status"))

	updated, err := s.complaints.SetStatus(r.Context(), flow.Param(r.Context(), "id"), status, accountFromContext(r.Context()))
	if updated == nil {
		s.writeError(w, err)
		return
	}

	s.writeResult(w, http.StatusOK, err, "Status updated to "+status.Label(), map[string]any{
		"complaint": s.newComplaintView(updated, nil),
	})
}
