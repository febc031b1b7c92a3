package server

import (
	"fmt"
	"net/http"

	"donationhub/pkg/types"
)

type donorView struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

type ngoSummaryView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type donationView struct {
	*types.Donation

	User donorView       `json:"user"`
	NGO  *ngoSummaryView `json:"ngo"`
}

func newDonationViews(records []*types.DonationRecord) []donationView {
	views := make([]donationView, 0, len(records))
	for _, record := range records {
		view := donationView{
			Donation: &record.Donation,
			User: donorView{
				ID:    record.UserID,
				Name:  record.DonorName,
				Email: record.DonorEmail,
			},
		}
		if record.NGOID != nil && record.NGOName != nil {
			view.NGO = &ngoSummaryView{ID: *record.NGOID, Name: *record.NGOName}
		}
		views = append(views, view)
	}
	return views
}

type donationQuery struct {
	Status string `form:"status"`
}

func (s *Service) handlePostDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req types.DonationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	receipt, err := s.submissions.Submit(ctx, principalFromContext(ctx), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Donation submitted successfully!",
		"donation": receipt,
	})
}

func (s *Service) handleGetDonations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var query donationQuery
	if err := decodeQuery(r.URL.Query(), &query); err != nil {
		s.writeError(w, r, err)
		return
	}

	records, err := s.submissions.ListDonations(ctx, principalFromContext(ctx), query.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"donations": newDonationViews(records),
	})
}

func (s *Service) handleGetAdminDonations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := s.reviews.ListForAdmin(ctx, principalFromContext(ctx))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"donations":     newDonationViews(result.Donations),
		"poolDonations": newDonationViews(result.PoolDonations),
		"stats":         result.Stats,
	})
}

type reviewRequest struct {
	DonationID string             `json:"donationId"`
	Action     types.ReviewAction `json:"action"`
	AdminNotes *string            `json:"adminNotes"`
}

func (s *Service) handlePatchAdminDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	reviewed, err := s.reviews.Review(ctx, principalFromContext(ctx), req.DonationID, req.Action, req.AdminNotes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  fmt.Sprintf("Donation %sd successfully.", req.Action),
		"donation": reviewed,
	})
}
