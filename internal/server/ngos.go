package server

import (
	"net/http"
	"time"

	"donationhub/pkg/types"
)

// publicNGOView is what the open directory shows. Admin ownership stays out.
type publicNGOView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Description *string   `json:"description"`
	Address     *string   `json:"address"`
	Phone       *string   `json:"phone"`
	Website     *string   `json:"website"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	City        *string   `json:"city"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newPublicNGOView(ngo *types.NGO) publicNGOView {
	return publicNGOView{
		ID:          ngo.ID,
		Name:        ngo.Name,
		Email:       ngo.Email,
		Description: ngo.Description,
		Address:     ngo.Address,
		Phone:       ngo.Phone,
		Website:     ngo.Website,
		Latitude:    ngo.Latitude,
		Longitude:   ngo.Longitude,
		City:        ngo.City,
		CreatedAt:   ngo.CreatedAt,
	}
}

type donationCountView struct {
	Donations int `json:"donations"`
}

type ngoDetailView struct {
	*types.NGO

	Admin *types.AdminSummary `json:"admin"`
	Count *donationCountView  `json:"_count,omitempty"`
}

func newNGODetailView(detail *types.NGODetail, withCount bool) ngoDetailView {
	view := ngoDetailView{NGO: &detail.NGO, Admin: detail.Admin()}
	if withCount {
		view.Count = &donationCountView{Donations: detail.DonationCount}
	}
	return view
}

type ngoQuery struct {
	ID string `form:"id"`
}

type ngoPatchRequest struct {
	NGOID  string `json:"ngoId"`
	Action string `json:"action"`

	types.NGOUpdate
}

func (s *Service) handleGetNGOs(w http.ResponseWriter, r *http.Request) {
	ngos, err := s.directory.ListPublic(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := make([]publicNGOView, 0, len(ngos))
	for _, ngo := range ngos {
		views = append(views, newPublicNGOView(ngo))
	}

	writeJSON(w, http.StatusOK, map[string]any{"ngos": views})
}

func (s *Service) handleGetOwnNGO(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	detail, err := s.directory.OwnNGO(ctx, principalFromContext(ctx))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ngo": newNGODetailView(detail, false)})
}

func (s *Service) handlePatchOwnNGO(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var update types.NGOUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		s.writeError(w, r, err)
		return
	}

	ngo, err := s.directory.UpdateOwnNGO(ctx, principalFromContext(ctx), update)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "NGO updated successfully",
		"ngo":     ngo,
	})
}

func (s *Service) handleGetAdminNGOs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	details, err := s.directory.ListAll(ctx, principalFromContext(ctx))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := make([]ngoDetailView, 0, len(details))
	for _, detail := range details {
		views = append(views, newNGODetailView(detail, true))
	}

	writeJSON(w, http.StatusOK, map[string]any{"ngos": views})
}

func (s *Service) handlePatchAdminNGO(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ngoPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ngo, err := s.directory.UpdateNGO(ctx, principalFromContext(ctx), req.NGOID, req.Action, req.NGOUpdate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "NGO updated successfully",
		"ngo":     ngo,
	})
}

func (s *Service) handleDeleteAdminNGO(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var query ngoQuery
	if err := decodeQuery(r.URL.Query(), &query); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.directory.DeleteNGO(ctx, principalFromContext(ctx), query.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "NGO deleted successfully"})
}
