package server

import "net/http"

func (s *Service) handleGetAdminUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := s.users.ListUsers(ctx, principalFromContext(ctx))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"users":   users,
	})
}
