package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"donationhub/pkg/types"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err onto a status code. Only errors carrying a
// types.Error message are shown to the caller.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, types.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, types.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	}

	var typed *types.Error
	if status == http.StatusInternalServerError || !errors.As(err, &typed) {
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
		return
	}

	writeJSON(w, status, errorBody{Error: typed.Error()})
}

// decodeJSON reads a JSON body into v. Malformed bodies are validation
// errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return types.Validationf("Invalid value for %s.", typeErr.Field)
	case errors.As(err, &maxErr):
		return types.Validationf("Request body is too large.")
	case errors.Is(err, io.EOF):
		return types.Validationf("Request body is required.")
	}

	return types.Validationf("Invalid request body.")
}

// decodeQuery fills v from the query string using its form tags.
func decodeQuery(values url.Values, v any) error {
	if err := decoder.Decode(v, values); err != nil {
		return types.Validationf("Invalid query parameters.")
	}
	return nil
}
