package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dmcconeghy/CL-backend-assessment/apperr"

	"github.com/gorilla/mux"
)

// decodeBody decodes a JSON request body into v. A body whose field types do
// not match (for example a string where a number belongs) is an invalid-value
// failure, not a server error. Returns io.EOF untouched for an empty body so
// callers can fall back to query parameters.
func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Wrap(apperr.ErrInvalidValue, "field %s must be of type %s", typeErr.Field, typeErr.Type)
	}
	return apperr.Wrap(apperr.ErrInvalidValue, "invalid request body: %v", err)
}

// pathID extracts an integer path variable.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.ErrInvalidValue, "%s must be an integer, got %q", name, raw)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter, returning nil when
// the parameter is absent. Absence and zero are different things here.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInvalidValue, "%s must be an integer, got %q", name, raw)
	}
	return &value, nil
}

// queryString returns a pointer to an optional query parameter, nil when absent.
func queryString(r *http.Request, name string) *string {
	if !r.URL.Query().Has(name) {
		return nil
	}
	value := r.URL.Query().Get(name)
	return &value
}
