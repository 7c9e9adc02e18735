package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/whiskerbook/internal/apperror"
	"github.com/sakif/whiskerbook/internal/pagination"
	"github.com/sakif/whiskerbook/internal/validation"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON object into dst. An empty body decodes as {} so
// that a create with no fields reports the missing fields, not a parse error.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperror.ValidationFailed("body", "Invalid JSON body")
}

// pathID returns the {id} URL parameter, or apperror.ErrInvalidID when it is
// malformed. Updates call it before reading the body so a bad id wins over
// a bad body.
func pathID(r *http.Request, resource string) (string, error) {
	id := chi.URLParam(r, "id")
	if !validation.IsID(id) {
		return "", apperror.InvalidID(resource)
	}
	return id, nil
}

// pageParams reads page, limit and sort from the query string.
func pageParams(r *http.Request) pagination.Params {
	q := r.URL.Query()
	return pagination.Resolve(q.Get("page"), q.Get("limit"), q.Get("sort"))
}

// idFilter returns the named query parameter when it is a well-formed id.
// A malformed filter is ignored rather than rejected, so the list is
// returned unfiltered.
func idFilter(r *http.Request, name string) string {
	v := r.URL.Query().Get(name)
	if !validation.IsID(v) {
		return ""
	}
	return v
}
