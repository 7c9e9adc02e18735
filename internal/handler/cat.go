package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/whiskerbook/internal/model"
	"github.com/sakif/whiskerbook/internal/pagination"
	"github.com/sakif/whiskerbook/internal/service"
)

// CatService is the part of service.CatService the handler uses.
type CatService interface {
	List(ctx context.Context, params pagination.Params) (*model.Page[model.Cat], error)
	Get(ctx context.Context, id string) (*model.Cat, error)
	Create(ctx context.Context, in service.CatInput) (*model.Cat, error)
	Update(ctx context.Context, id string, in service.CatInput) (*model.Cat, error)
	Delete(ctx context.Context, id string) error
}

var _ CatService = (*service.CatService)(nil)

// CatHandler serves /cats.
type CatHandler struct {
	svc    CatService
	logger *slog.Logger
}

func NewCatHandler(svc CatService, logger *slog.Logger) *CatHandler {
	return &CatHandler{svc: svc, logger: logger}
}

// Routes mounts the cat endpoints on r.
func (h *CatHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGet)
	r.Patch("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
}

// HandleList returns one page of cats.
//
// HTTP: GET /cats?page=1&limit=20&sort=newest
func (h *CatHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), pageParams(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleGet returns one cat.
//
// HTTP: GET /cats/{id}
func (h *CatHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cat, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// HandleCreate stores a new cat.
//
// HTTP: POST /cats
// REQUEST BODY: {"name": "Tom", "breed": "Tabby", "age": 3, "color": "Grey"}
func (h *CatHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CatInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	cat, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

// HandleUpdate changes the supplied fields of a cat.
//
// HTTP: PATCH /cats/{id}
func (h *CatHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cat")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var in service.CatInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	cat, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// HandleDelete removes a cat. Its meows are kept.
//
// HTTP: DELETE /cats/{id}
func (h *CatHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Message{Message: "Cat removed"})
}
