package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/whiskerbook/internal/model"
	"github.com/sakif/whiskerbook/internal/pagination"
	"github.com/sakif/whiskerbook/internal/repository"
	"github.com/sakif/whiskerbook/internal/service"
)

type MeowService interface {
	List(ctx context.Context, filter repository.MeowFilter, params pagination.Params) (*model.Page[model.Meow], error)
	Get(ctx context.Context, id string) (*model.Meow, error)
	Create(ctx context.Context, in service.MeowInput) (*model.Meow, error)
	Update(ctx context.Context, id string, in service.MeowInput) (*model.Meow, error)
	Delete(ctx context.Context, id string) error
	SearchByCatName(ctx context.Context, name string) (*model.Collection[model.Meow], error)
}

var _ MeowService = (*service.MeowService)(nil)

// MeowHandler serves /meows.
type MeowHandler struct {
	svc    MeowService
	logger *slog.Logger
}

func NewMeowHandler(svc MeowService, logger *slog.Logger) *MeowHandler {
	return &MeowHandler{svc: svc, logger: logger}
}

// Routes mounts the meow endpoints on r. The search route is registered
// before /{id} so "search" is never taken for an id.
func (h *MeowHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/search/by-cat-name", h.HandleSearchByCatName)
	r.Get("/{id}", h.HandleGet)
	r.Patch("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
}

// HandleList returns one page of meows, optionally of one cat.
//
// HTTP: GET /meows?catId=...&page=1&limit=20&sort=oldest
func (h *MeowHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := repository.MeowFilter{CatID: idFilter(r, "catId")}

	page, err := h.svc.List(r.Context(), filter, pageParams(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleSearchByCatName returns every meow of the cats whose name contains
// the query, ignoring case.
//
// HTTP: GET /meows/search/by-cat-name?name=tom
func (h *MeowHandler) HandleSearchByCatName(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SearchByCatName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MeowHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	meow, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meow)
}

// HandleCreate stores a new meow.
//
// HTTP: POST /meows
// REQUEST BODY: {"catId": "...", "text": "hi", "mood": "sleepy"}
func (h *MeowHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.MeowInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	meow, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, meow)
}

func (h *MeowHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "meow")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var in service.MeowInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	meow, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meow)
}

func (h *MeowHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Message{Message: "Meow removed"})
}
