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

type PurrService interface {
	List(ctx context.Context, filter repository.PurrFilter, params pagination.Params) (*model.Page[model.Purr], error)
	ListByMeow(ctx context.Context, meowID string) (*model.Collection[model.Purr], error)
	Get(ctx context.Context, id string) (*model.Purr, error)
	Create(ctx context.Context, in service.PurrInput) (*model.Purr, error)
	Update(ctx context.Context, id string, in service.PurrInput) (*model.Purr, error)
	Delete(ctx context.Context, id string) error
}

var _ PurrService = (*service.PurrService)(nil)

// PurrHandler serves /purrs.
type PurrHandler struct {
	svc    PurrService
	logger *slog.Logger
}

func NewPurrHandler(svc PurrService, logger *slog.Logger) *PurrHandler {
	return &PurrHandler{svc: svc, logger: logger}
}

func (h *PurrHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/by-meow/{meowId}", h.HandleListByMeow)
	r.Get("/{id}", h.HandleGet)
	r.Patch("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
}

// HandleList returns one page of purrs, optionally of one meow.
//
// HTTP: GET /purrs?meowId=...&page=1&limit=20
func (h *PurrHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := repository.PurrFilter{MeowID: idFilter(r, "meowId")}

	page, err := h.svc.List(r.Context(), filter, pageParams(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleListByMeow returns every purr of one meow, newest first.
//
// HTTP: GET /purrs/by-meow/{meowId}
func (h *PurrHandler) HandleListByMeow(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListByMeow(r.Context(), chi.URLParam(r, "meowId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PurrHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	purr, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, purr)
}

// HandleCreate stores a new purr.
//
// HTTP: POST /purrs
// REQUEST BODY: {"meowId": "...", "intensity": 7, "durationSeconds": 12}
func (h *PurrHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.PurrInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	purr, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, purr)
}

func (h *PurrHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "purr")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var in service.PurrInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	purr, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, purr)
}

func (h *PurrHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Message{Message: "Purr removed"})
}
