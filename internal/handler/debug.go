package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/whiskerbook/internal/model"
	"github.com/sakif/whiskerbook/internal/repository"
)

// DebugHandler exercises the store-level constraints from the outside.
type DebugHandler struct {
	meows  repository.MeowRepository
	logger *slog.Logger
}

func NewDebugHandler(meows repository.MeowRepository, logger *slog.Logger) *DebugHandler {
	return &DebugHandler{meows: meows, logger: logger}
}

// HandleInvalidMeow writes a meow with no catId and empty text straight to
// the repository, skipping the service and its validation. The store is
// expected to reject it, which answers 400 ValidationFailed.
//
// HTTP: POST /debug/invalid-meow
func (h *DebugHandler) HandleInvalidMeow(w http.ResponseWriter, r *http.Request) {
	meow := &model.Meow{Text: "", Mood: model.MoodHappy}

	if err := h.meows.CreateMeow(r.Context(), meow); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Warn("store accepted an invalid meow", slog.String("id", meow.ID))
	writeJSON(w, http.StatusCreated, model.Message{Message: "Unexpectedly created invalid meow."})
}
