package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/whiskerbook/internal/apperror"
	"github.com/sakif/whiskerbook/internal/model"
	"github.com/sakif/whiskerbook/internal/pagination"
	"github.com/sakif/whiskerbook/internal/repository"
	"github.com/sakif/whiskerbook/internal/validation"
)

// MeowInput is the writable part of a Meow. A nil field was not supplied.
type MeowInput struct {
	CatID *string `json:"catId"`
	Text  *string `json:"text"`
	Mood  *string `json:"mood"`
}

func (in MeowInput) apply(meow *model.Meow) {
	if in.CatID != nil {
		meow.CatID = strings.TrimSpace(*in.CatID)
	}
	if in.Text != nil {
		meow.Text = strings.TrimSpace(*in.Text)
	}
	if in.Mood != nil {
		meow.Mood = strings.TrimSpace(*in.Mood)
	}
}

// MeowService needs the cat repository for reference checks and the name
// search.
type MeowService struct {
	meows  repository.MeowRepository
	cats   repository.CatRepository
	logger *slog.Logger
}

func NewMeowService(meows repository.MeowRepository, cats repository.CatRepository, logger *slog.Logger) *MeowService {
	return &MeowService{
		meows:  meows,
		cats:   cats,
		logger: logger,
	}
}

// List returns one page of meows, optionally only those of one cat.
func (s *MeowService) List(ctx context.Context, filter repository.MeowFilter, params pagination.Params) (*model.Page[model.Meow], error) {
	page, err := listPage(ctx, params,
		func(ctx context.Context) (int, error) {
			return s.meows.CountMeows(ctx, filter)
		},
		func(ctx context.Context, opts repository.ListOptions) ([]model.Meow, error) {
			return s.meows.ListMeows(ctx, filter, opts)
		},
	)
	if err != nil {
		s.logger.Error("failed to list meows", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing meows: %w", err)
	}
	return page, nil
}

func (s *MeowService) Get(ctx context.Context, id string) (*model.Meow, error) {
	if !validation.IsID(id) {
		return nil, apperror.InvalidID("meow")
	}
	return s.meows.GetMeow(ctx, id)
}

// Create checks that catId names an existing cat, applies the default mood,
// validates and stores a new meow. The result has its cat populated.
func (s *MeowService) Create(ctx context.Context, in MeowInput) (*model.Meow, error) {
	meow := &model.Meow{Mood: model.MoodHappy}
	in.apply(meow)

	if err := checkReference(ctx, "catId", "Cat", meow.CatID, s.cats.CatExists); err != nil {
		return nil, err
	}
	if err := validation.Struct(meow); err != nil {
		return nil, err
	}

	if err := s.meows.CreateMeow(ctx, meow); err != nil {
		return nil, s.writeError("create", "", err)
	}

	s.logger.Info("meow created",
		slog.String("id", meow.ID),
		slog.String("cat_id", meow.CatID),
	)
	return s.populated(ctx, meow), nil
}

// Update re-checks catId only when the caller supplies one.
func (s *MeowService) Update(ctx context.Context, id string, in MeowInput) (*model.Meow, error) {
	meow, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	in.apply(meow)
	if in.CatID != nil {
		if err := checkReference(ctx, "catId", "Cat", meow.CatID, s.cats.CatExists); err != nil {
			return nil, err
		}
	}
	if err := validation.Struct(meow); err != nil {
		return nil, err
	}

	if err := s.meows.UpdateMeow(ctx, meow); err != nil {
		return nil, s.writeError("update", id, err)
	}

	s.logger.Info("meow updated", slog.String("id", meow.ID))
	return s.populated(ctx, meow), nil
}

func (s *MeowService) Delete(ctx context.Context, id string) error {
	if !validation.IsID(id) {
		return apperror.InvalidID("meow")
	}
	if err := s.meows.DeleteMeow(ctx, id); err != nil {
		return s.writeError("delete", id, err)
	}

	s.logger.Info("meow deleted", slog.String("id", id))
	return nil
}

// SearchByCatName returns every meow whose cat's name contains name, ignoring
// case, newest first. It runs two queries: matching cat ids, then their
// meows. The result is not paginated.
func (s *MeowService) SearchByCatName(ctx context.Context, name string) (*model.Collection[model.Meow], error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name query parameter is required")
	}

	catIDs, err := s.cats.FindCatIDsByName(ctx, name)
	if err != nil {
		s.logger.Error("failed to search cats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("searching cats by name: %w", err)
	}

	meows, err := s.meows.ListMeowsByCatIDs(ctx, catIDs)
	if err != nil {
		s.logger.Error("failed to list meows by cat", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing meows by cat: %w", err)
	}

	return &model.Collection[model.Meow]{Total: len(meows), Items: meows}, nil
}

// populated re-reads meow so the response carries its cat. On a failed read
// the written record is returned as is; the write itself already succeeded.
func (s *MeowService) populated(ctx context.Context, meow *model.Meow) *model.Meow {
	found, err := s.meows.GetMeow(ctx, meow.ID)
	if err != nil {
		s.logger.Warn("failed to reload meow", slog.String("id", meow.ID), slog.String("error", err.Error()))
		return meow
	}
	return found
}

func (s *MeowService) writeError(op, id string, err error) error {
	if isDomain(err) {
		return err
	}
	s.logger.Error("failed to "+op+" meow",
		slog.String("id", id),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%s meow: %w", op, err)
}
