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

// CatInput is the writable part of a Cat. A nil field was not supplied:
// Create applies the default, Update leaves the stored value alone.
type CatInput struct {
	Name  *string  `json:"name"`
	Breed *string  `json:"breed"`
	Age   *float64 `json:"age"`
	Color *string  `json:"color"`
}

// apply copies the supplied fields onto cat, trimming strings.
func (in CatInput) apply(cat *model.Cat) {
	if in.Name != nil {
		cat.Name = strings.TrimSpace(*in.Name)
	}
	if in.Breed != nil {
		cat.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Age != nil {
		cat.Age = *in.Age
	}
	if in.Color != nil {
		cat.Color = strings.TrimSpace(*in.Color)
	}
}

type CatService struct {
	repo   repository.CatRepository
	logger *slog.Logger
}

func NewCatService(repo repository.CatRepository, logger *slog.Logger) *CatService {
	return &CatService{
		repo:   repo,
		logger: logger,
	}
}

func (s *CatService) List(ctx context.Context, params pagination.Params) (*model.Page[model.Cat], error) {
	page, err := listPage(ctx, params, s.repo.CountCats, s.repo.ListCats)
	if err != nil {
		s.logger.Error("failed to list cats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing cats: %w", err)
	}
	return page, nil
}

// Get returns apperror.ErrInvalidID for a malformed id without querying the
// store, and apperror.ErrNotFound when no cat has that id.
func (s *CatService) Get(ctx context.Context, id string) (*model.Cat, error) {
	if !validation.IsID(id) {
		return nil, apperror.InvalidID("cat")
	}
	return s.repo.GetCat(ctx, id)
}

// Create fills in defaults (breed and color "Unknown", age 0), validates and
// stores a new cat.
func (s *CatService) Create(ctx context.Context, in CatInput) (*model.Cat, error) {
	cat := &model.Cat{
		Breed: model.DefaultBreed,
		Color: model.DefaultColor,
	}
	in.apply(cat)

	if err := validation.Struct(cat); err != nil {
		return nil, err
	}

	if err := s.repo.CreateCat(ctx, cat); err != nil {
		return nil, s.writeError("create", "", err)
	}

	s.logger.Info("cat created",
		slog.String("id", cat.ID),
		slog.String("name", cat.Name),
	)
	return cat, nil
}

// Update applies the supplied fields to the stored cat and re-validates the
// merged record with the same rules as Create.
func (s *CatService) Update(ctx context.Context, id string, in CatInput) (*model.Cat, error) {
	cat, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	in.apply(cat)
	if err := validation.Struct(cat); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCat(ctx, cat); err != nil {
		return nil, s.writeError("update", id, err)
	}

	s.logger.Info("cat updated", slog.String("id", cat.ID))
	return cat, nil
}

// Delete removes a cat. Its meows keep their now-dangling catId.
func (s *CatService) Delete(ctx context.Context, id string) error {
	if !validation.IsID(id) {
		return apperror.InvalidID("cat")
	}
	if err := s.repo.DeleteCat(ctx, id); err != nil {
		return s.writeError("delete", id, err)
	}

	s.logger.Info("cat deleted", slog.String("id", id))
	return nil
}

// writeError passes domain errors through untouched and logs and wraps
// everything else.
func (s *CatService) writeError(op, id string, err error) error {
	if isDomain(err) {
		return err
	}
	s.logger.Error("failed to "+op+" cat",
		slog.String("id", id),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%s cat: %w", op, err)
}
