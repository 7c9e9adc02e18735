package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/sakif/whiskerbook/internal/apperror"
	"github.com/sakif/whiskerbook/internal/model"
	"github.com/sakif/whiskerbook/internal/pagination"
	"github.com/sakif/whiskerbook/internal/repository"
	"github.com/sakif/whiskerbook/internal/validation"
)

// PurrInput is the writable part of a Purr. A nil field was not supplied.
//
// Intensity is decoded as a number so that 2.5 reaches validation and is
// reported like any other field error instead of failing JSON decoding.
type PurrInput struct {
	MeowID          *string  `json:"meowId"`
	Intensity       *float64 `json:"intensity"`
	DurationSeconds *float64 `json:"durationSeconds"`
}

// apply copies the supplied fields onto purr. It returns a field error when
// intensity is not a whole number.
func (in PurrInput) apply(purr *model.Purr) error {
	if in.MeowID != nil {
		purr.MeowID = strings.TrimSpace(*in.MeowID)
	}
	if in.Intensity != nil {
		v := *in.Intensity
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return apperror.ValidationFields("Purr", map[string]string{
				"intensity": "intensity must be a whole number between 1 and 10",
			})
		}
		purr.Intensity = int(v)
	}
	if in.DurationSeconds != nil {
		purr.DurationSeconds = *in.DurationSeconds
	}
	return nil
}

type PurrService struct {
	purrs  repository.PurrRepository
	meows  repository.MeowRepository
	logger *slog.Logger
}

func NewPurrService(purrs repository.PurrRepository, meows repository.MeowRepository, logger *slog.Logger) *PurrService {
	return &PurrService{
		purrs:  purrs,
		meows:  meows,
		logger: logger,
	}
}

func (s *PurrService) List(ctx context.Context, filter repository.PurrFilter, params pagination.Params) (*model.Page[model.Purr], error) {
	page, err := listPage(ctx, params,
		func(ctx context.Context) (int, error) {
			return s.purrs.CountPurrs(ctx, filter)
		},
		func(ctx context.Context, opts repository.ListOptions) ([]model.Purr, error) {
			return s.purrs.ListPurrs(ctx, filter, opts)
		},
	)
	if err != nil {
		s.logger.Error("failed to list purrs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing purrs: %w", err)
	}
	return page, nil
}

// ListByMeow returns every purr of one meow, newest first, unpaginated.
func (s *PurrService) ListByMeow(ctx context.Context, meowID string) (*model.Collection[model.Purr], error) {
	if !validation.IsID(meowID) {
		return nil, apperror.InvalidID("meow")
	}

	purrs, err := s.purrs.ListPurrsByMeow(ctx, meowID)
	if err != nil {
		s.logger.Error("failed to list purrs by meow",
			slog.String("meow_id", meowID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing purrs of meow: %w", err)
	}

	return &model.Collection[model.Purr]{Total: len(purrs), Items: purrs}, nil
}

func (s *PurrService) Get(ctx context.Context, id string) (*model.Purr, error) {
	if !validation.IsID(id) {
		return nil, apperror.InvalidID("purr")
	}
	return s.purrs.GetPurr(ctx, id)
}

// Create stores a new purr with intensity 5 and duration 10 unless supplied.
// The repository refuses a missing meow on its own; the check here gives the
// same answer earlier.
func (s *PurrService) Create(ctx context.Context, in PurrInput) (*model.Purr, error) {
	purr := &model.Purr{
		Intensity:       model.DefaultIntensity,
		DurationSeconds: model.DefaultDurationSeconds,
	}
	if err := in.apply(purr); err != nil {
		return nil, err
	}

	if err := checkReference(ctx, "meowId", "Meow", purr.MeowID, s.meows.MeowExists); err != nil {
		return nil, err
	}
	if err := validation.Struct(purr); err != nil {
		return nil, err
	}

	if err := s.purrs.CreatePurr(ctx, purr); err != nil {
		return nil, s.writeError("create", "", err)
	}

	s.logger.Info("purr created",
		slog.String("id", purr.ID),
		slog.String("meow_id", purr.MeowID),
	)
	return s.populated(ctx, purr), nil
}

func (s *PurrService) Update(ctx context.Context, id string, in PurrInput) (*model.Purr, error) {
	purr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := in.apply(purr); err != nil {
		return nil, err
	}
	if in.MeowID != nil {
		if err := checkReference(ctx, "meowId", "Meow", purr.MeowID, s.meows.MeowExists); err != nil {
			return nil, err
		}
	}
	if err := validation.Struct(purr); err != nil {
		return nil, err
	}

	if err := s.purrs.UpdatePurr(ctx, purr); err != nil {
		return nil, s.writeError("update", id, err)
	}

	s.logger.Info("purr updated", slog.String("id", purr.ID))
	return s.populated(ctx, purr), nil
}

func (s *PurrService) Delete(ctx context.Context, id string) error {
	if !validation.IsID(id) {
		return apperror.InvalidID("purr")
	}
	if err := s.purrs.DeletePurr(ctx, id); err != nil {
		return s.writeError("delete", id, err)
	}

	s.logger.Info("purr deleted", slog.String("id", id))
	return nil
}

func (s *PurrService) populated(ctx context.Context, purr *model.Purr) *model.Purr {
	found, err := s.purrs.GetPurr(ctx, purr.ID)
	if err != nil {
		s.logger.Warn("failed to reload purr", slog.String("id", purr.ID), slog.String("error", err.Error()))
		return purr
	}
	return found
}

func (s *PurrService) writeError(op, id string, err error) error {
	if isDomain(err) {
		return err
	}
	s.logger.Error("failed to "+op+" purr",
		slog.String("id", id),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%s purr: %w", op, err)
}
