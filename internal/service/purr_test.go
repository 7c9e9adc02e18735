package service

import (
	"context"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/whiskerbook/internal/apperror"
	"github.com/sakif/whiskerbook/internal/model"
	"github.com/sakif/whiskerbook/internal/pagination"
	"github.com/sakif/whiskerbook/internal/repository"
)

func TestPurrCreate_Defaults(t *testing.T) {
	s := newTestServices(t)
	meow := s.meow(t, s.cat(t, "Tom").ID, "hi")

	purr, err := s.purrs.Create(context.Background(), PurrInput{MeowID: ptr(meow.ID)})
	require.NoError(t, err)

	assert.Equal(t, model.DefaultIntensity, purr.Intensity)
	assert.Equal(t, float64(model.DefaultDurationSeconds), purr.DurationSeconds)
	require.NotNil(t, purr.Meow)
	assert.Equal(t, "hi", purr.Meow.Text)
}

func TestPurrCreate_Invalid(t *testing.T) {
	s := newTestServices(t)
	meow := s.meow(t, s.cat(t, "Tom").ID, "hi")

	tests := []struct {
		name    string
		in      PurrInput
		wantErr error
		field   string
	}{
		{"intensity too low", PurrInput{Intensity: ptr(0.0)}, apperror.ErrValidation, "intensity"},
		{"intensity too high", PurrInput{Intensity: ptr(11.0)}, apperror.ErrValidation, "intensity"},
		{"fractional intensity", PurrInput{Intensity: ptr(2.5)}, apperror.ErrValidation, "intensity"},
		{"short duration", PurrInput{DurationSeconds: ptr(0.5)}, apperror.ErrValidation, "durationSeconds"},
		{"unknown meow", PurrInput{MeowID: ptr(xid.New().String())}, apperror.ErrInvalidReference, "meowId"},
		{"malformed meow", PurrInput{MeowID: ptr("meow")}, apperror.ErrInvalidReference, "meowId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.in.MeowID == nil {
				tt.in.MeowID = ptr(meow.ID)
			}

			_, err := s.purrs.Create(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.wantErr)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestPurrUpdate(t *testing.T) {
	s := newTestServices(t)
	meow := s.meow(t, s.cat(t, "Tom").ID, "hi")
	purr, err := s.purrs.Create(context.Background(), PurrInput{MeowID: ptr(meow.ID), Intensity: ptr(3.0)})
	require.NoError(t, err)

	updated, err := s.purrs.Update(context.Background(), purr.ID, PurrInput{DurationSeconds: ptr(42.0)})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Intensity)
	assert.Equal(t, 42.0, updated.DurationSeconds)

	_, err = s.purrs.Update(context.Background(), purr.ID, PurrInput{Intensity: ptr(12.0)})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = s.purrs.Update(context.Background(), purr.ID, PurrInput{MeowID: ptr(xid.New().String())})
	assert.ErrorIs(t, err, apperror.ErrInvalidReference)
}

func TestPurrListByMeow(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	cat := s.cat(t, "Tom")
	m1 := s.meow(t, cat.ID, "one")
	m2 := s.meow(t, cat.ID, "two")

	for _, id := range []string{m1.ID, m1.ID, m2.ID} {
		_, err := s.purrs.Create(ctx, PurrInput{MeowID: ptr(id)})
		require.NoError(t, err)
	}

	result, err := s.purrs.ListByMeow(ctx, m1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)

	_, err = s.purrs.ListByMeow(ctx, "bad")
	assert.ErrorIs(t, err, apperror.ErrInvalidID)

	page, err := s.purrs.List(ctx, repository.PurrFilter{MeowID: m2.ID}, pagination.Resolve("", "", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestPurrDelete(t *testing.T) {
	s := newTestServices(t)
	meow := s.meow(t, s.cat(t, "Tom").ID, "hi")
	purr, err := s.purrs.Create(context.Background(), PurrInput{MeowID: ptr(meow.ID)})
	require.NoError(t, err)

	require.NoError(t, s.purrs.Delete(context.Background(), purr.ID))

	_, err = s.purrs.Get(context.Background(), purr.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
