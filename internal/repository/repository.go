// Package repository declares the storage contracts the services depend on.
// The sqlite subpackage is the only implementation; tests use it in memory.
package repository

import (
	"context"

	"github.com/sakif/whiskerbook/internal/model"
)

// ListOptions is one page of a list, already normalized by the pagination package.
type ListOptions struct {
	Limit  int
	Offset int
	Oldest bool // creation time ascending when true, descending otherwise
}

// MeowFilter narrows a Meow list. Zero value matches every Meow.
type MeowFilter struct {
	CatID string
}

// PurrFilter narrows a Purr list. Zero value matches every Purr.
type PurrFilter struct {
	MeowID string
}

type CatRepository interface {
	CreateCat(ctx context.Context, cat *model.Cat) error
	GetCat(ctx context.Context, id string) (*model.Cat, error)
	ListCats(ctx context.Context, opts ListOptions) ([]model.Cat, error)
	CountCats(ctx context.Context) (int, error)
	UpdateCat(ctx context.Context, cat *model.Cat) error
	DeleteCat(ctx context.Context, id string) error
	CatExists(ctx context.Context, id string) (bool, error)
	// FindCatIDsByName returns the ids of cats whose name contains
	// pattern, ignoring case.
	FindCatIDsByName(ctx context.Context, pattern string) ([]string, error)
}

type MeowRepository interface {
	CreateMeow(ctx context.Context, meow *model.Meow) error
	GetMeow(ctx context.Context, id string) (*model.Meow, error)
	ListMeows(ctx context.Context, filter MeowFilter, opts ListOptions) ([]model.Meow, error)
	CountMeows(ctx context.Context, filter MeowFilter) (int, error)
	// ListMeowsByCatIDs returns every Meow of the given cats, newest first.
	ListMeowsByCatIDs(ctx context.Context, catIDs []string) ([]model.Meow, error)
	UpdateMeow(ctx context.Context, meow *model.Meow) error
	DeleteMeow(ctx context.Context, id string) error
	MeowExists(ctx context.Context, id string) (bool, error)
}

// PurrRepository implementations must refuse to store a Purr whose MeowID
// does not name an existing Meow, whoever the caller is.
type PurrRepository interface {
	CreatePurr(ctx context.Context, purr *model.Purr) error
	GetPurr(ctx context.Context, id string) (*model.Purr, error)
	ListPurrs(ctx context.Context, filter PurrFilter, opts ListOptions) ([]model.Purr, error)
	CountPurrs(ctx context.Context, filter PurrFilter) (int, error)
	// ListPurrsByMeow returns every Purr of one Meow, newest first.
	ListPurrsByMeow(ctx context.Context, meowID string) ([]model.Purr, error)
	UpdatePurr(ctx context.Context, purr *model.Purr) error
	DeletePurr(ctx context.Context, id string) error
}
