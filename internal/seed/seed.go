// Package seed loads a demo dataset: the cats listed in a seed file, one
// meow per cat and a few purrs. It goes through the services, so every seeded
// record passes the same reference checks and validation as an API write.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sakif/whiskerbook/internal/model"
	"github.com/sakif/whiskerbook/internal/service"
)

// PurredMeows is how many of the seeded meows get a purr.
const PurredMeows = 8

// Cat is one entry of the seed file. Missing fields take the API defaults.
type Cat struct {
	Name  string   `yaml:"name"`
	Breed string   `yaml:"breed,omitempty"`
	Age   *float64 `yaml:"age,omitempty"`
	Color string   `yaml:"color,omitempty"`
}

func (c Cat) input() service.CatInput {
	in := service.CatInput{Name: &c.Name, Age: c.Age}
	if c.Breed != "" {
		in.Breed = &c.Breed
	}
	if c.Color != "" {
		in.Color = &c.Color
	}
	return in
}

// LoadFile reads a list of cats. YAML is a superset of JSON, so a
// cats.seed.json file works too.
func LoadFile(path string) ([]Cat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var cats []Cat
	if err := yaml.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return cats, nil
}

// Store is the wipe step of a seed run.
type Store interface {
	Truncate(ctx context.Context) error
}

type Summary struct {
	Cats  int
	Meows int
	Purrs int
}

type Seeder struct {
	store  Store
	cats   *service.CatService
	meows  *service.MeowService
	purrs  *service.PurrService
	logger *slog.Logger
}

func New(store Store, cats *service.CatService, meows *service.MeowService, purrs *service.PurrService, logger *slog.Logger) *Seeder {
	return &Seeder{
		store:  store,
		cats:   cats,
		meows:  meows,
		purrs:  purrs,
		logger: logger,
	}
}

// Run wipes the three collections and loads cats. Each cat gets the meow
// "Meow post #<n> from <name>", with moods cycling through model.Moods. The
// first PurredMeows meows get one purr each, intensity n%10+1 and duration
// 5+n seconds for the n-th (zero-based).
//
// Run stops at the first failing record; what was written before it stays.
func (s *Seeder) Run(ctx context.Context, cats []Cat) (Summary, error) {
	var sum Summary

	if err := s.store.Truncate(ctx); err != nil {
		return sum, fmt.Errorf("wiping collections: %w", err)
	}

	meowIDs := make([]string, 0, len(cats))
	for i, c := range cats {
		cat, err := s.cats.Create(ctx, c.input())
		if err != nil {
			return sum, fmt.Errorf("seeding cat #%d %q: %w", i+1, c.Name, err)
		}
		sum.Cats++

		text := fmt.Sprintf("Meow post #%d from %s", i+1, cat.Name)
		mood := model.Moods[i%len(model.Moods)]
		meow, err := s.meows.Create(ctx, service.MeowInput{CatID: &cat.ID, Text: &text, Mood: &mood})
		if err != nil {
			return sum, fmt.Errorf("seeding meow for %q: %w", cat.Name, err)
		}
		sum.Meows++
		meowIDs = append(meowIDs, meow.ID)
	}

	for i, meowID := range meowIDs {
		if i == PurredMeows {
			break
		}
		intensity := float64(i%10 + 1)
		duration := float64(5 + i)
		_, err := s.purrs.Create(ctx, service.PurrInput{
			MeowID:          &meowID,
			Intensity:       &intensity,
			DurationSeconds: &duration,
		})
		if err != nil {
			return sum, fmt.Errorf("seeding purr #%d: %w", i+1, err)
		}
		sum.Purrs++
	}

	s.logger.Info("seed complete",
		slog.Int("cats", sum.Cats),
		slog.Int("meows", sum.Meows),
		slog.Int("purrs", sum.Purrs),
	)
	return sum, nil
}
