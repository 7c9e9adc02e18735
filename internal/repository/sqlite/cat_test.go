package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/xid"

	"github.com/sakif/whiskerbook/internal/apperror"
	"github.com/sakif/whiskerbook/internal/model"
	"github.com/sakif/whiskerbook/internal/repository"
)

func TestCreateCat(t *testing.T) {
	db := newTestDB(t)

	cat := &model.Cat{Name: "Tom", Breed: "Tabby", Age: 3, Color: "Grey"}
	if err := db.CreateCat(context.Background(), cat); err != nil {
		t.Fatalf("CreateCat() error = %v", err)
	}

	if _, err := xid.FromString(cat.ID); err != nil {
		t.Errorf("CreateCat() set ID %q, not an xid: %v", cat.ID, err)
	}
	if cat.CreatedAt.IsZero() || cat.UpdatedAt.IsZero() {
		t.Error("CreateCat() did not set timestamps")
	}

	found, err := db.GetCat(context.Background(), cat.ID)
	if err != nil {
		t.Fatalf("GetCat() error = %v", err)
	}
	if found.Name != "Tom" || found.Breed != "Tabby" || found.Age != 3 || found.Color != "Grey" {
		t.Errorf("GetCat() = %+v, want the created fields back", found)
	}
	if !found.CreatedAt.Equal(cat.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", found.CreatedAt, cat.CreatedAt)
	}
}

func TestGetCat_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetCat(context.Background(), xid.New().String())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetCat() error = %v, want ErrNotFound", err)
	}
}

func TestListCats_OrderAndPaging(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"first", "second", "third", "fourth", "fifth"} {
		ids = append(ids, createTestCat(t, db, name).ID)
	}

	newest, err := db.ListCats(ctx, repository.ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListCats() error = %v", err)
	}
	if len(newest) != 2 || newest[0].ID != ids[4] || newest[1].ID != ids[3] {
		t.Errorf("newest page = %v, want fifth then fourth", catNames(newest))
	}

	oldest, err := db.ListCats(ctx, repository.ListOptions{Limit: 2, Offset: 2, Oldest: true})
	if err != nil {
		t.Fatalf("ListCats(oldest) error = %v", err)
	}
	if len(oldest) != 2 || oldest[0].ID != ids[2] || oldest[1].ID != ids[3] {
		t.Errorf("oldest page 2 = %v, want third then fourth", catNames(oldest))
	}

	beyond, err := db.ListCats(ctx, repository.ListOptions{Limit: 2, Offset: 10})
	if err != nil {
		t.Fatalf("ListCats(beyond) error = %v", err)
	}
	if len(beyond) != 0 {
		t.Errorf("page past the end returned %d cats, want 0", len(beyond))
	}

	total, err := db.CountCats(ctx)
	if err != nil {
		t.Fatalf("CountCats() error = %v", err)
	}
	if total != 5 {
		t.Errorf("CountCats() = %d, want 5", total)
	}
}

func TestUpdateCat(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cat := createTestCat(t, db, "Tom")
	created := cat.CreatedAt

	cat.Age = 4
	cat.Color = "Black"
	if err := db.UpdateCat(ctx, cat); err != nil {
		t.Fatalf("UpdateCat() error = %v", err)
	}

	found, err := db.GetCat(ctx, cat.ID)
	if err != nil {
		t.Fatalf("GetCat() error = %v", err)
	}
	if found.Age != 4 || found.Color != "Black" || found.Name != "Tom" {
		t.Errorf("after update = %+v", found)
	}
	if !found.CreatedAt.Equal(created) {
		t.Error("UpdateCat() changed CreatedAt")
	}
	if found.UpdatedAt.Before(found.CreatedAt) {
		t.Error("UpdatedAt is before CreatedAt")
	}
}

func TestUpdateCat_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateCat(context.Background(), &model.Cat{ID: xid.New().String(), Name: "Ghost"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateCat() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteCat(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cat := createTestCat(t, db, "Tom")

	if err := db.DeleteCat(ctx, cat.ID); err != nil {
		t.Fatalf("DeleteCat() error = %v", err)
	}
	if ok, _ := db.CatExists(ctx, cat.ID); ok {
		t.Error("CatExists() = true after delete")
	}

	err := db.DeleteCat(ctx, cat.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteCat() error = %v, want ErrNotFound", err)
	}
}

func TestFindCatIDsByName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tom := createTestCat(t, db, "Tom")
	tommy := createTestCat(t, db, "Tommy Lee")
	createTestCat(t, db, "Felix")
	percent := createTestCat(t, db, "100% cat")

	tests := []struct {
		pattern string
		want    []string
	}{
		{"tom", []string{tom.ID, tommy.ID}},
		{"TOMMY", []string{tommy.ID}},
		{"%", []string{percent.ID}},
		{"garfield", nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := db.FindCatIDsByName(ctx, tt.pattern)
			if err != nil {
				t.Fatalf("FindCatIDsByName() error = %v", err)
			}
			if !sameIDs(got, tt.want) {
				t.Errorf("FindCatIDsByName(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
		})
	}
}

func catNames(cats []model.Cat) []string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return names
}

func sameIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	seen := make(map[string]bool, len(want))
	for _, id := range want {
		seen[id] = true
	}
	for _, id := range got {
		if !seen[id] {
			return false
		}
	}
	return true
}
