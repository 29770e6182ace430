package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/roomloop/flatmarket/internal/dto"
	apperrors "github.com/roomloop/flatmarket/internal/errors"
	"github.com/roomloop/flatmarket/internal/model"
	"github.com/roomloop/flatmarket/pkg/cache"
)

type fakeFlatStore struct {
	flats     map[uint]*model.Flat
	nextID    uint
	listCalls int
}

func newFakeFlatStore() *fakeFlatStore {
	return &fakeFlatStore{flats: map[uint]*model.Flat{}, nextID: 1}
}

func (f *fakeFlatStore) GetByID(_ context.Context, id uint) (*model.Flat, error) {
	flat, ok := f.flats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *flat
	return &cp, nil
}

func (f *fakeFlatStore) List(_ context.Context, filter dto.FlatFilter, limit, offset int) ([]model.Flat, int64, error) {
	f.listCalls++
	var out []model.Flat
	for _, flat := range f.flats {
		if !filter.IncludeInactive && !flat.IsActive {
			continue
		}
		if filter.City != "" && flat.City != filter.City {
			continue
		}
		out = append(out, *flat)
	}
	return out, int64(len(out)), nil
}

func (f *fakeFlatStore) ListByOwner(_ context.Context, ownerID uint) ([]model.Flat, error) {
	var out []model.Flat
	for _, flat := range f.flats {
		if flat.CreatedBy == ownerID {
			out = append(out, *flat)
		}
	}
	return out, nil
}

func (f *fakeFlatStore) Create(_ context.Context, flat *model.Flat) error {
	flat.ID = f.nextID
	f.nextID++
	cp := *flat
	f.flats[flat.ID] = &cp
	return nil
}

func (f *fakeFlatStore) Update(_ context.Context, id uint, updates map[string]interface{}) error {
	flat, ok := f.flats[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for col, val := range updates {
		switch col {
		case "title":
			flat.Title = val.(string)
		case "monthly_rent":
			flat.MonthlyRent = val.(int64)
		case "city":
			flat.City = val.(string)
		case "is_active":
			flat.IsActive = val.(bool)
		}
	}
	return nil
}

func (f *fakeFlatStore) Delete(_ context.Context, id uint) error {
	if _, ok := f.flats[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.flats, id)
	return nil
}

func newTestFlatService() (*FlatService, *fakeFlatStore) {
	store := newFakeFlatStore()
	return NewFlatService(store, NewMemoryListingCache(cache.NewCache())), store
}

func ownerClaims(userID uint) *dto.SessionClaims {
	return &dto.SessionClaims{UserID: userID, Role: model.RoleOwner}
}

func adminClaims() *dto.SessionClaims {
	return &dto.SessionClaims{UserID: 1000, Role: model.RoleAdmin}
}

func createTestFlat(t *testing.T, svc *FlatService, creatorID uint) *model.Flat {
	t.Helper()
	flat, err := svc.Create(context.Background(), creatorID, dto.CreateFlatRequest{
		Title:       "2BHK near metro",
		MonthlyRent: 25000,
		City:        "Pune",
		BHK:         2,
		Amenities:   map[string]bool{"parking": true},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return flat
}

func TestFlatService_Create(t *testing.T) {
	svc, store := newTestFlatService()

	flat := createTestFlat(t, svc, 7)

	if flat.ID == 0 {
		t.Error("Expected an assigned ID")
	}
	if !flat.IsActive {
		t.Error("Expected new flats to be active")
	}
	if flat.CreatedBy != 7 {
		t.Errorf("Expected created_by 7, got %d", flat.CreatedBy)
	}
	if string(store.flats[flat.ID].Amenities) != `{"parking":true}` {
		t.Errorf("Unexpected amenities payload: %s", store.flats[flat.ID].Amenities)
	}
}

func TestFlatService_GetByID_NotFound(t *testing.T) {
	svc, _ := newTestFlatService()

	if _, err := svc.GetByID(context.Background(), 42); !errors.Is(err, apperrors.ErrFlatNotFound) {
		t.Errorf("Expected ErrFlatNotFound, got %v", err)
	}
}

func TestFlatService_List_CachesPages(t *testing.T) {
	svc, store := newTestFlatService()
	createTestFlat(t, svc, 7)

	filter := dto.FlatFilter{City: "Pune"}

	first, total, err := svc.List(context.Background(), filter, 20, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(first) != 1 {
		t.Fatalf("Expected 1 flat, got total=%d len=%d", total, len(first))
	}

	second, _, err := svc.List(context.Background(), filter, 20, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if store.listCalls != 1 {
		t.Errorf("Expected the second page to come from cache, store saw %d list calls", store.listCalls)
	}
	if second[0].Title != first[0].Title {
		t.Errorf("Cached page diverges: %q vs %q", second[0].Title, first[0].Title)
	}

	// A different page window must not reuse the cached entry.
	if _, _, err := svc.List(context.Background(), filter, 20, 20); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if store.listCalls != 2 {
		t.Errorf("Expected a distinct cache key per page window, store saw %d list calls", store.listCalls)
	}
}

func TestFlatService_Mutations_InvalidateCache(t *testing.T) {
	svc, store := newTestFlatService()
	flat := createTestFlat(t, svc, 7)

	filter := dto.FlatFilter{}
	if _, _, err := svc.List(context.Background(), filter, 20, 0); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	title := "3BHK near metro"
	if _, err := svc.Update(context.Background(), ownerClaims(7), flat.ID, dto.UpdateFlatRequest{Title: &title}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	listed, _, err := svc.List(context.Background(), filter, 20, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if store.listCalls != 2 {
		t.Errorf("Expected the update to invalidate the cache, store saw %d list calls", store.listCalls)
	}
	if listed[0].Title != title {
		t.Errorf("Expected refreshed title %q, got %q", title, listed[0].Title)
	}
}

func TestFlatService_Update_Ownership(t *testing.T) {
	svc, _ := newTestFlatService()
	flat := createTestFlat(t, svc, 7)

	title := "Edited"

	if _, err := svc.Update(context.Background(), ownerClaims(8), flat.ID, dto.UpdateFlatRequest{Title: &title}); !errors.Is(err, apperrors.ErrNotFlatOwner) {
		t.Errorf("Expected ErrNotFlatOwner for a stranger, got %v", err)
	}

	updated, err := svc.Update(context.Background(), adminClaims(), flat.ID, dto.UpdateFlatRequest{Title: &title})
	if err != nil {
		t.Fatalf("Admin update failed: %v", err)
	}
	if updated.Title != title {
		t.Errorf("Expected title %q, got %q", title, updated.Title)
	}
}

func TestFlatService_Update_Partial(t *testing.T) {
	svc, _ := newTestFlatService()
	flat := createTestFlat(t, svc, 7)

	rent := int64(27000)
	updated, err := svc.Update(context.Background(), ownerClaims(7), flat.ID, dto.UpdateFlatRequest{MonthlyRent: &rent})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.MonthlyRent != rent {
		t.Errorf("Expected rent %d, got %d", rent, updated.MonthlyRent)
	}
	if updated.Title != flat.Title {
		t.Errorf("Unset fields must not change: title became %q", updated.Title)
	}
	if updated.City != flat.City {
		t.Errorf("Unset fields must not change: city became %q", updated.City)
	}
}

func TestFlatService_Delete(t *testing.T) {
	svc, store := newTestFlatService()
	flat := createTestFlat(t, svc, 7)

	if err := svc.Delete(context.Background(), ownerClaims(8), flat.ID); !errors.Is(err, apperrors.ErrNotFlatOwner) {
		t.Errorf("Expected ErrNotFlatOwner for a stranger, got %v", err)
	}
	if err := svc.Delete(context.Background(), ownerClaims(7), flat.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(store.flats) != 0 {
		t.Error("Expected the flat to be removed from the store")
	}
	if err := svc.Delete(context.Background(), ownerClaims(7), flat.ID); !errors.Is(err, apperrors.ErrFlatNotFound) {
		t.Errorf("Expected ErrFlatNotFound for a second delete, got %v", err)
	}
}

func TestFlatService_ListByOwner_IncludesInactive(t *testing.T) {
	svc, _ := newTestFlatService()
	flat := createTestFlat(t, svc, 7)
	createTestFlat(t, svc, 8)

	inactive := false
	if _, err := svc.Update(context.Background(), ownerClaims(7), flat.ID, dto.UpdateFlatRequest{IsActive: &inactive}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	mine, err := svc.ListByOwner(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("Expected 1 flat for owner 7, got %d", len(mine))
	}
	if mine[0].IsActive {
		t.Error("Expected the owner view to include the deactivated flat")
	}
}
