package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"

	"github.com/andresfq/mercadito/internal/errs"
	"github.com/andresfq/mercadito/internal/model"
)

func seedVendedor(profiles *fakeProfiles) uuid.UUID {
	id := uuid.Must(uuid.NewV4())
	profiles.byID[id] = &model.Profile{ID: id, UserType: model.UserTypeVendedor, Negocio: "Tienda"}
	return id
}

func TestPublish_RequiresVendedor(t *testing.T) {
	profiles := newFakeProfiles()
	products := newFakeProducts(profiles)
	s := NewProductService(products, profiles, nil)

	buyer := uuid.Must(uuid.NewV4())
	profiles.byID[buyer] = &model.Profile{ID: buyer, UserType: model.UserTypeComprador}

	_, err := s.Publish(context.Background(), buyer, ProductInput{Nombre: "x", Precio: 100})
	if !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for comprador, got %v", err)
	}
	if len(products.list) != 0 {
		t.Fatalf("product created despite role check")
	}
}

func TestPublish_Validation(t *testing.T) {
	profiles := newFakeProfiles()
	products := newFakeProducts(profiles)
	s := NewProductService(products, profiles, nil)
	vend := seedVendedor(profiles)

	if _, err := s.Publish(context.Background(), vend, ProductInput{Nombre: "", Precio: 100}); err == nil {
		t.Fatalf("empty nombre accepted")
	}
	if _, err := s.Publish(context.Background(), vend, ProductInput{Nombre: "x", Precio: -1}); err == nil {
		t.Fatalf("negative precio accepted")
	}
}

func TestPublish_BumpsPublishedCounter(t *testing.T) {
	profiles := newFakeProfiles()
	products := newFakeProducts(profiles)
	s := NewProductService(products, profiles, nil)
	vend := seedVendedor(profiles)

	p, err := s.Publish(context.Background(), vend, ProductInput{Nombre: "mochila", Precio: 45000})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if profiles.byID[vend].ProductosPublicados != 1 {
		t.Fatalf("counter = %d, want 1", profiles.byID[vend].ProductosPublicados)
	}

	if err := s.Delete(context.Background(), vend, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if profiles.byID[vend].ProductosPublicados != 0 {
		t.Fatalf("counter after delete = %d, want 0", profiles.byID[vend].ProductosPublicados)
	}
}

func TestDelete_NotOwned(t *testing.T) {
	profiles := newFakeProfiles()
	products := newFakeProducts(profiles)
	s := NewProductService(products, profiles, nil)
	vend := seedVendedor(profiles)
	other := seedVendedor(profiles)

	p, err := s.Publish(context.Background(), vend, ProductInput{Nombre: "cuaderno", Precio: 5000})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := s.Delete(context.Background(), other, p.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign product, got %v", err)
	}
	if len(products.list) != 1 {
		t.Fatalf("foreign delete removed the product")
	}
}

func TestCatalog_CacheHitSkipsStore(t *testing.T) {
	profiles := newFakeProfiles()
	products := newFakeProducts(profiles)
	cache := &fakeCache{cached: []model.Product{{Nombre: "cacheado"}}}
	s := NewProductService(products, profiles, cache)

	got, err := s.Catalog(context.Background())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(got) != 1 || got[0].Nombre != "cacheado" {
		t.Fatalf("unexpected catalog: %+v", got)
	}
	if products.listCalls != 0 {
		t.Fatalf("store queried on cache hit")
	}
}

func TestCatalog_MissFillsCache(t *testing.T) {
	profiles := newFakeProfiles()
	products := newFakeProducts(profiles)
	seedProduct(products, "fresco", 1200)
	cache := &fakeCache{}
	s := NewProductService(products, profiles, cache)

	got, err := s.Catalog(context.Background())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(got) != 1 || products.listCalls != 1 {
		t.Fatalf("store not queried on miss")
	}
	if len(cache.cached) != 1 {
		t.Fatalf("cache not filled after miss")
	}
}

func TestCatalog_CacheOutageDegrades(t *testing.T) {
	profiles := newFakeProfiles()
	products := newFakeProducts(profiles)
	seedProduct(products, "directo", 900)
	cache := &fakeCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	s := NewProductService(products, profiles, cache)

	got, err := s.Catalog(context.Background())
	if err != nil {
		t.Fatalf("catalog must degrade, got %v", err)
	}
	if len(got) != 1 || got[0].Nombre != "directo" {
		t.Fatalf("unexpected catalog: %+v", got)
	}
}

func TestPublish_InvalidatesCache(t *testing.T) {
	profiles := newFakeProfiles()
	products := newFakeProducts(profiles)
	cache := &fakeCache{cached: []model.Product{{Nombre: "viejo"}}}
	s := NewProductService(products, profiles, cache)
	vend := seedVendedor(profiles)

	if _, err := s.Publish(context.Background(), vend, ProductInput{Nombre: "nuevo", Precio: 100}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if cache.invalidations != 1 {
		t.Fatalf("cache not invalidated on publish")
	}
}

func TestUpdate_RefreshesAndInvalidates(t *testing.T) {
	profiles := newFakeProfiles()
	products := newFakeProducts(profiles)
	cache := &fakeCache{}
	s := NewProductService(products, profiles, cache)
	vend := seedVendedor(profiles)

	p, err := s.Publish(context.Background(), vend, ProductInput{Nombre: "antes", Precio: 100})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	got, err := s.Update(context.Background(), vend, p.ID, ProductInput{Nombre: "despues", Precio: 200})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Nombre != "despues" || got.Precio != 200 {
		t.Fatalf("update not applied: %+v", got)
	}
	if cache.invalidations < 2 { // publish + update
		t.Fatalf("invalidations = %d, want >= 2", cache.invalidations)
	}
}

func TestProfileUpdateComprador_BlankKeepsStored(t *testing.T) {
	profiles := newFakeProfiles()
	buyer := uuid.Must(uuid.NewV4())
	profiles.byID[buyer] = &model.Profile{ID: buyer, UserType: model.UserTypeComprador, Nombre: "Luis", Descripcion: "antigua"}
	s := NewProfileService(profiles, &fakePurchases{cart: &fakeCart{}, profiles: profiles})

	got, err := s.UpdateComprador(context.Background(), buyer, "", "nueva")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Nombre != "Luis" || got.Descripcion != "nueva" {
		t.Fatalf("blank handling wrong: %+v", got)
	}
}
