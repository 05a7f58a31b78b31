package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/andresfq/mercadito/internal/errs"
	"github.com/andresfq/mercadito/internal/limiter"
	"github.com/andresfq/mercadito/internal/model"
	"github.com/andresfq/mercadito/internal/repository"
)

// In-memory fakes shared by the service tests.

type fakeUsers struct {
	byEmail  map[string]*model.User
	profiles *fakeProfiles

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers(profiles *fakeProfiles) *fakeUsers {
	return &fakeUsers{byEmail: map[string]*model.User{}, profiles: profiles}
}

func (f *fakeUsers) CreateWithProfile(_ context.Context, u *model.User, p *model.Profile) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byEmail[u.Email]; exists {
		return errs.ErrAlreadyExists
	}
	cu := *u
	f.byEmail[u.Email] = &cu
	cp := *p
	f.profiles.byID[p.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

type fakeProfiles struct {
	byID map[uuid.UUID]*model.Profile

	getErr error
	updErr error
}

var _ repository.ProfileRepository = (*fakeProfiles)(nil)

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byID: map[uuid.UUID]*model.Profile{}}
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeProfiles) UpdateComprador(_ context.Context, id uuid.UUID, nombre, descripcion string) error {
	if f.updErr != nil {
		return f.updErr
	}
	p, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	if nombre != "" {
		p.Nombre = nombre
	}
	if descripcion != "" {
		p.Descripcion = descripcion
	}
	return nil
}

type fakeProducts struct {
	list     []model.Product
	profiles *fakeProfiles

	listCalls int

	listErr   error
	getErr    error
	createErr error
	updateErr error
	deleteErr error
}

var _ repository.ProductRepository = (*fakeProducts)(nil)

func newFakeProducts(profiles *fakeProfiles) *fakeProducts {
	return &fakeProducts{profiles: profiles}
}

func (f *fakeProducts) ListPublished(context.Context) ([]model.Product, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Product(nil), f.list...), nil
}

func (f *fakeProducts) Get(_ context.Context, id uuid.UUID) (*model.Product, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for i := range f.list {
		if f.list[i].ID == id {
			c := f.list[i]
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeProducts) ListByVendedor(_ context.Context, vendedorID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range f.list {
		if p.VendedorID == vendedorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) Create(_ context.Context, p *model.Product) error {
	if f.createErr != nil {
		return f.createErr
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.list = append(f.list, *p)
	if prof, ok := f.profiles.byID[p.VendedorID]; ok {
		prof.ProductosPublicados++
	}
	return nil
}

func (f *fakeProducts) Update(_ context.Context, vendedorID uuid.UUID, p *model.Product) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.list {
		if f.list[i].ID == p.ID && f.list[i].VendedorID == vendedorID {
			p.VendedorID = vendedorID
			f.list[i] = *p
			f.list[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeProducts) Delete(_ context.Context, vendedorID, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.list {
		if f.list[i].ID == id && f.list[i].VendedorID == vendedorID {
			f.list = append(f.list[:i], f.list[i+1:]...)
			if prof, ok := f.profiles.byID[vendedorID]; ok && prof.ProductosPublicados > 0 {
				prof.ProductosPublicados--
			}
			return nil
		}
	}
	return errs.ErrNotFound
}

type fakeCart struct {
	lines []model.CartLine

	findErr   error
	insertErr error
	updateErr error
	deleteErr error
	listErr   error
}

var _ repository.CartRepository = (*fakeCart)(nil)

func (f *fakeCart) ListByUser(_ context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.CartLine
	for _, l := range f.lines {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeCart) FindByProduct(_ context.Context, userID, productoID uuid.UUID) (*model.CartLine, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, l := range f.lines {
		if l.UserID == userID && l.ProductoID == productoID {
			c := l
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeCart) GetLine(_ context.Context, userID, lineID uuid.UUID) (*model.CartLine, error) {
	for _, l := range f.lines {
		if l.UserID == userID && l.ID == lineID {
			c := l
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeCart) Insert(_ context.Context, line *model.CartLine) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.lines = append(f.lines, *line)
	return nil
}

func (f *fakeCart) UpdateCantidad(_ context.Context, userID, lineID uuid.UUID, cantidad int) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.lines {
		if f.lines[i].UserID == userID && f.lines[i].ID == lineID {
			f.lines[i].Cantidad = cantidad
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeCart) Delete(_ context.Context, userID, lineID uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.lines {
		if f.lines[i].UserID == userID && f.lines[i].ID == lineID {
			f.lines = append(f.lines[:i], f.lines[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeCart) DeleteAll(_ context.Context, userID uuid.UUID) error {
	var kept []model.CartLine
	for _, l := range f.lines {
		if l.UserID != userID {
			kept = append(kept, l)
		}
	}
	f.lines = kept
	return nil
}

// fakePurchases honors the atomicity contract: on error nothing is written.
type fakePurchases struct {
	cart     *fakeCart
	profiles *fakeProfiles

	purchases []model.Purchase

	checkoutCalls int
	checkoutErr   error
}

var _ repository.PurchaseRepository = (*fakePurchases)(nil)

func (f *fakePurchases) Checkout(_ context.Context, compradorID uuid.UUID, lines []model.CartLine) ([]model.Purchase, error) {
	f.checkoutCalls++
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	out := make([]model.Purchase, 0, len(lines))
	for _, l := range lines {
		p := model.Purchase{
			ID:          uuid.Must(uuid.NewV4()),
			CompradorID: compradorID,
			ProductoID:  l.ProductoID,
			Cantidad:    l.Cantidad,
			Total:       l.Subtotal(),
			FechaCompra: time.Now(),
			Producto:    l.Producto,
		}
		f.purchases = append(f.purchases, p)
		out = append(out, p)
		if prof, ok := f.profiles.byID[compradorID]; ok {
			prof.ObjetosComprados += l.Cantidad
		}
		if prof, ok := f.profiles.byID[l.Producto.VendedorID]; ok {
			prof.ProductosVendidos += l.Cantidad
		}
	}
	_ = f.cart.DeleteAll(context.Background(), compradorID)
	return out, nil
}

func (f *fakePurchases) ListByComprador(_ context.Context, compradorID uuid.UUID) ([]model.Purchase, error) {
	var out []model.Purchase
	for i := len(f.purchases) - 1; i >= 0; i-- {
		if f.purchases[i].CompradorID == compradorID {
			out = append(out, f.purchases[i])
		}
	}
	return out, nil
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successCalls int
	failureCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	return l.allowOK, 0, l.allowErr
}

func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return nil
}

func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

type fakeCache struct {
	cached []model.Product

	getErr error
	setErr error

	invalidations int
}

var _ CatalogCache = (*fakeCache)(nil)

func (c *fakeCache) Get(context.Context) ([]model.Product, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.cached, nil
}

func (c *fakeCache) Set(_ context.Context, products []model.Product) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.cached = append([]model.Product(nil), products...)
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.cached = nil
	c.invalidations++
	return nil
}
