package inventory_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// memStore: catálogo + libro en memoria con semántica transaccional
// ──────────────────────────────────────────────────────────────────────────────

// memStore implementa ProductRepository, MovementRepository, StockRepository y TxRunner.
// Run serializa las transacciones y restaura la foto previa si fn falla.
type memStore struct {
	mu         sync.Mutex
	txMu       sync.Mutex
	products   map[string]*entity.Product
	categories map[string]string // id → nombre
	users      map[string]string // id → nombre
	movements  []*entity.Movement
	txRuns     int

	failCreate  error
	failStock   error
	failListLow error
}

func newMemStore() *memStore {
	return &memStore{
		products:   map[string]*entity.Product{},
		categories: map[string]string{},
		users:      map[string]string{},
	}
}

func (s *memStore) addProduct(id, name, categoryID string, qty, min int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = &entity.Product{ID: id, Name: name, CategoryID: categoryID, Quantity: qty, QuantityMinimum: min}
}

func (s *memStore) quantity(id string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Quantity
}

func (s *memStore) runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txRuns
}

func (s *memStore) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

// TxRunner

func (s *memStore) Run(ctx context.Context, fn func(repository.MovementRepository, repository.StockRepository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.txRuns++
	snapshotQty := make(map[string]int64, len(s.products))
	for id, p := range s.products {
		snapshotQty[id] = p.Quantity
	}
	snapshotMov := len(s.movements)
	s.mu.Unlock()

	if err := fn(s, s); err != nil {
		s.mu.Lock()
		for id, q := range snapshotQty {
			s.products[id].Quantity = q
		}
		s.movements = s.movements[:snapshotMov]
		s.mu.Unlock()
		return err
	}
	return nil
}

// MovementRepository

func (s *memStore) Create(ctx context.Context, m *entity.Movement) error {
	if s.failCreate != nil {
		return s.failCreate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.movements = append(s.movements, &cp)
	return nil
}

func (s *memStore) detail(m *entity.Movement) *entity.MovementDetail {
	d := &entity.MovementDetail{Movement: *m, UserName: s.users[m.UserID]}
	if p, ok := s.products[m.ProductID]; ok {
		d.ProductName = p.Name
		d.CategoryID = p.CategoryID
	}
	return d
}

func (s *memStore) List(ctx context.Context, f repository.MovementFilter) ([]*entity.MovementDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	var out []*entity.MovementDetail
	for _, m := range s.movements {
		d := s.detail(m)
		if f.Type != "" && d.Type != f.Type {
			continue
		}
		if f.CategoryID != "" && d.CategoryID != f.CategoryID {
			continue
		}
		if f.Date != nil && d.CreatedAt.In(loc).Format(inventory.DateLayout) != f.Date.Format(inventory.DateLayout) {
			continue
		}
		out = append(out, d)
	}
	sortDesc(out)
	return out, nil
}

func (s *memStore) ListByProduct(ctx context.Context, productID string) ([]*entity.MovementDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.MovementDetail
	for _, m := range s.movements {
		if m.ProductID == productID {
			out = append(out, s.detail(m))
		}
	}
	sortDesc(out)
	return out, nil
}

func sortDesc(list []*entity.MovementDetail) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
}

// StockRepository

func (s *memStore) apply(productID string, fn func(p *entity.Product) error) (int64, error) {
	if s.failStock != nil {
		return 0, s.failStock
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if err := fn(p); err != nil {
		return 0, err
	}
	return p.Quantity, nil
}

func (s *memStore) Increase(ctx context.Context, productID string, quantity int64) (int64, error) {
	return s.apply(productID, func(p *entity.Product) error {
		p.Quantity = entity.MovementTypeInbound.Apply(p.Quantity, quantity)
		return nil
	})
}

func (s *memStore) Decrease(ctx context.Context, productID string, quantity int64, allowNegative bool) (int64, error) {
	return s.apply(productID, func(p *entity.Product) error {
		if !allowNegative && p.Quantity < quantity {
			return domain.ErrInsufficientStock
		}
		p.Quantity = entity.MovementTypeOutbound.Apply(p.Quantity, quantity)
		return nil
	})
}

func (s *memStore) Set(ctx context.Context, productID string, quantity int64) (int64, error) {
	return s.apply(productID, func(p *entity.Product) error {
		p.Quantity = entity.MovementTypeAdjustment.Apply(p.Quantity, quantity)
		return nil
	})
}

// staleProductRepo devuelve una lectura vieja de la cantidad, como si otra tx
// hubiera modificado el stock entre la lectura y el UPDATE.
type staleProductRepo struct {
	productRepo
	quantity int64
}

func (r staleProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := r.productRepo.GetByID(ctx, id)
	if p != nil {
		p.Quantity = r.quantity
	}
	return p, err
}

// productRepo expone el lado de catálogo del memStore (GetByID/ListBelowMinimum).
type productRepo struct{ s *memStore }

func (r productRepo) Create(ctx context.Context, p *entity.Product) error { return errors.New("no usado") }
func (r productRepo) Update(ctx context.Context, p *entity.Product) error { return errors.New("no usado") }
func (r productRepo) Delete(ctx context.Context, id string) error          { return errors.New("no usado") }

func (r productRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r productRepo) List(ctx context.Context) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r productRepo) ListBelowMinimum(ctx context.Context) ([]repository.LowStockItem, error) {
	if r.s.failListLow != nil {
		return nil, r.s.failListLow
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repository.LowStockItem
	for _, p := range r.s.products {
		if p.IsBelowMinimum() {
			out = append(out, repository.LowStockItem{
				ProductID:       p.ID,
				ProductName:     p.Name,
				CategoryName:    r.s.categories[p.CategoryID],
				Quantity:        p.Quantity,
				QuantityMinimum: p.QuantityMinimum,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// fakeNotifier
// ──────────────────────────────────────────────────────────────────────────────

type sentAlert struct {
	recipient string
	alert     inventory.LowStockAlert
	deadline  bool
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []sentAlert
	failOn map[string]error // productID → error
}

func (n *fakeNotifier) SendLowStockAlert(ctx context.Context, recipient string, alert inventory.LowStockAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.failOn[alert.ProductID]; ok {
		return err
	}
	_, hasDeadline := ctx.Deadline()
	n.sent = append(n.sent, sentAlert{recipient: recipient, alert: alert, deadline: hasDeadline})
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}
