package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/joao-fontenele/backoffice-api/internal/domain"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type memStore struct {
	mu           sync.Mutex
	orders       map[string]domain.Order
	seq          int
	beforeUpdate func()
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[string]domain.Order)}
}

func (m *memStore) List(ctx context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *memStore) ListByEstado(ctx context.Context, estado domain.OrderStatus) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.Estado == estado {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *memStore) Create(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	order.ID = fmt.Sprintf("order-%d", m.seq)
	order.Version = 1
	m.orders[order.ID] = *order
	return nil
}

func (m *memStore) Update(ctx context.Context, order *domain.Order) error {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.orders[order.ID]
	if !ok {
		return domain.Errorf(domain.ErrNotFound, "order not found")
	}
	if current.Version != order.Version {
		return domain.Errorf(domain.ErrConflict, "order was modified concurrently")
	}
	order.Version++
	m.orders[order.ID] = *order
	return nil
}

func (m *memStore) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return false, nil
	}
	delete(m.orders, id)
	return true, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := event.(domain.OrderEvent); ok {
		p.events = append(p.events, e)
	}
	return p.err
}

func ptr[T any](v T) *T {
	return &v
}

func validPatch() OrderPatch {
	return OrderPatch{
		Producto:     ptr("Laptop Dell XPS"),
		Descripcion:  ptr("16GB RAM, 512GB SSD"),
		Cliente:      ptr("Juan Pérez"),
		Cantidad:     ptr(2),
		Precio:       ptr(1500.0),
		FechaEntrega: ptr(domain.NewDate(2026, time.March, 20)),
	}
}

func newTestService(store Store, pub Publisher) *Service {
	return NewService(store, pub, WithClock(func() time.Time { return testNow }))
}

func TestService_Create(t *testing.T) {
	t.Run("applies defaults and computes total", func(t *testing.T) {
		pub := &recordingPublisher{}
		svc := newTestService(newMemStore(), pub)

		order, err := svc.Create(context.Background(), validPatch())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.ID == "" {
			t.Error("expected id to be assigned")
		}
		if order.Estado != domain.OrderStatusPending {
			t.Errorf("expected estado %s, got %s", domain.OrderStatusPending, order.Estado)
		}
		if order.Descuento != 0 {
			t.Errorf("expected descuento 0, got %v", order.Descuento)
		}
		if order.Total != 3000 {
			t.Errorf("expected total 3000, got %v", order.Total)
		}
		if len(pub.events) != 1 || pub.events[0].Type != domain.EventOrderCreated {
			t.Fatalf("expected one order.created event, got %+v", pub.events)
		}
		if pub.events[0].OrderID != order.ID {
			t.Errorf("expected event for %s, got %s", order.ID, pub.events[0].OrderID)
		}
	})

	t.Run("applies discount", func(t *testing.T) {
		svc := newTestService(newMemStore(), nil)
		patch := validPatch()
		patch.Descuento = ptr(10.0)

		order, err := svc.Create(context.Background(), patch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Total != 2700 {
			t.Errorf("expected total 2700, got %v", order.Total)
		}
	})

	boundaries := []struct {
		descuento float64
		wantTotal float64
	}{
		{0, 3000},
		{100, 0},
	}
	for _, tt := range boundaries {
		t.Run(fmt.Sprintf("descuento %v is accepted", tt.descuento), func(t *testing.T) {
			svc := newTestService(newMemStore(), nil)
			patch := validPatch()
			patch.Descuento = ptr(tt.descuento)

			order, err := svc.Create(context.Background(), patch)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if order.Total != tt.wantTotal {
				t.Errorf("expected total %v, got %v", tt.wantTotal, order.Total)
			}
		})
	}

	t.Run("same day delivery is accepted", func(t *testing.T) {
		svc := newTestService(newMemStore(), nil)
		patch := validPatch()
		patch.FechaEntrega = ptr(domain.DateOf(testNow))

		if _, err := svc.Create(context.Background(), patch); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		pub := &recordingPublisher{err: errors.New("broker down")}
		svc := newTestService(newMemStore(), pub)

		if _, err := svc.Create(context.Background(), validPatch()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	invalid := []struct {
		name   string
		mutate func(p *OrderPatch)
	}{
		{"missing producto", func(p *OrderPatch) { p.Producto = nil }},
		{"missing fechaEntrega", func(p *OrderPatch) { p.FechaEntrega = nil }},
		{"zero cantidad", func(p *OrderPatch) { p.Cantidad = ptr(0) }},
		{"zero precio", func(p *OrderPatch) { p.Precio = ptr(0.0) }},
		{"negative descuento", func(p *OrderPatch) { p.Descuento = ptr(-1.0) }},
		{"descuento over 100", func(p *OrderPatch) { p.Descuento = ptr(100.5) }},
		{"descuento 101", func(p *OrderPatch) { p.Descuento = ptr(101.0) }},
		{"unknown producto", func(p *OrderPatch) { p.Producto = ptr("Nintendo Switch") }},
		{"unknown estado", func(p *OrderPatch) { p.Estado = ptr(domain.OrderStatus("perdido")) }},
		{"blank cliente", func(p *OrderPatch) { p.Cliente = ptr("   ") }},
		{"delivery yesterday", func(p *OrderPatch) { p.FechaEntrega = ptr(domain.NewDate(2026, time.March, 9)) }},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := newTestService(store, nil)
			patch := validPatch()
			tt.mutate(&patch)

			_, err := svc.Create(context.Background(), patch)
			if !errors.Is(err, domain.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if len(store.orders) != 0 {
				t.Error("expected nothing to be persisted")
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	t.Run("merges supplied fields and recomputes total", func(t *testing.T) {
		pub := &recordingPublisher{}
		svc := newTestService(newMemStore(), pub)
		created, err := svc.Create(context.Background(), validPatch())
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		updated, err := svc.Update(context.Background(), created.ID, OrderPatch{
			Cantidad:  ptr(3),
			Descuento: ptr(50.0),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Total != 2250 {
			t.Errorf("expected total 2250, got %v", updated.Total)
		}
		if updated.Producto != "Laptop Dell XPS" {
			t.Errorf("expected producto untouched, got %q", updated.Producto)
		}
		if updated.Version != 2 {
			t.Errorf("expected version 2, got %d", updated.Version)
		}
		if last := pub.events[len(pub.events)-1]; last.Type != domain.EventOrderUpdated {
			t.Errorf("expected order.updated event, got %s", last.Type)
		}
	})

	t.Run("validates only supplied fields", func(t *testing.T) {
		svc := newTestService(newMemStore(), nil)
		created, err := svc.Create(context.Background(), validPatch())
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		_, err = svc.Update(context.Background(), created.ID, OrderPatch{Precio: ptr(-5.0)})
		if !errors.Is(err, domain.ErrInvalid) {
			t.Fatalf("expected ErrInvalid, got %v", err)
		}

		current, _ := svc.Get(context.Background(), created.ID)
		if current.Precio != 1500 {
			t.Errorf("expected precio unchanged, got %v", current.Precio)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := newTestService(newMemStore(), nil)
		_, err := svc.Update(context.Background(), "missing", OrderPatch{Cantidad: ptr(1)})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("concurrent modification is a conflict", func(t *testing.T) {
		store := newMemStore()
		svc := newTestService(store, nil)
		created, err := svc.Create(context.Background(), validPatch())
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		store.beforeUpdate = func() {
			store.mu.Lock()
			o := store.orders[created.ID]
			o.Version++
			store.orders[created.ID] = o
			store.mu.Unlock()
		}

		_, err = svc.Update(context.Background(), created.ID, OrderPatch{Cantidad: ptr(5)})
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})
}

func TestService_Cancel(t *testing.T) {
	tests := []struct {
		name    string
		estado  domain.OrderStatus
		wantErr error
	}{
		{"pending", domain.OrderStatusPending, nil},
		{"processing", domain.OrderStatusProcessing, nil},
		{"shipped", domain.OrderStatusShipped, nil},
		{"delivered", domain.OrderStatusDelivered, domain.ErrRule},
		{"cancelled", domain.OrderStatusCancelled, domain.ErrRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			svc := newTestService(newMemStore(), pub)
			patch := validPatch()
			patch.Estado = ptr(tt.estado)
			created, err := svc.Create(context.Background(), patch)
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			order, err := svc.Cancel(context.Background(), created.ID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				stored, _ := svc.Get(context.Background(), created.ID)
				if stored.Estado != tt.estado {
					t.Errorf("expected estado %s to be kept, got %s", tt.estado, stored.Estado)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if order.Estado != domain.OrderStatusCancelled {
				t.Errorf("expected estado cancelado, got %s", order.Estado)
			}
			if last := pub.events[len(pub.events)-1]; last.Type != domain.EventOrderCancelled {
				t.Errorf("expected order.cancelled event, got %s", last.Type)
			}
		})
	}

	t.Run("unknown id", func(t *testing.T) {
		svc := newTestService(newMemStore(), nil)
		if _, err := svc.Cancel(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestService_Delete(t *testing.T) {
	pub := &recordingPublisher{}
	store := newMemStore()
	svc := newTestService(store, pub)
	created, err := svc.Create(context.Background(), validPatch())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected deleted order to be gone, got %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if last := pub.events[len(pub.events)-1]; last.Type != domain.EventOrderDeleted {
		t.Errorf("expected order.deleted event, got %s", last.Type)
	}
}

func TestService_ListByEstado(t *testing.T) {
	svc := newTestService(newMemStore(), nil)

	for _, estado := range []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusShipped, domain.OrderStatusShipped} {
		patch := validPatch()
		patch.Estado = ptr(estado)
		if _, err := svc.Create(context.Background(), patch); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	shipped, err := svc.ListByEstado(context.Background(), domain.OrderStatusShipped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shipped) != 2 {
		t.Errorf("expected 2 shipped orders, got %d", len(shipped))
	}

	if _, err := svc.ListByEstado(context.Background(), "shipped"); !errors.Is(err, domain.ErrInvalid) {
		t.Errorf("expected ErrInvalid for non-canonical estado, got %v", err)
	}
}
