package orders

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/backoffice-api/internal/domain"
)

// Store persists orders. GetByID returns (nil, nil) when the order does not
// exist. Update only succeeds when the stored version matches order.Version.
type Store interface {
	List(ctx context.Context) ([]domain.Order, error)
	ListByEstado(ctx context.Context, estado domain.OrderStatus) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id string) (bool, error)
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Service struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time

	created   metric.Int64Counter
	cancelled metric.Int64Counter
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService builds an order service. publisher may be nil, in which case no
// events are emitted.
func NewService(store Store, publisher Publisher, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: publisher,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter("backoffice/orders")
	s.created, _ = meter.Int64Counter("orders.created",
		metric.WithDescription("Number of orders created"))
	s.cancelled, _ = meter.Int64Counter("orders.cancelled",
		metric.WithDescription("Number of orders cancelled"))

	return s
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "order not found")
	}
	return order, nil
}

func (s *Service) ListByEstado(ctx context.Context, estado domain.OrderStatus) ([]domain.Order, error) {
	if !estado.Valid() {
		return nil, domain.Errorf(domain.ErrInvalid, "invalid estado %q", estado)
	}
	return s.store.ListByEstado(ctx, estado)
}

func (s *Service) Create(ctx context.Context, patch OrderPatch) (*domain.Order, error) {
	if err := patch.requireCreateFields(); err != nil {
		return nil, err
	}
	if err := patch.validate(s.now()); err != nil {
		return nil, err
	}

	order := &domain.Order{
		Descuento: 0,
		Estado:    domain.OrderStatusPending,
	}
	patch.ApplyTo(order)
	order.Recalculate()

	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}

	s.created.Add(ctx, 1, metric.WithAttributes(attribute.String("producto", order.Producto)))
	s.publish(ctx, domain.EventOrderCreated, order)
	return order, nil
}

func (s *Service) Update(ctx context.Context, id string, patch OrderPatch) (*domain.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.validate(s.now()); err != nil {
		return nil, err
	}

	patch.ApplyTo(order)
	order.Recalculate()

	if err := s.store.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventOrderUpdated, order)
	return order, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	order, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.Errorf(domain.ErrNotFound, "order not found")
	}

	s.publish(ctx, domain.EventOrderDeleted, order)
	return nil
}

func (s *Service) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, order); err != nil {
		return nil, err
	}

	s.cancelled.Add(ctx, 1)
	s.publish(ctx, domain.EventOrderCancelled, order)
	return order, nil
}

func (s *Service) publish(ctx context.Context, eventType domain.EventType, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	event := domain.NewOrderEvent(eventType, order, s.now())
	if err := s.publisher.Publish(ctx, order.ID, event); err != nil {
		s.logger.Error("failed to publish order event", "error", err, "order_id", order.ID, "type", eventType)
	}
}
