package cupons

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/backoffice-api/internal/domain"
)

// Store persists cupons. Lookups return (nil, nil) when nothing matches.
// Redeem increments usoActual only while the cupon is active, unexpired on
// today and below usoMaximo, returning nil when the guard did not hold.
type Store interface {
	List(ctx context.Context) ([]domain.Cupon, error)
	ListActive(ctx context.Context) ([]domain.Cupon, error)
	GetByID(ctx context.Context, id string) (*domain.Cupon, error)
	GetByCodigo(ctx context.Context, codigo string) (*domain.Cupon, error)
	Create(ctx context.Context, cupon *domain.Cupon) error
	Update(ctx context.Context, cupon *domain.Cupon) error
	Delete(ctx context.Context, id string) (bool, error)
	Redeem(ctx context.Context, id string, today domain.Date) (*domain.Cupon, error)
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Service struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time

	redeemed metric.Int64Counter
	rejected metric.Int64Counter
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

	meter := otel.Meter("backoffice/cupons")
	s.redeemed, _ = meter.Int64Counter("cupons.redeemed",
		metric.WithDescription("Number of successful cupon redemptions"))
	s.rejected, _ = meter.Int64Counter("cupons.redemptions_rejected",
		metric.WithDescription("Number of cupon redemptions refused by a business rule"))

	return s
}

func (s *Service) List(ctx context.Context) ([]domain.Cupon, error) {
	return s.store.List(ctx)
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Cupon, error) {
	return s.store.ListActive(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Cupon, error) {
	cupon, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cupon == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "cupon not found")
	}
	return cupon, nil
}

func (s *Service) GetByCodigo(ctx context.Context, codigo string) (*domain.Cupon, error) {
	codigo = domain.NormalizeCodigo(codigo)
	cupon, err := s.store.GetByCodigo(ctx, codigo)
	if err != nil {
		return nil, err
	}
	if cupon == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "cupon with codigo %s not found", codigo)
	}
	return cupon, nil
}

func (s *Service) Create(ctx context.Context, patch CuponPatch) (*domain.Cupon, error) {
	if err := patch.requireCreateFields(); err != nil {
		return nil, err
	}
	if err := patch.validate(s.now()); err != nil {
		return nil, err
	}

	cupon := &domain.Cupon{Activo: true}
	patch.ApplyTo(cupon)
	cupon.UsoActual = 0

	existing, err := s.store.GetByCodigo(ctx, cupon.Codigo)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Errorf(domain.ErrConflict, "cupon with codigo %s already exists", cupon.Codigo)
	}

	if err := s.store.Create(ctx, cupon); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventCuponCreated, cupon)
	return cupon, nil
}

func (s *Service) Update(ctx context.Context, id string, patch CuponPatch) (*domain.Cupon, error) {
	cupon, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.validate(s.now()); err != nil {
		return nil, err
	}

	previousCodigo := cupon.Codigo
	patch.ApplyTo(cupon)

	if cupon.UsoActual > cupon.UsoMaximo {
		return nil, domain.Errorf(domain.ErrInvalid, "usoActual cannot exceed usoMaximo")
	}

	if cupon.Codigo != previousCodigo {
		existing, err := s.store.GetByCodigo(ctx, cupon.Codigo)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != cupon.ID {
			return nil, domain.Errorf(domain.ErrConflict, "cupon with codigo %s already exists", cupon.Codigo)
		}
	}

	if err := s.store.Update(ctx, cupon); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventCuponUpdated, cupon)
	return cupon, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	cupon, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.Errorf(domain.ErrNotFound, "cupon not found")
	}

	s.publish(ctx, domain.EventCuponDeleted, cupon)
	return nil
}

// Use redeems one use of the cupon identified by codigo. The increment is a
// single conditional write, so concurrent callers can never push usoActual
// past usoMaximo.
func (s *Service) Use(ctx context.Context, codigo string) (*domain.Cupon, error) {
	cupon, err := s.GetByCodigo(ctx, codigo)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := cupon.CheckRedeemable(now); err != nil {
		s.rejected.Add(ctx, 1)
		return nil, err
	}

	redeemed, err := s.store.Redeem(ctx, cupon.ID, domain.DateOf(now))
	if err != nil {
		return nil, err
	}

	if redeemed == nil {
		// Lost a race; report whichever guard fails now.
		current, err := s.store.GetByID(ctx, cupon.ID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, domain.Errorf(domain.ErrNotFound, "cupon with codigo %s not found", cupon.Codigo)
		}
		if err := current.CheckRedeemable(now); err != nil {
			s.rejected.Add(ctx, 1)
			return nil, err
		}
		return nil, domain.Errorf(domain.ErrConflict, "cupon was modified concurrently")
	}

	s.redeemed.Add(ctx, 1)
	s.publish(ctx, domain.EventCuponRedeemed, redeemed)
	return redeemed, nil
}

func (s *Service) Disable(ctx context.Context, id string) (*domain.Cupon, error) {
	cupon, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cupon.Disable(); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, cupon); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventCuponDisabled, cupon)
	return cupon, nil
}

func (s *Service) Enable(ctx context.Context, id string) (*domain.Cupon, error) {
	cupon, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cupon.Enable(); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, cupon); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventCuponEnabled, cupon)
	return cupon, nil
}

// publish keys events by cupon id, which survives a codigo change.
func (s *Service) publish(ctx context.Context, eventType domain.EventType, cupon *domain.Cupon) {
	if s.publisher == nil {
		return
	}
	event := domain.CuponEvent{
		Type:      eventType,
		CuponID:   cupon.ID,
		Codigo:    cupon.Codigo,
		UsoActual: cupon.UsoActual,
		UsoMaximo: cupon.UsoMaximo,
		Activo:    cupon.Activo,
		Timestamp: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, cupon.ID, event); err != nil {
		s.logger.Error("failed to publish cupon event", "error", err, "cupon_id", cupon.ID, "type", eventType)
	}
}
