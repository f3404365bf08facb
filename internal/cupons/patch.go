package cupons

import (
	"time"

	"github.com/joao-fontenele/backoffice-api/internal/domain"
)

// CuponPatch carries the fields a client sent. Nil means "not supplied".
type CuponPatch struct {
	Codigo          *string      `json:"codigo"`
	Descuento       *float64     `json:"descuento"`
	FechaExpiracion *domain.Date `json:"fechaExpiracion"`
	Activo          *bool        `json:"activo"`
	UsoMaximo       *int         `json:"usoMaximo"`
	UsoActual       *int         `json:"usoActual"`
}

func (p CuponPatch) requireCreateFields() error {
	switch {
	case p.Codigo == nil:
		return domain.Errorf(domain.ErrInvalid, "codigo is required")
	case p.Descuento == nil:
		return domain.Errorf(domain.ErrInvalid, "descuento is required")
	case p.FechaExpiracion == nil:
		return domain.Errorf(domain.ErrInvalid, "fechaExpiracion is required")
	case p.UsoMaximo == nil:
		return domain.Errorf(domain.ErrInvalid, "usoMaximo is required")
	}
	return nil
}

func (p CuponPatch) validate(now time.Time) error {
	if p.Codigo != nil && domain.NormalizeCodigo(*p.Codigo) == "" {
		return domain.Errorf(domain.ErrInvalid, "codigo must not be empty")
	}
	if p.Descuento != nil && (*p.Descuento < 0 || *p.Descuento > 100) {
		return domain.Errorf(domain.ErrInvalid, "descuento must be between 0 and 100")
	}
	if p.UsoMaximo != nil && *p.UsoMaximo <= 0 {
		return domain.Errorf(domain.ErrInvalid, "usoMaximo must be greater than 0")
	}
	if p.UsoActual != nil && *p.UsoActual < 0 {
		return domain.Errorf(domain.ErrInvalid, "usoActual must not be negative")
	}
	if p.FechaExpiracion != nil && p.FechaExpiracion.BeforeDay(now) {
		return domain.Errorf(domain.ErrInvalid, "fechaExpiracion cannot be in the past")
	}
	return nil
}

// ApplyTo copies every supplied field onto cupon, normalizing the code.
func (p CuponPatch) ApplyTo(cupon *domain.Cupon) {
	if p.Codigo != nil {
		cupon.Codigo = domain.NormalizeCodigo(*p.Codigo)
	}
	if p.Descuento != nil {
		cupon.Descuento = *p.Descuento
	}
	if p.FechaExpiracion != nil {
		cupon.FechaExpiracion = *p.FechaExpiracion
	}
	if p.Activo != nil {
		cupon.Activo = *p.Activo
	}
	if p.UsoMaximo != nil {
		cupon.UsoMaximo = *p.UsoMaximo
	}
	if p.UsoActual != nil {
		cupon.UsoActual = *p.UsoActual
	}
}
