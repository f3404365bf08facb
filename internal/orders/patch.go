package orders

import (
	"strings"
	"time"

	"github.com/joao-fontenele/backoffice-api/internal/domain"
)

// OrderPatch carries the fields a client sent. Nil means "not supplied".
// It is used both for creation, where some fields are required, and for
// partial updates, where only supplied fields are validated and merged.
type OrderPatch struct {
	Producto     *string             `json:"producto"`
	Descripcion  *string             `json:"descripcion"`
	Cantidad     *int                `json:"cantidad"`
	Precio       *float64            `json:"precio"`
	Descuento    *float64            `json:"descuento"`
	Cliente      *string             `json:"cliente"`
	Estado       *domain.OrderStatus `json:"estado"`
	FechaEntrega *domain.Date        `json:"fechaEntrega"`
}

func (p OrderPatch) requireCreateFields() error {
	var missing []string
	if p.Producto == nil {
		missing = append(missing, "producto")
	}
	if p.Descripcion == nil {
		missing = append(missing, "descripcion")
	}
	if p.Cliente == nil {
		missing = append(missing, "cliente")
	}
	if p.Cantidad == nil {
		missing = append(missing, "cantidad")
	}
	if p.Precio == nil {
		missing = append(missing, "precio")
	}
	if p.FechaEntrega == nil {
		missing = append(missing, "fechaEntrega")
	}
	if len(missing) > 0 {
		return domain.Errorf(domain.ErrInvalid, "missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (p OrderPatch) validate(now time.Time) error {
	if p.Producto != nil && !domain.InCatalog(*p.Producto) {
		return domain.Errorf(domain.ErrInvalid, "producto %q is not in the catalog", *p.Producto)
	}
	if p.Descripcion != nil && strings.TrimSpace(*p.Descripcion) == "" {
		return domain.Errorf(domain.ErrInvalid, "descripcion must not be empty")
	}
	if p.Cliente != nil && strings.TrimSpace(*p.Cliente) == "" {
		return domain.Errorf(domain.ErrInvalid, "cliente must not be empty")
	}
	if p.Cantidad != nil && *p.Cantidad <= 0 {
		return domain.Errorf(domain.ErrInvalid, "cantidad must be greater than 0")
	}
	if p.Precio != nil && *p.Precio <= 0 {
		return domain.Errorf(domain.ErrInvalid, "precio must be greater than 0")
	}
	if p.Descuento != nil && (*p.Descuento < 0 || *p.Descuento > 100) {
		return domain.Errorf(domain.ErrInvalid, "descuento must be between 0 and 100")
	}
	if p.Estado != nil && !p.Estado.Valid() {
		return domain.Errorf(domain.ErrInvalid, "invalid estado %q", *p.Estado)
	}
	if p.FechaEntrega != nil && p.FechaEntrega.BeforeDay(now) {
		return domain.Errorf(domain.ErrInvalid, "fechaEntrega cannot be in the past")
	}
	return nil
}

// ApplyTo copies every supplied field onto order. The total is not touched;
// callers recalculate it afterwards.
func (p OrderPatch) ApplyTo(order *domain.Order) {
	if p.Producto != nil {
		order.Producto = *p.Producto
	}
	if p.Descripcion != nil {
		order.Descripcion = strings.TrimSpace(*p.Descripcion)
	}
	if p.Cantidad != nil {
		order.Cantidad = *p.Cantidad
	}
	if p.Precio != nil {
		order.Precio = *p.Precio
	}
	if p.Descuento != nil {
		order.Descuento = *p.Descuento
	}
	if p.Cliente != nil {
		order.Cliente = strings.TrimSpace(*p.Cliente)
	}
	if p.Estado != nil {
		order.Estado = *p.Estado
	}
	if p.FechaEntrega != nil {
		order.FechaEntrega = *p.FechaEntrega
	}
}
