package domain

import (
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pendiente"
	OrderStatusProcessing OrderStatus = "procesando"
	OrderStatusShipped    OrderStatus = "enviado"
	OrderStatusDelivered  OrderStatus = "entregado"
	OrderStatusCancelled  OrderStatus = "cancelado"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Order struct {
	ID           string      `json:"id"`
	Producto     string      `json:"producto"`
	Descripcion  string      `json:"descripcion"`
	Cantidad     int         `json:"cantidad"`
	Precio       float64     `json:"precio"`
	Descuento    float64     `json:"descuento"`
	Total        float64     `json:"total"`
	Cliente      string      `json:"cliente"`
	Estado       OrderStatus `json:"estado"`
	FechaEntrega Date        `json:"fechaEntrega"`
	Version      int         `json:"-"`
}

// OrderTotal is the single place an order total is derived:
// cantidad × precio × (1 − descuento/100), rounded to cents.
func OrderTotal(cantidad int, precio, descuento float64) float64 {
	hundred := decimal.NewFromInt(100)
	subtotal := decimal.NewFromFloat(precio).Mul(decimal.NewFromInt(int64(cantidad)))
	factor := hundred.Sub(decimal.NewFromFloat(descuento)).Div(hundred)
	total, _ := subtotal.Mul(factor).Round(2).Float64()
	return total
}

func (o *Order) Recalculate() {
	o.Total = OrderTotal(o.Cantidad, o.Precio, o.Descuento)
}

// Cancel moves the order to cancelado. Delivered and already cancelled
// orders cannot be cancelled.
func (o *Order) Cancel() error {
	switch o.Estado {
	case OrderStatusDelivered:
		return Errorf(ErrRule, "cannot cancel a delivered order")
	case OrderStatusCancelled:
		return Errorf(ErrRule, "order is already cancelled")
	}
	o.Estado = OrderStatusCancelled
	return nil
}
