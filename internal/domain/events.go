package domain

import "time"

type EventType string

const (
	EventOrderCreated   EventType = "order.created"
	EventOrderUpdated   EventType = "order.updated"
	EventOrderCancelled EventType = "order.cancelled"
	EventOrderDeleted   EventType = "order.deleted"
	EventCuponCreated   EventType = "cupon.created"
	EventCuponUpdated   EventType = "cupon.updated"
	EventCuponDeleted   EventType = "cupon.deleted"
	EventCuponRedeemed  EventType = "cupon.redeemed"
	EventCuponDisabled  EventType = "cupon.disabled"
	EventCuponEnabled   EventType = "cupon.enabled"
)

type OrderEvent struct {
	Type      EventType   `json:"type"`
	OrderID   string      `json:"order_id"`
	Producto  string      `json:"producto,omitempty"`
	Cliente   string      `json:"cliente,omitempty"`
	Total     float64     `json:"total"`
	Estado    OrderStatus `json:"estado,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewOrderEvent(eventType EventType, order *Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:      eventType,
		OrderID:   order.ID,
		Producto:  order.Producto,
		Cliente:   order.Cliente,
		Total:     order.Total,
		Estado:    order.Estado,
		Timestamp: at.UTC(),
	}
}

type CuponEvent struct {
	Type      EventType `json:"type"`
	CuponID   string    `json:"cupon_id"`
	Codigo    string    `json:"codigo"`
	UsoActual int       `json:"uso_actual"`
	UsoMaximo int       `json:"uso_maximo"`
	Activo    bool      `json:"activo"`
	Timestamp time.Time `json:"timestamp"`
}
