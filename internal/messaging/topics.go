package messaging

const (
	TopicOrderEvents = "order.events"
	TopicCuponEvents = "cupon.events"
)
