package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/backoffice-api/internal/domain"
	"github.com/joao-fontenele/backoffice-api/internal/messaging"
)

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// OrderNotifier turns order lifecycle events into customer emails.
type OrderNotifier struct {
	emailServiceURL string
	recipientDomain string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewOrderNotifier(emailServiceURL, recipientDomain string, client *http.Client, logger *slog.Logger) *OrderNotifier {
	return &OrderNotifier{
		emailServiceURL: strings.TrimSuffix(emailServiceURL, "/"),
		recipientDomain: recipientDomain,
		httpClient:      client,
		logger:          logger,
	}
}

func (n *OrderNotifier) Handle(ctx context.Context, msg messaging.Message) error {
	var event domain.OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("unmarshal order event: %w", err)
	}

	var email Email
	switch event.Type {
	case domain.EventOrderCreated:
		email = Email{
			To:      n.recipient(event.Cliente),
			Subject: "Order Confirmation: " + event.OrderID,
			Body: fmt.Sprintf("Hola %s, your order %s for %s was received. Total: %.2f.",
				event.Cliente, event.OrderID, event.Producto, event.Total),
		}
	case domain.EventOrderCancelled:
		email = Email{
			To:      n.recipient(event.Cliente),
			Subject: "Order Cancelled: " + event.OrderID,
			Body:    fmt.Sprintf("Hola %s, your order %s for %s has been cancelled.", event.Cliente, event.OrderID, event.Producto),
		}
	default:
		n.logger.Debug("ignoring order event", "type", event.Type, "order_id", event.OrderID)
		return nil
	}

	if err := n.send(ctx, email); err != nil {
		n.logger.Error("failed to send email", "error", err, "order_id", event.OrderID, "type", event.Type)
		return fmt.Errorf("send %s email: %w", event.Type, err)
	}

	n.logger.Info("notification sent", "order_id", event.OrderID, "type", event.Type, "to", email.To)
	return nil
}

// recipient derives a mailbox from the customer name, e.g. "Ana Gómez" -> "ana.gómez@example.com".
func (n *OrderNotifier) recipient(cliente string) string {
	local := strings.Join(strings.Fields(strings.ToLower(cliente)), ".")
	return local + "@" + n.recipientDomain
}

func (n *OrderNotifier) send(ctx context.Context, email Email) error {
	data, err := json.Marshal(email)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}
