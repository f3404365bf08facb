package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joao-fontenele/backoffice-api/internal/domain"
	"github.com/joao-fontenele/backoffice-api/internal/messaging"
)

type emailSink struct {
	mu     sync.Mutex
	emails []Email
	status int
}

func (s *emailSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/send" || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var e Email
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.emails = append(s.emails, e)
	s.mu.Unlock()
	if s.status != 0 {
		w.WriteHeader(s.status)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func newNotifier(t *testing.T, sink *emailSink) *OrderNotifier {
	t.Helper()
	srv := httptest.NewServer(sink)
	t.Cleanup(srv.Close)
	return NewOrderNotifier(srv.URL+"/", "example.com", srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func eventMessage(t *testing.T, eventType domain.EventType) messaging.Message {
	t.Helper()
	order := &domain.Order{
		ID:       "order-1",
		Producto: "Laptop ASUS ROG",
		Cliente:  "Ana  Gómez",
		Total:    1999.99,
		Estado:   domain.OrderStatusPending,
	}
	data, err := json.Marshal(domain.NewOrderEvent(eventType, order, time.Now()))
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return messaging.Message{Topic: messaging.TopicOrderEvents, Key: order.ID, Value: data}
}

func TestOrderNotifier_Handle(t *testing.T) {
	t.Run("created sends a confirmation", func(t *testing.T) {
		sink := &emailSink{}
		n := newNotifier(t, sink)

		if err := n.Handle(context.Background(), eventMessage(t, domain.EventOrderCreated)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sink.emails) != 1 {
			t.Fatalf("expected 1 email, got %d", len(sink.emails))
		}
		e := sink.emails[0]
		if e.To != "ana.gómez@example.com" {
			t.Errorf("unexpected recipient %q", e.To)
		}
		if e.Subject != "Order Confirmation: order-1" {
			t.Errorf("unexpected subject %q", e.Subject)
		}
		if !strings.Contains(e.Body, "1999.99") {
			t.Errorf("expected total in body, got %q", e.Body)
		}
	})

	t.Run("cancelled sends a cancellation", func(t *testing.T) {
		sink := &emailSink{}
		n := newNotifier(t, sink)

		if err := n.Handle(context.Background(), eventMessage(t, domain.EventOrderCancelled)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sink.emails) != 1 || sink.emails[0].Subject != "Order Cancelled: order-1" {
			t.Fatalf("unexpected emails %+v", sink.emails)
		}
	})

	t.Run("other events are ignored", func(t *testing.T) {
		sink := &emailSink{}
		n := newNotifier(t, sink)

		for _, et := range []domain.EventType{domain.EventOrderUpdated, domain.EventOrderDeleted} {
			if err := n.Handle(context.Background(), eventMessage(t, et)); err != nil {
				t.Fatalf("%s: unexpected error: %v", et, err)
			}
		}
		if len(sink.emails) != 0 {
			t.Errorf("expected no emails, got %d", len(sink.emails))
		}
	})

	t.Run("email service failure is returned", func(t *testing.T) {
		sink := &emailSink{status: http.StatusServiceUnavailable}
		n := newNotifier(t, sink)

		if err := n.Handle(context.Background(), eventMessage(t, domain.EventOrderCreated)); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		n := newNotifier(t, &emailSink{})
		if err := n.Handle(context.Background(), messaging.Message{Value: []byte("{")}); err == nil {
			t.Fatal("expected error")
		}
	})
}
