package notifier

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// Mailbox is a stand-in for the email service in local environments. It
// accepts what OrderNotifier sends and keeps the most recent messages.
type Mailbox struct {
	mu     sync.Mutex
	recent []Email
	limit  int
	logger *slog.Logger
}

func NewMailbox(limit int, logger *slog.Logger) *Mailbox {
	return &Mailbox{limit: limit, logger: logger}
}

func (m *Mailbox) HandleSend(w http.ResponseWriter, r *http.Request) {
	var email Email
	if err := json.NewDecoder(r.Body).Decode(&email); err != nil {
		m.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !strings.Contains(email.To, "@") || email.Subject == "" {
		m.writeError(w, http.StatusBadRequest, "to and subject are required")
		return
	}

	m.mu.Lock()
	m.recent = append(m.recent, email)
	if over := len(m.recent) - m.limit; m.limit > 0 && over > 0 {
		m.recent = m.recent[over:]
	}
	m.mu.Unlock()

	m.logger.Info("email sent", "to", email.To, "subject", email.Subject)
	m.writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (m *Mailbox) HandleList(w http.ResponseWriter, r *http.Request) {
	m.writeJSON(w, http.StatusOK, m.Messages())
}

// Messages returns the kept emails, oldest first.
func (m *Mailbox) Messages() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Email, len(m.recent))
	copy(out, m.recent)
	return out
}

func (m *Mailbox) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		m.logger.Error("failed to encode response", "error", err)
	}
}

func (m *Mailbox) writeError(w http.ResponseWriter, status int, message string) {
	m.writeJSON(w, status, map[string]string{"error": message})
}
