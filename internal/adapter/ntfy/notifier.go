// Package ntfy delivers notifications through an ntfy server
// (https://docs.ntfy.sh/publish/).
package ntfy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/run-advisory-service/internal/domain"
)

const DefaultBaseURL = "https://ntfy.sh"

// Notifier publishes plain-text messages to <baseURL>/<topic>.
type Notifier struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewNotifier creates an ntfy publisher. token is optional and sent as a
// bearer token for protected topics.
func NewNotifier(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Notifier {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Notifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Notify publishes msg. Any non-2xx response is an error.
func (n *Notifier) Notify(ctx context.Context, msg domain.Notification) error {
	u := n.baseURL + "/" + url.PathEscape(msg.Topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(msg.Message))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.Title != "" {
		req.Header.Set("Title", msg.Title)
	}
	req.Header.Set("Tags", tagsFor(msg.Icon))
	req.Header.Set("Priority", priorityFor(msg.Icon))
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ntfy publish: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ntfy API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	n.logger.Debug("notification published", "topic", msg.Topic, "status", resp.StatusCode)
	return nil
}

// tagsFor maps the verdict icon to ntfy emoji short codes.
func tagsFor(icon domain.Icon) string {
	switch icon {
	case domain.IconSevere:
		return "red_circle,runner"
	case domain.IconModerate:
		return "yellow_circle,runner"
	default:
		return "green_circle,runner"
	}
}

// priorityFor raises the push priority when the runner should stay inside.
func priorityFor(icon domain.Icon) string {
	switch icon {
	case domain.IconSevere:
		return "high"
	case domain.IconModerate:
		return "default"
	default:
		return "low"
	}
}
