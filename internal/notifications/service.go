package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"performersync/internal/config"
)

const userAgent = "performersync/0.1.0"

// Event identifies a notification type.
type Event string

const (
	EventRunCompleted Event = "run_completed"
	EventRunFailed    Event = "run_failed"
	EventTest         Event = "test"
)

// Payload carries event details keyed by name.
type Payload map[string]any

// Service publishes notification events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		settings: cfg.Notifications,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	settings config.Notifications
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.render(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) render(event Event, payload Payload) (message, bool) {
	switch event {
	case EventRunCompleted:
		if !n.settings.RunCompleted || intValue(payload, "changes") < n.settings.MinChanges {
			return message{}, false
		}
		return runCompleted(payload), true
	case EventRunFailed:
		if !n.settings.Errors {
			return message{}, false
		}
		return runFailed(payload), true
	case EventTest:
		return message{
			title:    "performersync - Test",
			body:     "Notification system test",
			tags:     []string{"performersync", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func runCompleted(payload Payload) message {
	command := stringValue(payload, "command")
	if command == "" {
		command = "run"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s finished: %d updated, %d merged", command, intValue(payload, "updated"), intValue(payload, "merged"))
	if errs := intValue(payload, "errors"); errs > 0 {
		fmt.Fprintf(&b, ", %d errors", errs)
	}
	if d, ok := payload["duration"].(time.Duration); ok {
		fmt.Fprintf(&b, " in %s", d.Round(time.Second))
	}

	title := "performersync - Run Complete"
	tags := []string{"performersync", command, "completed"}
	if dry, _ := payload["dryRun"].(bool); dry {
		title = "performersync - Dry Run Complete"
		b.WriteString(" (dry run, nothing written)")
		tags = append(tags, "dry-run")
	}
	if intValue(payload, "errors") > 0 {
		title += " (with errors)"
		tags = append(tags, "warning")
	}
	return message{title: title, body: b.String(), tags: tags}
}

func runFailed(payload Payload) message {
	var b strings.Builder
	b.WriteString("Run failed")
	if status := stringValue(payload, "status"); status != "" {
		fmt.Fprintf(&b, " (%s)", status)
	}
	b.WriteString(": ")
	if err, ok := payload["error"].(error); ok && err != nil {
		b.WriteString(strings.TrimSpace(err.Error()))
	} else {
		b.WriteString("unknown")
	}
	return message{
		title:    "performersync - Error",
		body:     b.String(),
		tags:     []string{"performersync", "error", "alert"},
		priority: "high",
	}
}

func stringValue(payload Payload, key string) string {
	if v, ok := payload[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intValue(payload Payload, key string) int {
	if v, ok := payload[key].(int); ok {
		return v
	}
	return 0
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
