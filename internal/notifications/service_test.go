package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"performersync/internal/config"
	"performersync/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventRunCompleted, notifications.Payload{"updated": 1}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "run completed",
			event: notifications.EventRunCompleted,
			payload: notifications.Payload{
				"command":  "run",
				"updated":  12,
				"merged":   3,
				"changes":  15,
				"duration": 95 * time.Second,
			},
			expectTitle:   "performersync - Run Complete",
			expectMessage: "run finished: 12 updated, 3 merged in 1m35s",
			expectTags:    "performersync,run,completed",
		},
		{
			name:  "dry run with errors",
			event: notifications.EventRunCompleted,
			payload: notifications.Payload{
				"command": "dedup",
				"merged":  2,
				"errors":  1,
				"changes": 2,
				"dryRun":  true,
			},
			expectTitle:   "performersync - Dry Run Complete (with errors)",
			expectMessage: "dedup finished: 0 updated, 2 merged, 1 errors (dry run, nothing written)",
			expectTags:    "performersync,dedup,completed,dry-run,warning",
		},
		{
			name:  "run failed",
			event: notifications.EventRunFailed,
			payload: notifications.Payload{
				"status": "configuration_missing",
				"error":  errors.New("no stash-box matching javstash is configured"),
			},
			expectTitle:    "performersync - Error",
			expectMessage:  "Run failed (configuration_missing): no stash-box matching javstash is configured",
			expectTags:     "performersync,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "performersync - Test",
			expectMessage:  "Notification system test",
			expectTags:     "performersync,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceSuppressesDisabledEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for suppressed event: %s", r.Header.Get("Title"))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Errors = false
	cfg.Notifications.MinChanges = 5

	svc := notifications.NewService(&cfg)
	cases := []struct {
		event   notifications.Event
		payload notifications.Payload
	}{
		{notifications.EventRunCompleted, notifications.Payload{"changes": 4}},
		{notifications.EventRunFailed, notifications.Payload{"error": errors.New("boom")}},
		{notifications.Event("unknown"), nil},
	}
	for _, tc := range cases {
		if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
			t.Fatalf("expected no error for suppressed event %s, got %v", tc.event, err)
		}
	}
}

func TestNtfyServiceReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic closed", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
}
