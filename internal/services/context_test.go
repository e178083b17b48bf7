package services_test

import (
	"context"
	"testing"

	"performersync/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithStage(ctx, "sync")
	ctx = services.WithPerformerID(ctx, "42")

	for name, lookup := range map[string]func(context.Context) (string, bool){
		"run-123": services.RunIDFromContext,
		"sync":    services.StageFromContext,
		"42":      services.PerformerIDFromContext,
	} {
		if got, ok := lookup(ctx); !ok || got != name {
			t.Fatalf("lookup = %q, %v; want %q", got, ok, name)
		}
	}
}

func TestBlankValueKeepsOuterAnnotation(t *testing.T) {
	ctx := services.WithStage(context.Background(), "pre-merge")
	ctx = services.WithStage(ctx, "")
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "pre-merge" {
		t.Fatalf("expected outer stage to survive, got %q %v", stage, ok)
	}
	if _, ok := services.RunIDFromContext(context.Background()); ok {
		t.Fatal("expected no run id on a bare context")
	}
}
