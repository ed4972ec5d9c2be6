package cachecmd

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

type countingCache struct{ calls int }

func (c *countingCache) InvalidateCache(context.Context) error {
	c.calls++
	return nil
}

func TestInvalidateAllTargets(t *testing.T) {
	categories, pages := &countingCache{}, &countingCache{}
	handler := NewInvalidateCacheHandler(map[string]Invalidator{
		TargetCategories: categories,
		TargetPages:      pages,
	}, nil)

	if err := handler.Execute(context.Background(), InvalidateCacheCommand{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if categories.calls != 1 || pages.calls != 1 {
		t.Fatalf("expected both caches cleared, got categories=%d pages=%d", categories.calls, pages.calls)
	}
}

func TestInvalidateSingleTarget(t *testing.T) {
	categories, pages := &countingCache{}, &countingCache{}
	handler := NewInvalidateCacheHandler(map[string]Invalidator{
		TargetCategories: categories,
		TargetPages:      pages,
	}, nil)

	if err := handler.Execute(context.Background(), InvalidateCacheCommand{Targets: []string{TargetPages}}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if categories.calls != 0 || pages.calls != 1 {
		t.Fatalf("expected only pages cleared, got categories=%d pages=%d", categories.calls, pages.calls)
	}
}

func TestInvalidateRejectsUnknownTarget(t *testing.T) {
	handler := NewInvalidateCacheHandler(map[string]Invalidator{}, nil)
	err := handler.Execute(context.Background(), InvalidateCacheCommand{Targets: []string{"menus"}})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInvalidateMissingTargetFails(t *testing.T) {
	handler := NewInvalidateCacheHandler(map[string]Invalidator{TargetCategories: &countingCache{}}, nil)
	err := handler.Execute(context.Background(), InvalidateCacheCommand{Targets: []string{TargetPages}})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command error, got %v", err)
	}
}
