package pricescmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/abolfazlirani/asar-backend-app/internal/commands"
	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/internal/prices"
)

// flakyPrices fails the first failures calls to Sync.
type flakyPrices struct {
	calls    int
	failures int
}

func (s *flakyPrices) Sync(context.Context) (int, error) {
	s.calls++
	if s.calls <= s.failures {
		return 0, errors.New("feed unavailable")
	}
	return 4, nil
}

func (s *flakyPrices) ListPrices(context.Context) ([]*prices.PriceItem, error) {
	return nil, nil
}

func TestDispatchedSyncRetriesFeedFailure(t *testing.T) {
	svc := &flakyPrices{failures: 1}
	handler := NewSyncPricesHandler(svc, logging.NoOp(),
		commands.WithTimeout[SyncPricesCommand](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), SyncPricesCommand{Trigger: "cron"}); err != nil {
		t.Fatalf("dispatch: expected sync to succeed on retry, got %v", err)
	}
	if svc.calls != 2 {
		t.Fatalf("expected 2 sync attempts, got %d", svc.calls)
	}
}

func TestDispatchedSyncReportsFeedOutage(t *testing.T) {
	svc := &flakyPrices{failures: 10}
	handler := NewSyncPricesHandler(svc, logging.NoOp(),
		commands.WithTimeout[SyncPricesCommand](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), SyncPricesCommand{Trigger: "admin"}); err == nil {
		t.Fatal("expected dispatch to fail once retries run out")
	}
	if svc.calls != 3 {
		t.Fatalf("expected 3 sync attempts, got %d", svc.calls)
	}
}
