package prices

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/abolfazlirani/asar-backend-app/internal/identity"
	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

const (
	groupGold     = "gold"
	groupCurrency = "currency"
)

var (
	ErrRepositoryRequired = errors.New("prices: repository is required")
	ErrSourceRequired     = errors.New("prices: source is required")
)

// SyncObserver is notified after every sync attempt.
type SyncObserver interface {
	PricesSynced(count int, err error, elapsed time.Duration)
}

type Service interface {
	Sync(ctx context.Context) (int, error)
	ListPrices(ctx context.Context) ([]*PriceItem, error)
}

type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithSyncObserver(observer SyncObserver) ServiceOption {
	return func(s *service) {
		s.observer = observer
	}
}

type service struct {
	repo     Repository
	source   Source
	now      func() time.Time
	logger   interfaces.Logger
	observer SyncObserver
}

// NewService wires the price snapshot store. source may be nil when no
// upstream feed is configured; Sync then returns ErrSourceRequired.
func NewService(repo Repository, source Source, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	s := &service{
		repo:   repo,
		source: source,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync replaces the stored snapshot with the upstream feed. A failed fetch
// leaves the previous snapshot untouched.
func (s *service) Sync(ctx context.Context) (count int, err error) {
	start := s.now()
	logger := s.logger.WithContext(ctx)
	defer func() {
		if s.observer != nil {
			s.observer.PricesSynced(count, err, s.now().Sub(start))
		}
	}()

	if s.source == nil {
		return 0, ErrSourceRequired
	}
	feed, err := s.source.Fetch(ctx)
	if err != nil {
		logger.Error("prices.sync.fetch_failed", "error", err)
		return 0, err
	}

	items := s.itemsFromFeed(feed)
	count, err = s.repo.ReplaceAll(ctx, items)
	if err != nil {
		logger.Error("prices.sync.store_failed", "error", err)
		return 0, err
	}
	logger.Info("prices.sync.completed", "count", count, "duration", s.now().Sub(start).String())
	return count, nil
}

func (s *service) ListPrices(ctx context.Context) ([]*PriceItem, error) {
	return s.repo.List(ctx)
}

// itemsFromFeed flattens gold then currency quotes. Quotes without a symbol
// are skipped and a repeated symbol keeps its last occurrence.
func (s *service) itemsFromFeed(feed *Feed) []*PriceItem {
	if feed == nil {
		return []*PriceItem{}
	}
	stamp := s.now().UTC()
	items := make([]*PriceItem, 0, len(feed.Gold)+len(feed.Currency))
	index := map[string]int{}

	add := func(group string, quotes []Quote) {
		for _, quote := range quotes {
			symbol := strings.TrimSpace(quote.Symbol)
			if symbol == "" {
				continue
			}
			item := &PriceItem{
				ID:         identity.PriceItemUUID(group, symbol),
				Symbol:     symbol,
				Title:      strings.TrimSpace(quote.Name),
				Buy:        float64(quote.Price),
				Sell:       float64(quote.Price),
				LastUpdate: quoteTime(quote.TimeUnix, stamp),
				CreatedAt:  stamp,
			}
			key := item.ID.String()
			if at, ok := index[key]; ok {
				items[at] = item
				continue
			}
			index[key] = len(items)
			items = append(items, item)
		}
	}
	add(groupGold, feed.Gold)
	add(groupCurrency, feed.Currency)
	return items
}

func quoteTime(unix int64, fallback time.Time) time.Time {
	if unix <= 0 {
		return fallback
	}
	return time.Unix(unix, 0).UTC()
}
