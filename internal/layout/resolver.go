package layout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

// Fetcher resolves a single data source. *Dispatcher is the production
// implementation.
type Fetcher interface {
	Fetch(ctx context.Context, ds DataSource) ([]ResolvedItem, error)
}

// Observer receives one call per data-bound row. err is nil on success.
type Observer interface {
	RowResolved(kind Kind, err error, elapsed time.Duration)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for row failures.
func WithLogger(logger interfaces.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logging.Ensure(logger)
	}
}

// WithObserver attaches a row observer, typically metrics.
func WithObserver(observer Observer) ResolverOption {
	return func(r *Resolver) {
		r.observer = observer
	}
}

// WithClock overrides the time source used for row timings.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// Resolver is stateless between calls and safe for concurrent use.
type Resolver struct {
	fetcher  Fetcher
	logger   interfaces.Logger
	observer Observer
	now      func() time.Time
}

func NewResolver(fetcher Fetcher, opts ...ResolverOption) *Resolver {
	if fetcher == nil {
		panic(ErrContentStoreRequired)
	}
	r := &Resolver{
		fetcher: fetcher,
		logger:  logging.NoOp(),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve walks doc["rows"] in order, one row at a time. A nil document or
// one without a rows array yields an empty row list. A row whose data
// source fails gets an empty items list; Resolve itself never fails.
func (r *Resolver) Resolve(ctx context.Context, doc any) Resolved {
	fields, _ := doc.(map[string]any)
	rows, ok := fields[keyRows].([]any)
	if !ok {
		return Resolved{Rows: []any{}}
	}

	out := make([]any, 0, len(rows))
	for index, row := range rows {
		out = append(out, r.resolveRow(ctx, index, row))
	}
	return Resolved{Rows: out}
}

// ResolveJSON decodes raw and resolves it. Text that is not valid JSON
// returns ErrInvalidLayout; the literal null resolves to an empty layout.
func (r *Resolver) ResolveJSON(ctx context.Context, raw []byte) (Resolved, error) {
	doc, err := Decode(raw)
	if err != nil {
		return Resolved{}, err
	}
	return r.Resolve(ctx, doc), nil
}

// Decode parses a stored layout_json value, keeping numbers as json.Number.
func Decode(raw []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidLayout)
	}
	return doc, nil
}

func (r *Resolver) resolveRow(ctx context.Context, index int, row any) any {
	fields, ok := row.(map[string]any)
	if !ok {
		return row
	}
	raw, bound := fields[keyDataSource]
	if !bound || !truthy(raw) {
		return row
	}

	items, kind, err := r.fetch(ctx, raw)
	if err != nil {
		r.logger.WithContext(ctx).Error("layout.row.resolve_failed",
			"row", index,
			"kind", kind.String(),
			"error", err,
		)
		items = []ResolvedItem{}
	}

	resolved := make(map[string]any, len(fields))
	for key, value := range fields {
		if key == keyDataSource {
			continue
		}
		resolved[key] = value
	}
	resolved[keyItems] = items
	return resolved
}

// fetch is the result-returning half of row resolution: errors are handed
// back to resolveRow, which degrades them to an empty list.
func (r *Resolver) fetch(ctx context.Context, raw any) ([]ResolvedItem, Kind, error) {
	start := r.now()
	ds, err := ParseDataSource(raw)
	if err == nil {
		var items []ResolvedItem
		items, err = r.fetcher.Fetch(ctx, ds)
		if err == nil && items == nil {
			items = []ResolvedItem{}
		}
		r.observe(ds.Type, err, start)
		return items, ds.Type, err
	}
	r.observe(KindUnknown, err, start)
	return nil, KindUnknown, err
}

func (r *Resolver) observe(kind Kind, err error, start time.Time) {
	if r.observer == nil {
		return
	}
	r.observer.RowResolved(kind, err, r.now().Sub(start))
}

// truthy reports whether a dataSource value counts as present. null, false,
// 0 and "" are treated the same as a missing key.
func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	case json.Number:
		f, err := typed.Float64()
		return err != nil || f != 0
	case float64:
		return typed != 0
	case int:
		return typed != 0
	default:
		return true
	}
}
