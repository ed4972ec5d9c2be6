package prices

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository stores the current price snapshot.
type Repository interface {
	ReplaceAll(ctx context.Context, items []*PriceItem) (int, error)
	List(ctx context.Context) ([]*PriceItem, error)
}

// NewPriceItemRepository creates the generic repository for price items.
func NewPriceItemRepository(db *bun.DB) repository.Repository[*PriceItem] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*PriceItem]{
		NewRecord:          func() *PriceItem { return &PriceItem{} },
		GetID:              func(p *PriceItem) uuid.UUID { return p.ID },
		SetID:              func(p *PriceItem, id uuid.UUID) { p.ID = id },
		GetIdentifier:      func() string { return "symbol" },
		GetIdentifierValue: func(p *PriceItem) string { return p.Symbol },
	})
}

type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*PriceItem]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, repo: NewPriceItemRepository(db)}
}

// ReplaceAll swaps the whole table for items in one transaction, so readers
// never see a partial snapshot.
func (r *BunRepository) ReplaceAll(ctx context.Context, items []*PriceItem) (int, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*PriceItem)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&items).Exec(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("price repository error: %w", err)
	}
	return len(items), nil
}

func (r *BunRepository) List(ctx context.Context) ([]*PriceItem, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.symbol ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("price repository error: %w", err)
	}
	if records == nil {
		records = []*PriceItem{}
	}
	return records, nil
}
