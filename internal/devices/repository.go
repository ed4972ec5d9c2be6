package devices

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository stores device logs.
type Repository interface {
	Create(ctx context.Context, log *DeviceLog) (*DeviceLog, error)
	List(ctx context.Context, filter LogFilter) ([]*DeviceLog, int, error)
}

// NewDeviceLogRepository creates the generic repository for device logs.
func NewDeviceLogRepository(db *bun.DB) repository.Repository[*DeviceLog] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*DeviceLog]{
		NewRecord:          func() *DeviceLog { return &DeviceLog{} },
		GetID:              func(l *DeviceLog) uuid.UUID { return l.ID },
		SetID:              func(l *DeviceLog, id uuid.UUID) { l.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(l *DeviceLog) string { return l.ID.String() },
	})
}

type BunRepository struct {
	repo repository.Repository[*DeviceLog]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{repo: NewDeviceLogRepository(db)}
}

func (r *BunRepository) Create(ctx context.Context, log *DeviceLog) (*DeviceLog, error) {
	created, err := r.repo.Create(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("device log repository error: %w", err)
	}
	return created, nil
}

func (r *BunRepository) List(ctx context.Context, filter LogFilter) ([]*DeviceLog, int, error) {
	criteria := []repository.SelectCriteria{
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if filter.UserID != nil {
				q = q.Where("?TableAlias.user_id = ?", *filter.UserID)
			}
			if platform := strings.TrimSpace(filter.Platform); platform != "" {
				q = q.Where("?TableAlias.platform = ?", platform)
			}
			return q.OrderExpr("?TableAlias.created_at DESC")
		}),
	}
	if filter.Limit > 0 {
		criteria = append(criteria, repository.SelectPaginate(filter.Limit, filter.Offset))
	}
	records, total, err := r.repo.List(ctx, criteria...)
	if err != nil {
		return nil, 0, fmt.Errorf("device log repository error: %w", err)
	}
	return records, total, nil
}
