package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
)

type SalesTotals struct {
	TotalSales   int64
	TotalRevenue float64
}

type OrderAmount struct {
	CreatedAt   time.Time
	TotalAmount float64
}

func (r *GormRepo) SalesTotals(ctx context.Context) (SalesTotals, error) {
	var out SalesTotals
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("COUNT(*) AS total_sales, COALESCE(SUM(total_amount), 0) AS total_revenue").
		Scan(&out).Error
	return out, err
}

// OrderAmountsBetween returns the orders created in [from, to).
func (r *GormRepo) OrderAmountsBetween(ctx context.Context, from, to time.Time) ([]OrderAmount, error) {
	var out []OrderAmount
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("created_at, total_amount").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Scan(&out).Error
	return out, err
}
