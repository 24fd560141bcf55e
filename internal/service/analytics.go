package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const (
	salesWindowDays = 7
	dayLayout       = "2006-01-02"
)

type AnalyticsService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

func (s *AnalyticsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AnalyticsService) Dashboard(ctx context.Context) (*transport.AnalyticsResponse, error) {
	users, err := s.Repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.Repo.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.Repo.SalesTotals(ctx)
	if err != nil {
		return nil, err
	}
	daily, err := s.DailySales(ctx)
	if err != nil {
		return nil, err
	}

	return &transport.AnalyticsResponse{
		AnalyticsData: transport.AnalyticsData{
			Users:        users,
			Products:     products,
			TotalSales:   totals.TotalSales,
			TotalRevenue: totals.TotalRevenue,
		},
		DailySalesData: daily,
	}, nil
}

// DailySales covers the last seven UTC days including today. Days without
// orders are reported with zero sales.
func (s *AnalyticsService) DailySales(ctx context.Context) ([]transport.DailySales, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(salesWindowDays - 1))
	to := today.AddDate(0, 0, 1)

	rows, err := s.Repo.OrderAmountsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		sales   int64
		revenue decimal.Decimal
	}
	buckets := make(map[string]*bucket, salesWindowDays)
	for _, r := range rows {
		key := r.CreatedAt.UTC().Format(dayLayout)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.sales++
		b.revenue = b.revenue.Add(decimal.NewFromFloat(r.TotalAmount))
	}

	out := make([]transport.DailySales, 0, salesWindowDays)
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		day := transport.DailySales{Date: d.Format(dayLayout)}
		if b, ok := buckets[day.Date]; ok {
			day.Sales = b.sales
			day.Revenue = b.revenue.InexactFloat64()
		}
		out = append(out, day)
	}
	return out, nil
}
