package services

import (
	"context"
	"time"

	"pos-service/internal/domain"
	"pos-service/internal/report"
	"pos-service/internal/repository"
)

type ReportService struct {
	orders       repository.OrderRepository
	yearlyTarget int64
}

func NewReportService(orders repository.OrderRepository, yearlyTarget int64) *ReportService {
	return &ReportService{orders: orders, yearlyTarget: yearlyTarget}
}

func (s *ReportService) completed(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx, repository.OrderFilter{
		Statuses:    []domain.OrderStatus{domain.StatusCompleted},
		NewestFirst: true,
	})
}

// Income reports as of asOf; callers pass the clock explicitly.
func (s *ReportService) Income(ctx context.Context, period report.Period, asOf time.Time) (*report.Income, error) {
	orders, err := s.completed(ctx)
	if err != nil {
		return nil, err
	}
	r := report.IncomeReport(orders, period, asOf, s.yearlyTarget)
	return &r, nil
}

func (s *ReportService) Transactions(ctx context.Context) ([]report.Transaction, error) {
	orders, err := s.completed(ctx)
	if err != nil {
		return nil, err
	}
	return report.Transactions(orders), nil
}
