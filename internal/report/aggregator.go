// Package report derives income summaries from completed orders. Nothing here
// is persisted; every result is computed from the orders passed in.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pos-service/internal/domain"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodYear, nil
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", domain.NewValidationError("period", "must be day, week, month or year")
}

// Summary splits income and quantity between food and drink categories.
type Summary struct {
	FoodQty     int64 `json:"foodQty"`
	FoodIncome  int64 `json:"foodIncome"`
	DrinkQty    int64 `json:"drinkQty"`
	DrinkIncome int64 `json:"drinkIncome"`
	Total       int64 `json:"total"`
	OrderCount  int64 `json:"orderCount"`
}

type Bucket struct {
	Name   string    `json:"name"`
	Start  time.Time `json:"start"`
	Income int64     `json:"income"`
	Target int64     `json:"target"`
}

type Target struct {
	Percentage int64 `json:"percentage"`
	Current    int64 `json:"current"`
	Total      int64 `json:"total"`
}

type Stats struct {
	Day   Summary `json:"day"`
	Week  Summary `json:"week"`
	Month Summary `json:"month"`
	Year  Summary `json:"year"`
}

type Income struct {
	Period    Period    `json:"period"`
	AsOf      time.Time `json:"asOf"`
	ChartData []Bucket  `json:"chartData"`
	Target    Target    `json:"target"`
	Stats     Stats     `json:"stats"`
}

// TargetProgress is round(income/target*100). It is not clamped and is 0 when
// no target is set.
func TargetProgress(yearlyIncome, yearlyTarget int64) int64 {
	if yearlyTarget <= 0 {
		return 0
	}
	return decimal.NewFromInt(yearlyIncome).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(yearlyTarget)).
		Round(0).
		IntPart()
}

// Summarize folds the items of the given orders into a food/drink split.
func Summarize(orders []domain.Order) Summary {
	var s Summary
	for _, o := range orders {
		s.OrderCount++
		for _, it := range o.Items {
			qty := int64(it.Quantity)
			if it.IsDrink() {
				s.DrinkQty += qty
				s.DrinkIncome += it.Subtotal()
			} else {
				s.FoodQty += qty
				s.FoodIncome += it.Subtotal()
			}
		}
	}
	s.Total = s.FoodIncome + s.DrinkIncome
	return s
}

// IncomeReport buckets the COMPLETED orders among orders by period, as seen at
// asOf. Orders created after asOf are ignored. Calendar boundaries use asOf's
// location.
func IncomeReport(orders []domain.Order, period Period, asOf time.Time, yearlyTarget int64) Income {
	loc := asOf.Location()
	dayStart := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, loc)
	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, loc)
	yearStart := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, loc)
	weekStart := asOf.Add(-7 * 24 * time.Hour)

	completed := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == domain.StatusCompleted && !o.CreatedAt.After(asOf) {
			completed = append(completed, o)
		}
	}

	year := since(completed, yearStart)
	stats := Stats{
		Day:   Summarize(since(completed, dayStart)),
		Week:  Summarize(since(completed, weekStart)),
		Month: Summarize(since(completed, monthStart)),
		Year:  Summarize(year),
	}

	var yearlyIncome int64
	for _, o := range year {
		yearlyIncome += o.Total
	}

	return Income{
		Period:    period,
		AsOf:      asOf,
		ChartData: buckets(completed, period, asOf, yearlyTarget),
		Target: Target{
			Percentage: TargetProgress(yearlyIncome, yearlyTarget),
			Current:    yearlyIncome,
			Total:      yearlyTarget,
		},
		Stats: stats,
	}
}

func since(orders []domain.Order, from time.Time) []domain.Order {
	var out []domain.Order
	for _, o := range orders {
		if !o.CreatedAt.Before(from) {
			out = append(out, o)
		}
	}
	return out
}

// buckets lays out the chart: hours of the day, the last seven days, days of
// the month or months of the year. Each bucket target is the yearly target
// spread evenly over the bucket size.
func buckets(orders []domain.Order, period Period, asOf time.Time, yearlyTarget int64) []Bucket {
	loc := asOf.Location()
	var starts []time.Time
	var names []string
	var target int64

	switch period {
	case PeriodDay:
		day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, loc)
		for h := 0; h < 24; h++ {
			starts = append(starts, day.Add(time.Duration(h)*time.Hour))
			names = append(names, fmt.Sprintf("%02d:00", h))
		}
		target = yearlyTarget / (daysIn(asOf.Year()) * 24)
	case PeriodWeek:
		today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, loc)
		for d := 6; d >= 0; d-- {
			start := today.AddDate(0, 0, -d)
			starts = append(starts, start)
			names = append(names, start.Format("Mon 02"))
		}
		target = yearlyTarget / daysIn(asOf.Year())
	case PeriodMonth:
		first := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, loc)
		for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
			starts = append(starts, d)
			names = append(names, d.Format("02"))
		}
		target = yearlyTarget / daysIn(asOf.Year())
	default:
		for m := time.January; m <= time.December; m++ {
			start := time.Date(asOf.Year(), m, 1, 0, 0, 0, 0, loc)
			starts = append(starts, start)
			names = append(names, start.Format("Jan"))
		}
		target = yearlyTarget / 12
	}

	out := make([]Bucket, len(starts))
	for i := range starts {
		out[i] = Bucket{Name: names[i], Start: starts[i], Target: target}
	}
	end := nextStart(period, starts[len(starts)-1])
	for _, o := range orders {
		at := o.CreatedAt.In(loc)
		if at.Before(starts[0]) || !at.Before(end) {
			continue
		}
		// last bucket whose start is not after the order
		for i := len(starts) - 1; i >= 0; i-- {
			if !at.Before(starts[i]) {
				out[i].Income += o.Total
				break
			}
		}
	}
	return out
}

func nextStart(period Period, last time.Time) time.Time {
	switch period {
	case PeriodDay:
		return last.Add(time.Hour)
	case PeriodWeek, PeriodMonth:
		return last.AddDate(0, 0, 1)
	}
	return last.AddDate(0, 1, 0)
}

func daysIn(year int) int64 {
	return int64(time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay())
}

// Transaction is one row of the completed-orders listing.
type Transaction struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Qty        int64     `json:"qty"`
	Income     int64     `json:"income"`
	FoodCount  int64     `json:"foodCount"`
	DrinkCount int64     `json:"drinkCount"`
	Date       time.Time `json:"date"`
}

// Transactions lists completed orders in the order given.
func Transactions(orders []domain.Order) []Transaction {
	out := make([]Transaction, 0, len(orders))
	for _, o := range orders {
		if o.Status != domain.StatusCompleted {
			continue
		}
		s := Summarize([]domain.Order{o})
		out = append(out, Transaction{
			ID:         o.ID,
			Name:       fmt.Sprintf("Order #%d", o.ID),
			Qty:        s.FoodQty + s.DrinkQty,
			Income:     o.Total,
			FoodCount:  s.FoodQty,
			DrinkCount: s.DrinkQty,
			Date:       o.CreatedAt,
		})
	}
	return out
}
