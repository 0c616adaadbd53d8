package services

import (
	"log/slog"
	"math"
	"time"

	"bike-analytics/internal/models"
)

const (
	trendUp   = "up"
	trendDown = "down"

	formatNumber     = "number"
	formatCurrency   = "currency"
	formatPercentage = "percentage"
)

// KPIService derives the comparative dashboard KPIs: each metric is computed
// for the current filter and for a previous comparison period, with a change
// figure and trend direction.
type KPIService struct {
	analytics *Analytics
	logger    *slog.Logger

	// now is injectable so the previous-year default window is testable.
	now func() time.Time
}

func NewKPIService(analytics *Analytics, logger *slog.Logger) *KPIService {
	if logger == nil {
		logger = slog.Default()
	}
	return &KPIService{
		analytics: analytics,
		logger:    logger,
		now:       time.Now,
	}
}

type periodTotals struct {
	revenue float64
	profit  float64
	orders  int
}

func (s *KPIService) totals(records []models.SalesRecord) periodTotals {
	var t periodTotals
	for _, r := range records {
		t.revenue += r.Revenue
		t.profit += r.Profit
	}
	t.orders = len(records)
	return t
}

// MainKPIs returns the six dashboard KPIs in fixed order: Total Revenue,
// Total Profit, Total Orders, Avg Order Value, Profit Margin, Customer
// Satisfaction.
func (s *KPIService) MainKPIs(f *models.Filter) []models.KPI {
	current := s.analytics.Filtered(f)
	previous := s.analytics.Filtered(s.previousPeriod(f))

	cur := s.totals(current)
	prev := s.totals(previous)

	revenueChange := percentChange(cur.revenue, prev.revenue)
	profitChange := percentChange(cur.profit, prev.profit)
	ordersChange := percentChange(float64(cur.orders), float64(prev.orders))

	curAOV := meanOrderValue(cur)
	prevAOV := meanOrderValue(prev)
	aovChange := percentChange(curAOV, prevAOV)

	// Margin and satisfaction compare as point differences, not
	// percent-of-percent.
	curMargin := margin(cur)
	marginChange := curMargin - margin(prev)

	curSat := s.customerSatisfaction(current)
	satChange := curSat - s.customerSatisfaction(previous)

	return []models.KPI{
		{Name: "Total Revenue", Value: cur.revenue, Change: revenueChange, Trend: trend(revenueChange), FormatType: formatCurrency},
		{Name: "Total Profit", Value: cur.profit, Change: profitChange, Trend: trend(profitChange), FormatType: formatCurrency},
		{Name: "Total Orders", Value: float64(cur.orders), Change: ordersChange, Trend: trend(ordersChange), FormatType: formatNumber},
		{Name: "Avg Order Value", Value: curAOV, Change: aovChange, Trend: trend(aovChange), FormatType: formatCurrency},
		{Name: "Profit Margin", Value: curMargin, Change: marginChange, Trend: trend(marginChange), FormatType: formatPercentage},
		{Name: "Customer Satisfaction", Value: curSat, Change: satChange, Trend: trend(satChange), FormatType: formatPercentage},
	}
}

// previousPeriod derives the comparison filter. With an explicit date range,
// both bounds shift back by the range's duration; otherwise the window is
// the full previous calendar year. All other dimensions carry over.
func (s *KPIService) previousPeriod(f *models.Filter) *models.Filter {
	prev := models.Filter{}
	if f != nil {
		prev = *f
	}

	if f != nil && f.StartDate != nil && f.EndDate != nil {
		duration := f.EndDate.Sub(*f.StartDate)
		start := f.StartDate.Add(-duration)
		end := f.EndDate.Add(-duration)
		prev.StartDate = &start
		prev.EndDate = &end
		return &prev
	}

	year := s.now().Year() - 1
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	prev.StartDate = &start
	prev.EndDate = &end
	return &prev
}

// customerSatisfaction is a heuristic proxy derived from the repeat-customer
// rate: min(100, rate*80 + 20), rounded to 1 decimal, 0 for an empty window.
// Not a real satisfaction signal; preserved for dashboard compatibility.
func (s *KPIService) customerSatisfaction(records []models.SalesRecord) float64 {
	if len(records) == 0 {
		return 0
	}

	counts := make(map[models.CustomerKey]int)
	for _, r := range records {
		counts[s.analytics.identity(r)]++
	}

	repeat := 0
	for _, n := range counts {
		if n > 1 {
			repeat++
		}
	}

	rate := 0.0
	if len(counts) > 0 {
		rate = float64(repeat) / float64(len(counts))
	}
	return round1(math.Min(100, rate*80+20))
}

// PerformanceMetrics bundles secondary operational numbers. Visitor counts,
// conversion rate, CPA scaling and the operational block are simulated
// placeholders, flagged as such in the response.
func (s *KPIService) PerformanceMetrics(f *models.Filter) models.PerformanceMetrics {
	records := s.analytics.Filtered(f)

	perCustomer := make(map[models.CustomerKey]float64)
	var profit, cost float64
	for _, r := range records {
		perCustomer[s.analytics.identity(r)] += r.Revenue
		profit += r.Profit
		cost += r.Cost
	}

	var revenuePerCustomer float64
	if len(perCustomer) > 0 {
		var total float64
		for _, v := range perCustomer {
			total += v
		}
		revenuePerCustomer = total / float64(len(perCustomer))
	}

	var profitPerOrder, costPerAcquisition float64
	if len(records) > 0 {
		profitPerOrder = profit / float64(len(records))
		costPerAcquisition = cost / float64(len(records)) * 0.1
	}

	return models.PerformanceMetrics{
		ConversionMetrics: models.ConversionMetrics{
			TotalVisitors:  len(records) * 3,
			TotalOrders:    len(records),
			ConversionRate: 33.3,
		},
		FinancialMetrics: models.FinancialMetrics{
			RevenuePerCustomer: revenuePerCustomer,
			ProfitPerOrder:     profitPerOrder,
			CostPerAcquisition: costPerAcquisition,
		},
		OperationalMetrics: models.OperationalMetrics{
			AvgOrderProcessingTime: 2.5,
			InventoryTurnover:      8.3,
			ReturnRate:             5.2,
		},
		Simulated: true,
	}
}

func meanOrderValue(t periodTotals) float64 {
	if t.orders == 0 {
		return 0
	}
	return t.revenue / float64(t.orders)
}

func margin(t periodTotals) float64 {
	if t.revenue <= 0 {
		return 0
	}
	return t.profit / t.revenue * 100
}

// percentChange guards against a zero or negative base: the change is
// defined as 0 there rather than producing Inf/NaN or a distorted figure.
func percentChange(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// trend reports "up" only for a strictly positive change; zero counts as
// "down" to match the dashboard's existing behavior.
func trend(change float64) string {
	if change > 0 {
		return trendUp
	}
	return trendDown
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
