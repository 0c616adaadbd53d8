package services

import (
	"log/slog"
	"math"
	"slices"

	"bike-analytics/internal/models"
)

// Customer value segment breakpoints: [0,500) low, [500,1500) medium,
// [1500,inf) high. Lower bounds inclusive.
const (
	segmentMediumMin = 500.0
	segmentHighMin   = 1500.0
)

var segmentLabels = []string{"Low Value", "Medium Value", "High Value"}

var monthOrder = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Analytics computes filtered aggregations over the record store. Every call
// rescans the store; there is no cached state, so concurrent requests are
// independent.
type Analytics struct {
	store    *Store
	identity models.CustomerIdentityFunc
	logger   *slog.Logger
}

// NewAnalytics builds the aggregation engine. identity may be nil, in which
// case the (age, gender, country) tuple proxy is used.
func NewAnalytics(store *Store, identity models.CustomerIdentityFunc, logger *slog.Logger) *Analytics {
	if identity == nil {
		identity = models.DefaultCustomerIdentity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{store: store, identity: identity, logger: logger}
}

// Filtered applies the predicate set to the store and returns the matching
// records in their original order. A nil or all-empty filter returns the
// store's records unchanged. Dimensions combine with AND; values within a
// dimension with OR. Unknown values simply match nothing.
func (a *Analytics) Filtered(f *models.Filter) []models.SalesRecord {
	records := a.store.Records()
	if f == nil {
		return records
	}

	countries := toSet(f.Countries)
	ageGroups := toSet(f.AgeGroups)
	categories := toSet(f.ProductCategories)

	if f.StartDate == nil && f.EndDate == nil &&
		countries == nil && ageGroups == nil && categories == nil {
		return records
	}

	out := make([]models.SalesRecord, 0, len(records))
	for _, r := range records {
		if f.StartDate != nil && r.Date.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && r.Date.After(*f.EndDate) {
			continue
		}
		if countries != nil && !countries[r.Country] {
			continue
		}
		if ageGroups != nil && !ageGroups[r.AgeGroup] {
			continue
		}
		if categories != nil && !categories[r.ProductCategory] {
			continue
		}
		out = append(out, r)
	}
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// SummaryStats computes the dashboard headline numbers. The average and the
// margin are defined as 0 when their denominator is 0.
func (a *Analytics) SummaryStats(f *models.Filter) models.SummaryStats {
	records := a.Filtered(f)

	var revenue, profit float64
	customers := make(map[models.CustomerKey]bool)
	for _, r := range records {
		revenue += r.Revenue
		profit += r.Profit
		customers[a.identity(r)] = true
	}

	stats := models.SummaryStats{
		TotalRevenue:   revenue,
		TotalProfit:    profit,
		TotalOrders:    len(records),
		TotalCustomers: len(customers),
	}
	if len(records) > 0 {
		stats.AvgOrderValue = revenue / float64(len(records))
	}
	if revenue > 0 {
		stats.ProfitMargin = profit / revenue * 100
	}
	return stats
}

// RevenueByMonth sums revenue per calendar year-month ("2006-01" keys),
// labels sorted chronologically.
func (a *Analytics) RevenueByMonth(f *models.Filter) models.SeriesData {
	totals := make(map[string]float64)
	for _, r := range a.Filtered(f) {
		totals[r.Date.Format("2006-01")] += r.Revenue
	}

	labels := make([]string, 0, len(totals))
	for period := range totals {
		labels = append(labels, period)
	}
	slices.Sort(labels)

	data := make([]float64, len(labels))
	for i, period := range labels {
		data[i] = totals[period]
	}
	return models.SeriesData{Labels: labels, Data: data}
}

// TopProducts returns the limit highest-revenue products in descending
// order. Ties keep the order in which the products first appear in the
// filtered data.
func (a *Analytics) TopProducts(f *models.Filter, limit int) models.SeriesData {
	totals := make(map[string]float64)
	order := make([]string, 0)
	for _, r := range a.Filtered(f) {
		if _, seen := totals[r.Product]; !seen {
			order = append(order, r.Product)
		}
		totals[r.Product] += r.Revenue
	}

	slices.SortStableFunc(order, func(x, y string) int {
		switch {
		case totals[x] > totals[y]:
			return -1
		case totals[x] < totals[y]:
			return 1
		default:
			return 0
		}
	})
	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}

	data := make([]float64, len(order))
	for i, name := range order {
		data[i] = totals[name]
	}
	return models.SeriesData{Labels: order, Data: data}
}

// GeographicPerformance sums revenue, profit and order quantity per country,
// countries sorted alphabetically, money rounded to 2 decimals.
func (a *Analytics) GeographicPerformance(f *models.Filter) models.GeographicPerformance {
	type geoTotals struct {
		revenue, profit float64
		orders          int
	}
	groups := make(map[string]*geoTotals)
	for _, r := range a.Filtered(f) {
		g := groups[r.Country]
		if g == nil {
			g = &geoTotals{}
			groups[r.Country] = g
		}
		g.revenue += r.Revenue
		g.profit += r.Profit
		g.orders += r.OrderQuantity
	}

	countries := make([]string, 0, len(groups))
	for c := range groups {
		countries = append(countries, c)
	}
	slices.Sort(countries)

	result := models.GeographicPerformance{
		Countries: countries,
		Revenue:   make([]float64, len(countries)),
		Profit:    make([]float64, len(countries)),
		Orders:    make([]int, len(countries)),
	}
	for i, c := range countries {
		result.Revenue[i] = round2(groups[c].revenue)
		result.Profit[i] = round2(groups[c].profit)
		result.Orders[i] = groups[c].orders
	}
	return result
}

// AgeGroupAnalysis sums revenue and profit, counts records and averages
// order quantity per age group, groups sorted alphabetically.
func (a *Analytics) AgeGroupAnalysis(f *models.Filter) models.AgeGroupAnalysis {
	type ageTotals struct {
		revenue, profit float64
		count, quantity int
	}
	groups := make(map[string]*ageTotals)
	for _, r := range a.Filtered(f) {
		g := groups[r.AgeGroup]
		if g == nil {
			g = &ageTotals{}
			groups[r.AgeGroup] = g
		}
		g.revenue += r.Revenue
		g.profit += r.Profit
		g.count++
		g.quantity += r.OrderQuantity
	}

	labels := make([]string, 0, len(groups))
	for ag := range groups {
		labels = append(labels, ag)
	}
	slices.Sort(labels)

	result := models.AgeGroupAnalysis{
		AgeGroups:        labels,
		Revenue:          make([]float64, len(labels)),
		Profit:           make([]float64, len(labels)),
		CustomerCount:    make([]int, len(labels)),
		AvgOrderQuantity: make([]float64, len(labels)),
	}
	for i, ag := range labels {
		g := groups[ag]
		result.Revenue[i] = round2(g.revenue)
		result.Profit[i] = round2(g.profit)
		result.CustomerCount[i] = g.count
		result.AvgOrderQuantity[i] = round2(float64(g.quantity) / float64(g.count))
	}
	return result
}

// SeasonalTrends sums revenue, order quantity and profit per month name,
// months in calendar order. Months absent from the filtered data are
// dropped, not zero-filled.
func (a *Analytics) SeasonalTrends(f *models.Filter) models.SeasonalTrends {
	type monthTotals struct {
		revenue, profit float64
		orders          int
	}
	groups := make(map[string]*monthTotals)
	for _, r := range a.Filtered(f) {
		g := groups[r.Month]
		if g == nil {
			g = &monthTotals{}
			groups[r.Month] = g
		}
		g.revenue += r.Revenue
		g.orders += r.OrderQuantity
		g.profit += r.Profit
	}

	result := models.SeasonalTrends{
		Months:  make([]string, 0, len(groups)),
		Revenue: make([]float64, 0, len(groups)),
		Orders:  make([]int, 0, len(groups)),
		Profit:  make([]float64, 0, len(groups)),
	}
	for _, month := range monthOrder {
		g, ok := groups[month]
		if !ok {
			continue
		}
		result.Months = append(result.Months, month)
		result.Revenue = append(result.Revenue, round2(g.revenue))
		result.Orders = append(result.Orders, g.orders)
		result.Profit = append(result.Profit, round2(g.profit))
	}
	return result
}

// CustomerSegmentation buckets customers into value segments by their total
// revenue (CLV) within the filtered window and rolls segment totals up. A
// non-empty input always reports all three segments, zero-filled where a
// segment has no customers; empty input reports empty arrays.
func (a *Analytics) CustomerSegmentation(f *models.Filter) models.CustomerSegmentation {
	records := a.Filtered(f)
	if len(records) == 0 {
		return models.CustomerSegmentation{
			Segments:      []string{},
			Revenue:       []float64{},
			Profit:        []float64{},
			CustomerCount: []int{},
			OrderCount:    []int{},
		}
	}

	type customerTotals struct {
		revenue, profit float64
		orders          int
	}
	customers := make(map[models.CustomerKey]*customerTotals)
	for _, r := range records {
		key := a.identity(r)
		c := customers[key]
		if c == nil {
			c = &customerTotals{}
			customers[key] = c
		}
		c.revenue += r.Revenue
		c.profit += r.Profit
		c.orders++
	}

	type segmentTotals struct {
		revenue, profit float64
		orders          int
		customers       int
	}
	segments := make([]segmentTotals, len(segmentLabels))
	for _, c := range customers {
		idx := 0
		switch {
		case c.revenue >= segmentHighMin:
			idx = 2
		case c.revenue >= segmentMediumMin:
			idx = 1
		}
		segments[idx].revenue += c.revenue
		segments[idx].profit += c.profit
		segments[idx].orders += c.orders
		segments[idx].customers++
	}

	result := models.CustomerSegmentation{
		Segments:      append([]string{}, segmentLabels...),
		Revenue:       make([]float64, len(segmentLabels)),
		Profit:        make([]float64, len(segmentLabels)),
		CustomerCount: make([]int, len(segmentLabels)),
		OrderCount:    make([]int, len(segmentLabels)),
	}
	for i, s := range segments {
		result.Revenue[i] = s.revenue
		result.Profit[i] = s.profit
		result.CustomerCount[i] = s.customers
		result.OrderCount[i] = s.orders
	}
	return result
}

// FilterOptions exposes the store's dimension values for the front end's
// filter panel.
func (a *Analytics) FilterOptions() models.FilterOptions {
	return a.store.FilterOptions()
}

// Stats reports dataset shape for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	opts := a.store.FilterOptions()
	return map[string]any{
		"record_count":       a.store.Len(),
		"countries":          len(opts.Countries),
		"age_groups":         len(opts.AgeGroups),
		"product_categories": len(opts.ProductCategories),
		"date_range":         opts.DateRange,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
