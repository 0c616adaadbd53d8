package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bike-analytics/internal/models"
)

// rec builds a test record with derived fields consistent with the dataset
// invariants (profit = revenue - cost, date parts derived from date).
func rec(date, country, ageGroup, gender string, age int, category, product string, qty int, revenue, cost float64) models.SalesRecord {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return models.SalesRecord{
		Date:            d,
		Day:             d.Day(),
		Month:           d.Month().String(),
		Year:            d.Year(),
		CustomerAge:     age,
		AgeGroup:        ageGroup,
		CustomerGender:  gender,
		Country:         country,
		State:           "Test State",
		ProductCategory: category,
		SubCategory:     "Test Sub",
		Product:         product,
		OrderQuantity:   qty,
		Revenue:         revenue,
		Cost:            cost,
		Profit:          revenue - cost,
	}
}

func newTestAnalytics(records []models.SalesRecord) *Analytics {
	return NewAnalytics(NewStore(records, nil), nil, nil)
}

func datePtr(s string) *time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestFiltered_NilAndEmptyFilterAreIdentity(t *testing.T) {
	records := []models.SalesRecord{
		rec("2024-01-10", "Canada", "Youth (<25)", "M", 19, "Bikes", "Road-150", 1, 100, 60),
		rec("2024-02-05", "Germany", "Adults (35-64)", "F", 42, "Clothing", "Jersey", 2, 200, 100),
	}
	a := newTestAnalytics(records)

	assert.Equal(t, records, a.Filtered(nil))
	assert.Equal(t, records, a.Filtered(&models.Filter{}))
}

func TestFiltered_DateBoundsInclusive(t *testing.T) {
	records := []models.SalesRecord{
		rec("2024-01-01", "Canada", "Youth (<25)", "M", 19, "Bikes", "A", 1, 100, 60),
		rec("2024-01-15", "Canada", "Youth (<25)", "M", 19, "Bikes", "B", 1, 100, 60),
		rec("2024-01-31", "Canada", "Youth (<25)", "M", 19, "Bikes", "C", 1, 100, 60),
		rec("2024-02-01", "Canada", "Youth (<25)", "M", 19, "Bikes", "D", 1, 100, 60),
	}
	a := newTestAnalytics(records)

	got := a.Filtered(&models.Filter{
		StartDate: datePtr("2024-01-15"),
		EndDate:   datePtr("2024-01-31"),
	})

	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Product)
	assert.Equal(t, "C", got[1].Product)
}

func TestFiltered_DimensionsAreConjunctive(t *testing.T) {
	records := []models.SalesRecord{
		rec("2024-01-10", "Canada", "Youth (<25)", "M", 19, "Bikes", "A", 1, 100, 60),
		rec("2024-01-11", "Canada", "Adults (35-64)", "F", 42, "Bikes", "B", 1, 100, 60),
		rec("2024-01-12", "Germany", "Youth (<25)", "M", 20, "Bikes", "C", 1, 100, 60),
		rec("2024-01-13", "Canada", "Youth (<25)", "F", 22, "Clothing", "D", 1, 100, 60),
	}
	a := newTestAnalytics(records)

	got := a.Filtered(&models.Filter{
		Countries: []string{"Canada"},
		AgeGroups: []string{"Youth (<25)"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Product)
	assert.Equal(t, "D", got[1].Product)
}

func TestFiltered_MembershipIsDisjunctiveWithinDimension(t *testing.T) {
	records := []models.SalesRecord{
		rec("2024-01-10", "Canada", "Youth (<25)", "M", 19, "Bikes", "A", 1, 100, 60),
		rec("2024-01-11", "France", "Youth (<25)", "M", 19, "Bikes", "B", 1, 100, 60),
		rec("2024-01-12", "Germany", "Youth (<25)", "M", 19, "Bikes", "C", 1, 100, 60),
	}
	a := newTestAnalytics(records)

	got := a.Filtered(&models.Filter{Countries: []string{"Canada", "Germany"}})

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Product)
	assert.Equal(t, "C", got[1].Product)
}

func TestFiltered_UnknownValueMatchesNothing(t *testing.T) {
	records := []models.SalesRecord{
		rec("2024-01-10", "Germany", "Youth (<25)", "M", 19, "Bikes", "A", 1, 100, 60),
	}
	a := newTestAnalytics(records)

	assert.Empty(t, a.Filtered(&models.Filter{Countries: []string{"Atlantis"}}))
}

func TestSummaryStats(t *testing.T) {
	// Two records: Jan revenue 100 / cost 60, Feb revenue 200 / cost 100.
	records := []models.SalesRecord{
		rec("2024-01-10", "Canada", "Youth (<25)", "M", 19, "Bikes", "A", 1, 100, 60),
		rec("2024-02-05", "Germany", "Adults (35-64)", "F", 42, "Clothing", "B", 2, 200, 100),
	}
	a := newTestAnalytics(records)

	stats := a.SummaryStats(nil)

	assert.InDelta(t, 300, stats.TotalRevenue, 1e-9)
	assert.InDelta(t, 140, stats.TotalProfit, 1e-9)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.InDelta(t, 150, stats.AvgOrderValue, 1e-9)
	assert.Equal(t, 2, stats.TotalCustomers)
	assert.InDelta(t, 140.0/300.0*100, stats.ProfitMargin, 1e-9)
}

func TestSummaryStats_DistinctCustomersViaIdentityProxy(t *testing.T) {
	// Same (age, gender, country) tuple counts as one customer.
	records := []models.SalesRecord{
		rec("2024-01-10", "Canada", "Youth (<25)", "M", 19, "Bikes", "A", 1, 100, 60),
		rec("2024-03-10", "Canada", "Youth (<25)", "M", 19, "Clothing", "B", 1, 100, 60),
		rec("2024-04-10", "Canada", "Youth (<25)", "F", 19, "Clothing", "C", 1, 100, 60),
	}
	a := newTestAnalytics(records)

	assert.Equal(t, 2, a.SummaryStats(nil).TotalCustomers)
}

func TestSummaryStats_EmptyInput(t *testing.T) {
	a := newTestAnalytics(nil)

	stats := a.SummaryStats(nil)

	assert.Zero(t, stats.TotalRevenue)
	assert.Zero(t, stats.AvgOrderValue)
	assert.Zero(t, stats.ProfitMargin)
	assert.Zero(t, stats.TotalOrders)
	assert.Zero(t, stats.TotalCustomers)
}

func TestRevenueByMonth(t *testing.T) {
	records := []models.SalesRecord{
		rec("2024-02-05", "Canada", "Youth (<25)", "M", 19, "Bikes", "B", 2, 200, 100),
		rec("2024-01-10", "Canada", "Youth (<25)", "M", 19, "Bikes", "A", 1, 100, 60),
		rec("2024-01-20", "Canada", "Youth (<25)", "F", 25, "Bikes", "A", 1, 50, 30),
	}
	a := newTestAnalytics(records)

	got := a.RevenueByMonth(nil)

	assert.Equal(t, []string{"2024-01", "2024-02"}, got.Labels)
	require.Len(t, got.Data, 2)
	assert.InDelta(t, 150, got.Data[0], 1e-9)
	assert.InDelta(t, 200, got.Data[1], 1e-9)
}

func TestTopProducts(t *testing.T) {
	records := []models.SalesRecord{
		rec("2024-01-10", "Canada", "Youth (<25)", "M", 19, "Bikes", "Road-150", 1, 100, 60),
		rec("2024-01-11", "Canada", "Youth (<25)", "M", 19, "Bikes", "Mountain-200", 1, 500, 300),
		rec("2024-01-12", "Canada", "Youth (<25)", "M", 19, "Bikes", "Road-150", 1, 150, 90),
		rec("2024-01-13", "Canada", "Youth (<25)", "M", 19, "Clothing", "Jersey", 1, 80, 40),
	}
	a := newTestAnalytics(records)

	got := a.TopProducts(nil, 10)

	assert.Equal(t, []string{"Mountain-200", "Road-150", "Jersey"}, got.Labels)
	require.Len(t, got.Data, 3)
	assert.InDelta(t, 500, got.Data[0], 1e-9)
	assert.InDelta(t, 250, got.Data[1], 1e-9)

	// Descending, never more than the limit
	limited := a.TopProducts(nil, 2)
	assert.Len(t, limited.Labels, 2)
	assert.Len(t, limited.Data, 2)
}

func TestTopProducts_TiesPreserveEncounterOrder(t *testing.T) {
	records := []models.SalesRecord{
		rec("2024-01-10", "Canada", "Youth (<25)", "M", 19, "Bikes", "First", 1, 100, 60),
		rec("2024-01-11", "Canada", "Youth (<25)", "M", 19, "Bikes", "Second", 1, 100, 60),
		rec("2024-01-12", "Canada", "Youth (<25)", "M", 19, "Bikes", "Third", 1, 100, 60),
	}
	a := newTestAnalytics(records)

	got := a.TopProducts(nil, 10)

	assert.Equal(t, []string{"First", "Second", "Third"}, got.Labels)
}

func TestGeographicPerformance(t *testing.T) {
	records := []models.SalesRecord{
		rec("2024-01-10", "Germany", "Youth (<25)", "M", 19, "Bikes", "A", 3, 100.005, 60),
		rec("2024-01-11", "Canada", "Youth (<25)", "M", 19, "Bikes", "B", 2, 200, 100),
		rec("2024-01-12", "Canada", "Youth (<25)", "F", 25, "Bikes", "C", 1, 50, 30),
	}
	a := newTestAnalytics(records)

	got := a.GeographicPerformance(nil)

	assert.Equal(t, []string{"Canada", "Germany"}, got.Countries)
	assert.Equal(t, []int{3, 3}, got.Orders)
	require.Len(t, got.Revenue, 2)
	assert.InDelta(t, 250, got.Revenue[0], 1e-9)
	assert.InDelta(t, 100.01, got.Revenue[1], 1e-9) // rounded to 2 decimals
}

func TestAgeGroupAnalysis(t *testing.T) {
	records := []models.SalesRecord{
		rec("2024-01-10", "Canada", "Youth (<25)", "M", 19, "Bikes", "A", 2, 100, 60),
		rec("2024-01-11", "Canada", "Youth (<25)", "F", 22, "Bikes", "B", 4, 200, 100),
		rec("2024-01-12", "Canada", "Adults (35-64)", "M", 40, "Bikes", "C", 5, 300, 200),
	}
	a := newTestAnalytics(records)

	got := a.AgeGroupAnalysis(nil)

	assert.Equal(t, []string{"Adults (35-64)", "Youth (<25)"}, got.AgeGroups)
	assert.Equal(t, []int{1, 2}, got.CustomerCount)
	require.Len(t, got.AvgOrderQuantity, 2)
	assert.InDelta(t, 5, got.AvgOrderQuantity[0], 1e-9)
	assert.InDelta(t, 3, got.AvgOrderQuantity[1], 1e-9)
}

func TestSeasonalTrends_CalendarOrderAndDroppedMonths(t *testing.T) {
	records := []models.SalesRecord{
		rec("2024-12-10", "Canada", "Youth (<25)", "M", 19, "Bikes", "A", 2, 100, 60),
		rec("2023-03-11", "Canada", "Youth (<25)", "M", 19, "Bikes", "B", 1, 200, 100),
		rec("2024-03-15", "Canada", "Youth (<25)", "F", 25, "Bikes", "C", 3, 50, 30),
		rec("2024-01-05", "Canada", "Youth (<25)", "M", 19, "Bikes", "D", 1, 75, 40),
	}
	a := newTestAnalytics(records)

	got := a.SeasonalTrends(nil)

	// Calendar order regardless of year; absent months are not zero-filled.
	assert.Equal(t, []string{"January", "March", "December"}, got.Months)
	assert.Equal(t, []int{1, 4, 2}, got.Orders)
	require.Len(t, got.Revenue, 3)
	assert.InDelta(t, 75, got.Revenue[0], 1e-9)
	assert.InDelta(t, 250, got.Revenue[1], 1e-9)
	assert.InDelta(t, 100, got.Revenue[2], 1e-9)
}

func TestCustomerSegmentation_Boundaries(t *testing.T) {
	// Three customers with CLV 499.99, 500 and 1500: the boundary values
	// fall into the higher segment (lower bounds are inclusive).
	records := []models.SalesRecord{
		rec("2024-01-10", "Canada", "Youth (<25)", "M", 19, "Bikes", "A", 1, 499.99, 200),
		rec("2024-01-11", "Germany", "Youth (<25)", "M", 20, "Bikes", "B", 1, 500, 200),
		rec("2024-01-12", "France", "Youth (<25)", "M", 21, "Bikes", "C", 1, 1500, 600),
	}
	a := newTestAnalytics(records)

	got := a.CustomerSegmentation(nil)

	assert.Equal(t, []string{"Low Value", "Medium Value", "High Value"}, got.Segments)
	assert.Equal(t, []int{1, 1, 1}, got.CustomerCount)
	assert.Equal(t, []int{1, 1, 1}, got.OrderCount)
	require.Len(t, got.Revenue, 3)
	assert.InDelta(t, 499.99, got.Revenue[0], 1e-9)
	assert.InDelta(t, 500, got.Revenue[1], 1e-9)
	assert.InDelta(t, 1500, got.Revenue[2], 1e-9)
}

func TestCustomerSegmentation_CLVAccumulatesAcrossOrders(t *testing.T) {
	// One customer with two 300-revenue orders lands in Medium, not Low.
	records := []models.SalesRecord{
		rec("2024-01-10", "Canada", "Youth (<25)", "M", 19, "Bikes", "A", 1, 300, 100),
		rec("2024-02-10", "Canada", "Youth (<25)", "M", 19, "Bikes", "B", 1, 300, 100),
	}
	a := newTestAnalytics(records)

	got := a.CustomerSegmentation(nil)

	assert.Equal(t, []int{0, 1, 0}, got.CustomerCount)
	assert.Equal(t, []int{0, 2, 0}, got.OrderCount)
	assert.InDelta(t, 600, got.Revenue[1], 1e-9)
}

func TestAggregations_EmptyFilteredSet(t *testing.T) {
	records := []models.SalesRecord{
		rec("2024-01-10", "Germany", "Youth (<25)", "M", 19, "Bikes", "A", 1, 100, 60),
	}
	a := newTestAnalytics(records)
	f := &models.Filter{Countries: []string{"Canada"}}

	assert.Empty(t, a.RevenueByMonth(f).Labels)
	assert.Empty(t, a.RevenueByMonth(f).Data)
	assert.Empty(t, a.TopProducts(f, 10).Labels)
	assert.Empty(t, a.GeographicPerformance(f).Countries)
	assert.Empty(t, a.AgeGroupAnalysis(f).AgeGroups)
	assert.Empty(t, a.SeasonalTrends(f).Months)
	assert.Empty(t, a.CustomerSegmentation(f).Segments)
	assert.Zero(t, a.SummaryStats(f).TotalRevenue)
}

func TestAnalytics_CustomIdentityFunc(t *testing.T) {
	// A stand-in for a future real customer ID: group everyone together.
	identity := func(models.SalesRecord) models.CustomerKey {
		return models.CustomerKey{Gender: "all"}
	}
	records := []models.SalesRecord{
		rec("2024-01-10", "Canada", "Youth (<25)", "M", 19, "Bikes", "A", 1, 100, 60),
		rec("2024-01-11", "Germany", "Adults (35-64)", "F", 42, "Bikes", "B", 1, 100, 60),
	}
	a := NewAnalytics(NewStore(records, nil), identity, nil)

	assert.Equal(t, 1, a.SummaryStats(nil).TotalCustomers)
}

func TestRolledUpProfitConsistency(t *testing.T) {
	records := GenerateSample(200)
	a := newTestAnalytics(records)

	geo := a.GeographicPerformance(nil)
	var geoRevenue float64
	for i := range geo.Countries {
		assert.LessOrEqual(t, geo.Profit[i], geo.Revenue[i])
		geoRevenue += geo.Revenue[i]
	}

	stats := a.SummaryStats(nil)
	// Per-country rounding leaves at most half a cent per country of drift.
	assert.InDelta(t, stats.TotalRevenue, geoRevenue, 0.005*float64(len(geo.Countries)))

	var wantRevenue, wantProfit float64
	for _, r := range records {
		wantRevenue += r.Revenue
		wantProfit += r.Revenue - r.Cost
	}
	assert.InDelta(t, wantRevenue, stats.TotalRevenue, 1e-6)
	assert.InDelta(t, wantProfit, stats.TotalProfit, 1e-6)
}
