package models

type SummaryStats struct {
	TotalRevenue   float64 `json:"total_revenue"`
	TotalProfit    float64 `json:"total_profit"`
	TotalOrders    int     `json:"total_orders"`
	AvgOrderValue  float64 `json:"avg_order_value"`
	TotalCustomers int     `json:"total_customers"`
	ProfitMargin   float64 `json:"profit_margin"`
}

// SeriesData is the single-metric chart shape: parallel label/value arrays.
type SeriesData struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

type GeographicPerformance struct {
	Countries []string  `json:"countries"`
	Revenue   []float64 `json:"revenue"`
	Profit    []float64 `json:"profit"`
	Orders    []int     `json:"orders"`
}

type AgeGroupAnalysis struct {
	AgeGroups        []string  `json:"age_groups"`
	Revenue          []float64 `json:"revenue"`
	Profit           []float64 `json:"profit"`
	CustomerCount    []int     `json:"customer_count"`
	AvgOrderQuantity []float64 `json:"avg_order_quantity"`
}

type SeasonalTrends struct {
	Months  []string  `json:"months"`
	Revenue []float64 `json:"revenue"`
	Orders  []int     `json:"orders"`
	Profit  []float64 `json:"profit"`
}

type CustomerSegmentation struct {
	Segments      []string  `json:"segments"`
	Revenue       []float64 `json:"revenue"`
	Profit        []float64 `json:"profit"`
	CustomerCount []int     `json:"customer_count"`
	OrderCount    []int     `json:"order_count"`
}

type DateRange struct {
	MinDate string `json:"min_date"`
	MaxDate string `json:"max_date"`
}

type FilterOptions struct {
	Countries         []string  `json:"countries"`
	AgeGroups         []string  `json:"age_groups"`
	ProductCategories []string  `json:"product_categories"`
	DateRange         DateRange `json:"date_range"`
}

type KPI struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Change     float64 `json:"change"`
	Trend      string  `json:"trend"`
	FormatType string  `json:"format_type"`
}

type ConversionMetrics struct {
	TotalVisitors  int     `json:"total_visitors"`
	TotalOrders    int     `json:"total_orders"`
	ConversionRate float64 `json:"conversion_rate"`
}

type FinancialMetrics struct {
	RevenuePerCustomer float64 `json:"revenue_per_customer"`
	ProfitPerOrder     float64 `json:"profit_per_order"`
	CostPerAcquisition float64 `json:"cost_per_acquisition"`
}

type OperationalMetrics struct {
	AvgOrderProcessingTime float64 `json:"avg_order_processing_time"`
	InventoryTurnover      float64 `json:"inventory_turnover"`
	ReturnRate             float64 `json:"return_rate"`
}

// PerformanceMetrics is a secondary bundle of operational numbers. Everything
// except total_orders and the financial means is placeholder data; Simulated
// is always true so callers cannot mistake these for measured values.
type PerformanceMetrics struct {
	ConversionMetrics  ConversionMetrics  `json:"conversion_metrics"`
	FinancialMetrics   FinancialMetrics   `json:"financial_metrics"`
	OperationalMetrics OperationalMetrics `json:"operational_metrics"`
	Simulated          bool               `json:"simulated"`
}
