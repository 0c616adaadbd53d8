package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"bike-analytics/internal/models"
	"golang.org/x/sync/errgroup"
)

const maxParseWorkers = 10

// Column names expected in the source CSV header.
var requiredColumns = []string{
	"Date", "Customer_Age", "Age_Group", "Customer_Gender", "Country",
	"State", "Product_Category", "Sub_Category", "Product",
	"Order_Quantity", "Unit_Cost", "Unit_Price", "Profit", "Cost", "Revenue",
}

// Store holds the full sales dataset in memory. It is built once at startup
// and never mutated, so concurrent readers need no locking.
type Store struct {
	records []models.SalesRecord
	logger  *slog.Logger
}

func NewStore(records []models.SalesRecord, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{records: records, logger: logger}
}

// Records returns the full dataset. Callers must treat it as read-only.
func (s *Store) Records() []models.SalesRecord {
	return s.records
}

func (s *Store) Len() int {
	return len(s.records)
}

// FilterOptions enumerates the distinct values of every filterable dimension
// plus the date span present in the dataset.
func (s *Store) FilterOptions() models.FilterOptions {
	countries := make(map[string]bool)
	ageGroups := make(map[string]bool)
	categories := make(map[string]bool)

	var minDate, maxDate time.Time
	for i, r := range s.records {
		countries[r.Country] = true
		ageGroups[r.AgeGroup] = true
		categories[r.ProductCategory] = true

		if i == 0 || r.Date.Before(minDate) {
			minDate = r.Date
		}
		if i == 0 || r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}

	opts := models.FilterOptions{
		Countries:         sortedKeys(countries),
		AgeGroups:         sortedKeys(ageGroups),
		ProductCategories: sortedKeys(categories),
	}
	if len(s.records) > 0 {
		opts.DateRange = models.DateRange{
			MinDate: minDate.Format(models.DateLayout),
			MaxDate: maxDate.Format(models.DateLayout),
		}
	}
	return opts
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// LoadRecords reads the sales dataset from the first existing path among
// candidates. It returns an error rather than falling back itself; the
// composition root decides whether to substitute sample data.
func LoadRecords(ctx context.Context, paths []string, logger *slog.Logger) ([]models.SalesRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var path string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			path = p
			break
		}
	}
	if path == "" {
		return nil, fmt.Errorf("no dataset found among %d candidate paths", len(paths))
	}

	start := time.Now()
	logger.Info("loading dataset", "path", path)

	records, err := loadCSV(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	logger.Info("dataset loaded",
		"path", path,
		"records", len(records),
		"duration", time.Since(start),
	)
	return records, nil
}

func loadCSV(ctx context.Context, path string) ([]models.SalesRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no records in file")
	}

	// Rows parse concurrently but write to their own index, so the original
	// file order is preserved.
	records := make([]models.SalesRecord, len(rows))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParseWorkers)

	for i, row := range rows {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			rec, err := parseRecord(row, cols)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+2, err)
			}
			records[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func parseRecord(row []string, cols map[string]int) (models.SalesRecord, error) {
	field := func(name string) string {
		idx := cols[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	date, err := time.Parse(models.DateLayout, field("Date"))
	if err != nil {
		return models.SalesRecord{}, fmt.Errorf("date: %w", err)
	}

	age, err := strconv.Atoi(field("Customer_Age"))
	if err != nil {
		return models.SalesRecord{}, fmt.Errorf("customer age: %w", err)
	}

	quantity, err := strconv.Atoi(field("Order_Quantity"))
	if err != nil {
		return models.SalesRecord{}, fmt.Errorf("order quantity: %w", err)
	}

	floats := make(map[string]float64, 5)
	for _, name := range []string{"Unit_Cost", "Unit_Price", "Profit", "Cost", "Revenue"} {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil {
			return models.SalesRecord{}, fmt.Errorf("%s: %w", strings.ToLower(name), err)
		}
		floats[name] = v
	}

	return models.SalesRecord{
		Date:            date,
		Day:             date.Day(),
		Month:           date.Month().String(),
		Year:            date.Year(),
		CustomerAge:     age,
		AgeGroup:        field("Age_Group"),
		CustomerGender:  field("Customer_Gender"),
		Country:         field("Country"),
		State:           field("State"),
		ProductCategory: field("Product_Category"),
		SubCategory:     field("Sub_Category"),
		Product:         field("Product"),
		OrderQuantity:   quantity,
		UnitCost:        floats["Unit_Cost"],
		UnitPrice:       floats["Unit_Price"],
		Profit:          floats["Profit"],
		Cost:            floats["Cost"],
		Revenue:         floats["Revenue"],
	}, nil
}

// Fixed label sets for the sample generator.
var (
	sampleCountries  = []string{"Canada", "Australia", "United States", "Germany", "France", "United Kingdom"}
	sampleAgeGroups  = []string{"Youth (<25)", "Young Adults (25-34)", "Adults (35-64)", "Seniors (64+)"}
	sampleGenders    = []string{"M", "F"}
	sampleCategories = []string{"Accessories", "Bikes", "Clothing"}
	sampleProducts   = map[string][]string{
		"Accessories": {"Water Bottle - 30 oz.", "Patch Kit/8 Patches", "Hitch Rack - 4-Bike", "Fender Set - Mountain"},
		"Bikes":       {"Mountain-200 Black, 46", "Road-150 Red, 62", "Touring-1000 Blue, 50"},
		"Clothing":    {"AWC Logo Cap", "Long-Sleeve Logo Jersey, L", "Half-Finger Gloves, M"},
	}
)

// GenerateSample produces a synthetic dataset with the same schema as the
// real file so the service stays operable without it. Values are uniform
// random, not statistically realistic; derived fields honor
// revenue = quantity * unit_price, cost = quantity * unit_cost,
// profit = revenue - cost.
func GenerateSample(n int) []models.SalesRecord {
	start := time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours()/24) + 1

	records := make([]models.SalesRecord, n)
	for i := range records {
		date := start.AddDate(0, 0, rand.IntN(days))
		category := sampleCategories[rand.IntN(len(sampleCategories))]
		products := sampleProducts[category]
		quantity := 1 + rand.IntN(29)
		unitCost := 20 + rand.Float64()*80
		unitPrice := 50 + rand.Float64()*150
		cost := float64(quantity) * unitCost
		revenue := float64(quantity) * unitPrice

		records[i] = models.SalesRecord{
			Date:            date,
			Day:             date.Day(),
			Month:           date.Month().String(),
			Year:            date.Year(),
			CustomerAge:     16 + rand.IntN(69),
			AgeGroup:        sampleAgeGroups[rand.IntN(len(sampleAgeGroups))],
			CustomerGender:  sampleGenders[rand.IntN(len(sampleGenders))],
			Country:         sampleCountries[rand.IntN(len(sampleCountries))],
			State:           "Sample State",
			ProductCategory: category,
			SubCategory:     "Sample Sub Category",
			Product:         products[rand.IntN(len(products))],
			OrderQuantity:   quantity,
			UnitCost:        unitCost,
			UnitPrice:       unitPrice,
			Cost:            cost,
			Revenue:         revenue,
			Profit:          revenue - cost,
		}
	}
	return records
}
