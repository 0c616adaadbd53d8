package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for all dates in this API.
const DateLayout = "2006-01-02"

// SalesRecord is one transaction line of the bike sales dataset. Day, Month
// and Year duplicate Date because the source CSV stores them redundantly.
type SalesRecord struct {
	Date            time.Time
	Day             int
	Month           string
	Year            int
	CustomerAge     int
	AgeGroup        string
	CustomerGender  string
	Country         string
	State           string
	ProductCategory string
	SubCategory     string
	Product         string
	OrderQuantity   int
	UnitCost        float64
	UnitPrice       float64
	Profit          float64
	Cost            float64
	Revenue         float64
}

// CustomerKey identifies a customer. The dataset carries no customer ID, so
// the (age, gender, country) tuple stands in for one; two real customers
// sharing all three collapse into a single key. Known limitation.
type CustomerKey struct {
	Age     int
	Gender  string
	Country string
}

// CustomerIdentityFunc derives a customer key from a record. Pluggable so a
// real customer ID column can replace the tuple without touching the
// aggregation code.
type CustomerIdentityFunc func(SalesRecord) CustomerKey

func DefaultCustomerIdentity(r SalesRecord) CustomerKey {
	return CustomerKey{Age: r.CustomerAge, Gender: r.CustomerGender, Country: r.Country}
}

// Filter is the parsed conjunctive predicate set applied to the record set.
// Nil or empty fields mean no constraint on that dimension.
type Filter struct {
	StartDate         *time.Time
	EndDate           *time.Time
	Countries         []string
	AgeGroups         []string
	ProductCategories []string
}

// FilterRequest is the wire form of Filter; dates are YYYY-MM-DD strings and
// every field is optional.
type FilterRequest struct {
	StartDate         *string  `json:"start_date,omitempty"`
	EndDate           *string  `json:"end_date,omitempty"`
	Countries         []string `json:"countries,omitempty"`
	AgeGroups         []string `json:"age_groups,omitempty"`
	ProductCategories []string `json:"product_categories,omitempty"`
}

// Parse validates the request and converts it to a Filter. A malformed date
// is a caller error.
func (fr *FilterRequest) Parse() (*Filter, error) {
	if fr == nil {
		return nil, nil
	}

	f := &Filter{
		Countries:         fr.Countries,
		AgeGroups:         fr.AgeGroups,
		ProductCategories: fr.ProductCategories,
	}

	if fr.StartDate != nil {
		t, err := time.Parse(DateLayout, *fr.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start_date %q: %w", *fr.StartDate, err)
		}
		f.StartDate = &t
	}

	if fr.EndDate != nil {
		t, err := time.Parse(DateLayout, *fr.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end_date %q: %w", *fr.EndDate, err)
		}
		f.EndDate = &t
	}

	return f, nil
}
