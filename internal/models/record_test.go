package models

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestFilterRequest_Parse(t *testing.T) {
	req := &FilterRequest{
		StartDate: strPtr("2024-01-01"),
		EndDate:   strPtr("2024-12-31"),
		Countries: []string{"Canada"},
	}

	f, err := req.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if f.StartDate == nil || !f.StartDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start date: %v", f.StartDate)
	}
	if f.EndDate == nil || !f.EndDate.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end date: %v", f.EndDate)
	}
	if len(f.Countries) != 1 || f.Countries[0] != "Canada" {
		t.Errorf("countries not carried over: %v", f.Countries)
	}
}

func TestFilterRequest_Parse_InvalidDates(t *testing.T) {
	tests := []struct {
		name string
		req  FilterRequest
	}{
		{"bad start date", FilterRequest{StartDate: strPtr("01/02/2024")}},
		{"bad end date", FilterRequest{EndDate: strPtr("2024-13-40")}},
		{"empty start date", FilterRequest{StartDate: strPtr("")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.req.Parse(); err == nil {
				t.Error("Parse() should reject malformed dates")
			}
		})
	}
}

func TestFilterRequest_Parse_Nil(t *testing.T) {
	var req *FilterRequest
	f, err := req.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f != nil {
		t.Errorf("nil request should parse to nil filter, got %+v", f)
	}
}

func TestDefaultCustomerIdentity(t *testing.T) {
	a := SalesRecord{CustomerAge: 30, CustomerGender: "F", Country: "France", Product: "X"}
	b := SalesRecord{CustomerAge: 30, CustomerGender: "F", Country: "France", Product: "Y"}
	c := SalesRecord{CustomerAge: 31, CustomerGender: "F", Country: "France"}

	if DefaultCustomerIdentity(a) != DefaultCustomerIdentity(b) {
		t.Error("same tuple must map to the same key")
	}
	if DefaultCustomerIdentity(a) == DefaultCustomerIdentity(c) {
		t.Error("different ages must map to different keys")
	}
}
