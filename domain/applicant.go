package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// MaxAmount bounds every monetary input field.
const MaxAmount = 1_000_000_000_000.0

// ErrInvalidInput marks errors caused by the caller's payload.
var ErrInvalidInput = errors.New("invalid input")

// NumSpendingCategories is the number of 12-month spending totals on a record.
const NumSpendingCategories = 11

// ApplicantRecord holds the raw financial fields of one applicant.
type ApplicantRecord struct {
	Income             float64 `json:"INCOME"`
	Savings            float64 `json:"SAVINGS"`
	Debt               float64 `json:"DEBT"`
	GroceriesTotal     float64 `json:"T_GROCERIES_12"`
	ClothingTotal      float64 `json:"T_CLOTHING_12"`
	HousingTotal       float64 `json:"T_HOUSING_12"`
	EducationTotal     float64 `json:"T_EDUCATION_12"`
	HealthTotal        float64 `json:"T_HEALTH_12"`
	TravelTotal        float64 `json:"T_TRAVEL_12"`
	EntertainmentTotal float64 `json:"T_ENTERTAINMENT_12"`
	GamblingTotal      float64 `json:"T_GAMBLING_12"`
	UtilitiesTotal     float64 `json:"T_UTILITIES_12"`
	TaxTotal           float64 `json:"T_TAX_12"`
	FinesTotal         float64 `json:"T_FINES_12"`
}

// SpendingTotals returns the 11 category totals in declaration order.
func (a ApplicantRecord) SpendingTotals() [NumSpendingCategories]float64 {
	return [NumSpendingCategories]float64{
		a.GroceriesTotal,
		a.ClothingTotal,
		a.HousingTotal,
		a.EducationTotal,
		a.HealthTotal,
		a.TravelTotal,
		a.EntertainmentTotal,
		a.GamblingTotal,
		a.UtilitiesTotal,
		a.TaxTotal,
		a.FinesTotal,
	}
}

// ApplicantRequest is the wire form of an ApplicantRecord. Pointers let
// Record tell a missing field apart from an explicit zero.
type ApplicantRequest struct {
	Income             *float64 `json:"INCOME"`
	Savings            *float64 `json:"SAVINGS"`
	Debt               *float64 `json:"DEBT"`
	GroceriesTotal     *float64 `json:"T_GROCERIES_12"`
	ClothingTotal      *float64 `json:"T_CLOTHING_12"`
	HousingTotal       *float64 `json:"T_HOUSING_12"`
	EducationTotal     *float64 `json:"T_EDUCATION_12"`
	HealthTotal        *float64 `json:"T_HEALTH_12"`
	TravelTotal        *float64 `json:"T_TRAVEL_12"`
	EntertainmentTotal *float64 `json:"T_ENTERTAINMENT_12"`
	GamblingTotal      *float64 `json:"T_GAMBLING_12"`
	UtilitiesTotal     *float64 `json:"T_UTILITIES_12"`
	TaxTotal           *float64 `json:"T_TAX_12"`
	FinesTotal         *float64 `json:"T_FINES_12"`
}

type requestField struct {
	name  string
	value *float64
	dst   *float64
}

// Record validates the request and converts it into an ApplicantRecord.
// All 14 fields are required, finite, non-negative and at most MaxAmount.
func (r ApplicantRequest) Record() (ApplicantRecord, error) {
	var rec ApplicantRecord
	fields := []requestField{
		{"INCOME", r.Income, &rec.Income},
		{"SAVINGS", r.Savings, &rec.Savings},
		{"DEBT", r.Debt, &rec.Debt},
		{"T_GROCERIES_12", r.GroceriesTotal, &rec.GroceriesTotal},
		{"T_CLOTHING_12", r.ClothingTotal, &rec.ClothingTotal},
		{"T_HOUSING_12", r.HousingTotal, &rec.HousingTotal},
		{"T_EDUCATION_12", r.EducationTotal, &rec.EducationTotal},
		{"T_HEALTH_12", r.HealthTotal, &rec.HealthTotal},
		{"T_TRAVEL_12", r.TravelTotal, &rec.TravelTotal},
		{"T_ENTERTAINMENT_12", r.EntertainmentTotal, &rec.EntertainmentTotal},
		{"T_GAMBLING_12", r.GamblingTotal, &rec.GamblingTotal},
		{"T_UTILITIES_12", r.UtilitiesTotal, &rec.UtilitiesTotal},
		{"T_TAX_12", r.TaxTotal, &rec.TaxTotal},
		{"T_FINES_12", r.FinesTotal, &rec.FinesTotal},
	}

	var missing []string
	for _, f := range fields {
		if f.value == nil {
			missing = append(missing, f.name)
			continue
		}
		*f.dst = *f.value
	}
	if len(missing) > 0 {
		return ApplicantRecord{}, fmt.Errorf("%w: missing fields: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	if err := rec.Validate(); err != nil {
		return ApplicantRecord{}, err
	}
	return rec, nil
}

// Validate applies the basic bounds checks to every field.
func (a ApplicantRecord) Validate() error {
	values := []struct {
		name  string
		value float64
	}{
		{"INCOME", a.Income},
		{"SAVINGS", a.Savings},
		{"DEBT", a.Debt},
	}
	names := [NumSpendingCategories]string{
		"T_GROCERIES_12", "T_CLOTHING_12", "T_HOUSING_12", "T_EDUCATION_12",
		"T_HEALTH_12", "T_TRAVEL_12", "T_ENTERTAINMENT_12", "T_GAMBLING_12",
		"T_UTILITIES_12", "T_TAX_12", "T_FINES_12",
	}
	for i, v := range a.SpendingTotals() {
		values = append(values, struct {
			name  string
			value float64
		}{names[i], v})
	}

	for _, v := range values {
		switch {
		case math.IsNaN(v.value) || math.IsInf(v.value, 0):
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, v.name)
		case v.value < 0:
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, v.name)
		case v.value > MaxAmount:
			return fmt.Errorf("%w: %s exceeds the maximum of %.0f", ErrInvalidInput, v.name, MaxAmount)
		}
	}
	return nil
}
