package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullRequest = `{
	"INCOME": 5000, "SAVINGS": 1000, "DEBT": 4000,
	"T_GROCERIES_12": 1, "T_CLOTHING_12": 2, "T_HOUSING_12": 3,
	"T_EDUCATION_12": 4, "T_HEALTH_12": 5, "T_TRAVEL_12": 6,
	"T_ENTERTAINMENT_12": 7, "T_GAMBLING_12": 8, "T_UTILITIES_12": 9,
	"T_TAX_12": 10, "T_FINES_12": 11
}`

func TestApplicantRequest_Record(t *testing.T) {
	var req ApplicantRequest
	require.NoError(t, json.Unmarshal([]byte(fullRequest), &req))

	rec, err := req.Record()
	require.NoError(t, err)
	assert.Equal(t, 5000.0, rec.Income)
	assert.Equal(t, 1000.0, rec.Savings)
	assert.Equal(t, 4000.0, rec.Debt)
	assert.Equal(t, [NumSpendingCategories]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, rec.SpendingTotals())
}

func TestApplicantRequest_MissingFields(t *testing.T) {
	var req ApplicantRequest
	require.NoError(t, json.Unmarshal([]byte(`{"INCOME": 5000, "DEBT": 0}`), &req))

	_, err := req.Record()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "SAVINGS")
	assert.Contains(t, err.Error(), "T_FINES_12")
	assert.NotContains(t, err.Error(), "INCOME")
}

func TestApplicantRequest_ZeroIsNotMissing(t *testing.T) {
	zero := 0.0
	req := ApplicantRequest{
		Income: &zero, Savings: &zero, Debt: &zero,
		GroceriesTotal: &zero, ClothingTotal: &zero, HousingTotal: &zero,
		EducationTotal: &zero, HealthTotal: &zero, TravelTotal: &zero,
		EntertainmentTotal: &zero, GamblingTotal: &zero, UtilitiesTotal: &zero,
		TaxTotal: &zero, FinesTotal: &zero,
	}
	rec, err := req.Record()
	require.NoError(t, err)
	assert.Equal(t, ApplicantRecord{}, rec)
}

func TestApplicantRecord_Validate(t *testing.T) {
	cases := []struct {
		name string
		rec  ApplicantRecord
		msg  string
	}{
		{"negative income", ApplicantRecord{Income: -1}, "INCOME must not be negative"},
		{"negative spending", ApplicantRecord{Income: 1, TaxTotal: -5}, "T_TAX_12 must not be negative"},
		{"nan", ApplicantRecord{Savings: math.NaN()}, "SAVINGS must be a finite number"},
		{"inf", ApplicantRecord{GamblingTotal: math.Inf(1)}, "T_GAMBLING_12 must be a finite number"},
		{"too large", ApplicantRecord{Debt: MaxAmount * 2}, "DEBT exceeds the maximum"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rec.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}

	assert.NoError(t, ApplicantRecord{Income: 10, Savings: 5}.Validate())
}
