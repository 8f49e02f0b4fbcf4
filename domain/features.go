package domain

import "math"

// NumFeatures is the arity of the vector fed to the model.
const NumFeatures = 7

// Feature indexes a derived feature inside a FeatureVector.
type Feature int

const (
	FeatureDTI Feature = iota
	FeatureSTI
	FeatureCUR
	FeatureTotalSpending
	FeatureGamblingPercentage
	FeatureIsHighDebt
	FeatureIsLowSavings
)

// FeatureNames lists the model inputs in the order the model expects them.
var FeatureNames = [NumFeatures]string{
	"DTI",
	"STI",
	"CUR",
	"TOTAL_SPENDING",
	"GAMBLING_PERCENTAGE",
	"IS_HIGH_DEBT",
	"IS_LOW_SAVINGS",
}

func (f Feature) String() string {
	if f < 0 || int(f) >= NumFeatures {
		return "UNKNOWN"
	}
	return FeatureNames[f]
}

// FeatureVector is the ordered model input.
type FeatureVector [NumFeatures]float64

// DerivedFeatures are computed from one ApplicantRecord and never persisted
// on their own.
type DerivedFeatures struct {
	DTI                float64 `json:"DTI"`
	STI                float64 `json:"STI"`
	CUR                float64 `json:"CUR"`
	TotalSpending      float64 `json:"TOTAL_SPENDING"`
	GamblingPercentage float64 `json:"GAMBLING_PERCENTAGE"`
	IsHighDebt         int     `json:"IS_HIGH_DEBT"`
	IsLowSavings       int     `json:"IS_LOW_SAVINGS"`
}

// Vector returns the features in model order.
func (d DerivedFeatures) Vector() FeatureVector {
	return FeatureVector{
		FeatureDTI:                d.DTI,
		FeatureSTI:                d.STI,
		FeatureCUR:                d.CUR,
		FeatureTotalSpending:      d.TotalSpending,
		FeatureGamblingPercentage: d.GamblingPercentage,
		FeatureIsHighDebt:         float64(d.IsHighDebt),
		FeatureIsLowSavings:       float64(d.IsLowSavings),
	}
}

// Human readable keys of the financial_metrics response object.
const (
	MetricDTI                = "DEBT TO INCOME RATIO( Measures how much of a person’s income is used to pay off debts)"
	MetricSTI                = "SAVINGS TO INCOME RATIO( Measures how much a person saves relative to their income.)"
	MetricCUR                = "CREDIT UTILIZATION RATIO(Measures how much of a person’s financial resources are tied up in debt.)"
	MetricTotalSpending      = "TOTAL_SPENDING"
	MetricGamblingPercentage = "GAMBLING_PERCENTAGE"
	MetricIsHighDebt         = "IS_HIGH_DEBT"
	MetricIsLowSavings       = "IS_LOW_SAVINGS"
)

// Metrics returns the presentation map, every value rounded to 2 decimals.
func (d DerivedFeatures) Metrics() map[string]float64 {
	return map[string]float64{
		MetricDTI:                RoundTo2Decimals(d.DTI),
		MetricSTI:                RoundTo2Decimals(d.STI),
		MetricCUR:                RoundTo2Decimals(d.CUR),
		MetricTotalSpending:      RoundTo2Decimals(d.TotalSpending),
		MetricGamblingPercentage: RoundTo2Decimals(d.GamblingPercentage),
		MetricIsHighDebt:         float64(d.IsHighDebt),
		MetricIsLowSavings:       float64(d.IsLowSavings),
	}
}

// RoundTo2Decimals rounds half away from zero to 2 decimal places.
func RoundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}
