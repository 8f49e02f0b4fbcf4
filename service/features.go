package service

import "credit-score/domain"

// DeriveFeatures computes the model inputs for one applicant. It is pure and
// never divides by zero: every ratio has a fixed fallback.
func DeriveFeatures(rec domain.ApplicantRecord) domain.DerivedFeatures {
	dti := DTIFallback
	sti := STIFallback
	if rec.Income > 0 {
		dti = rec.Debt / rec.Income
		sti = rec.Savings / rec.Income
	}

	cur := CURFallback
	if resources := rec.Debt + rec.Savings + rec.Income; resources > 0 {
		cur = rec.Debt / resources
	}

	total := 0.0
	for _, v := range rec.SpendingTotals() {
		total += v
	}

	gambling := 0.0
	if total > 0 {
		gambling = rec.GamblingTotal / total
	}

	return domain.DerivedFeatures{
		DTI:                dti,
		STI:                sti,
		CUR:                cur,
		TotalSpending:      total,
		GamblingPercentage: gambling,
		IsHighDebt:         flag(dti > HighDebtDTICutoff),
		IsLowSavings:       flag(sti < LowSavingsSTICutoff),
	}
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
