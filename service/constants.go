package service

import "time"

const (
	// ApprovalThreshold is the lowest score that is APPROVED.
	ApprovalThreshold = 700.0

	// Zero-denominator fallbacks. DTI and CUR fall back to the riskiest value.
	DTIFallback = 1.0
	STIFallback = 0.0
	CURFallback = 1.0

	HighDebtDTICutoff    = 0.5 // IS_HIGH_DEBT when DTI is above
	LowSavingsSTICutoff  = 0.2 // IS_LOW_SAVINGS when STI is below
	TopReasonCount       = 3
	DefaultNarratorLimit = 5 * time.Second

	ApprovedMessage     = "Your credit score is good, and the loan is approved."
	ExplanationHeader   = "Loan Decision Based On:\n"
	NarrationErrorLabel = "AI Explanation Error: "
)
