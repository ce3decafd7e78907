// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package biometric

// Confusion holds the classification counts at one threshold.
type Confusion struct {
	TP int `json:"tp"`
	TN int `json:"tn"`
	FP int `json:"fp"`
	FN int `json:"fn"`
}

// Add returns the element-wise sum of two tuples.
func (c Confusion) Add(o Confusion) Confusion {
	return Confusion{
		TP: c.TP + o.TP,
		TN: c.TN + o.TN,
		FP: c.FP + o.FP,
		FN: c.FN + o.FN,
	}
}

// Rate formulas follow the ISO/IEC 30107-3 naming; the denominators are shared
// between the DET and ROC readings of the same tuple.

// APCER computes FN / (TP + FN).
func (c Confusion) APCER(threshold float64) (float64, error) {
	return ratio("APCER", c.FN, c.TP+c.FN, threshold)
}

// BPCER computes FP / (FP + TN).
func (c Confusion) BPCER(threshold float64) (float64, error) {
	return ratio("BPCER", c.FP, c.FP+c.TN, threshold)
}

// TPR computes TP / (TP + FN).
func (c Confusion) TPR(threshold float64) (float64, error) {
	return ratio("TPR", c.TP, c.TP+c.FN, threshold)
}

// FPR computes FP / (FP + TN).
func (c Confusion) FPR(threshold float64) (float64, error) {
	return ratio("FPR", c.FP, c.FP+c.TN, threshold)
}

func ratio(name string, num, denom int, threshold float64) (float64, error) {
	if denom == 0 {
		return 0, &DegenerateRateError{Rate: name, Threshold: threshold}
	}
	return float64(num) / float64(denom), nil
}
