package model

import "math"

// Metrics summarizes regression error on a held-out set.
type Metrics struct {
	MAE  float64 `json:"mae"`
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}

// Evaluate scores m against every row of ds.
func Evaluate(m Regressor, ds Dataset) Metrics {
	n := float64(ds.Len())
	if n == 0 {
		return Metrics{}
	}

	mean := 0.0
	for _, y := range ds.Y {
		mean += y
	}
	mean /= n

	var absErr, sqErr, total float64
	for i, x := range ds.X {
		d := ds.Y[i] - m.Predict(x)
		absErr += math.Abs(d)
		sqErr += d * d
		total += (ds.Y[i] - mean) * (ds.Y[i] - mean)
	}

	out := Metrics{
		MAE:  absErr / n,
		MSE:  sqErr / n,
		RMSE: math.Sqrt(sqErr / n),
	}
	if total > 0 {
		out.R2 = 1 - sqErr/total
	}
	return out
}
