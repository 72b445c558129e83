package money

import "github.com/shopspring/decimal"

// Round2 rounds half away from zero to two decimal places.
func Round2(f float64) float64 {
	out, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return out
}

// Line is price*qty plus the flat add-on prices, computed in decimal.
func Line(price float64, qty int, addOns ...float64) decimal.Decimal {
	d := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty)))
	for _, a := range addOns {
		d = d.Add(decimal.NewFromFloat(a))
	}
	return d
}

// Sum adds values in decimal and rounds the result to two places.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	out, _ := total.Round(2).Float64()
	return out
}

// Mean returns the arithmetic mean rounded to two places, 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	out, _ := total.Div(decimal.NewFromInt(int64(len(values)))).Round(2).Float64()
	return out
}

func Float(d decimal.Decimal) float64 {
	out, _ := d.Round(2).Float64()
	return out
}
