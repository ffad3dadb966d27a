// Package kitting holds the pure arithmetic used when material is kitted against pulltags.
package kitting

import "github.com/shopspring/decimal"

// Allocate splits total whole units across rows in proportion to weights.
//
// Each row first gets floor(weight*total/sum). The units left over go one at a time,
// in row order, to rows that can take one more without exceeding their weight; if no row
// can, they go in plain row order. When every weight is zero the total is split evenly.
// Negative weights count as zero.
//
// The result sums to total for any non-empty weights and total >= 0.
func Allocate(weights []decimal.Decimal, total int64) []int64 {
	n := len(weights)
	out := make([]int64, n)
	if n == 0 || total <= 0 {
		return out
	}

	sum := decimal.Zero
	for _, w := range weights {
		if w.IsPositive() {
			sum = sum.Add(w)
		}
	}

	var given int64
	if sum.IsZero() {
		share := total / int64(n)
		for i := range out {
			out[i] = share
		}
		given = share * int64(n)
	} else {
		t := decimal.NewFromInt(total)
		for i, w := range weights {
			if !w.IsPositive() {
				continue
			}
			q, _ := w.Mul(t).QuoRem(sum, 0)
			out[i] = q.IntPart()
			given += out[i]
		}
	}

	remainder := total - given
	headroom := func(i int) bool {
		if sum.IsZero() {
			return true
		}
		return decimal.NewFromInt(out[i] + 1).LessThanOrEqual(weights[i])
	}

	for remainder > 0 {
		progressed := false
		for i := 0; i < n && remainder > 0; i++ {
			if headroom(i) {
				out[i]++
				remainder--
				progressed = true
			}
		}
		if !progressed {
			for i := 0; remainder > 0; i = (i + 1) % n {
				out[i]++
				remainder--
			}
		}
	}
	return out
}
