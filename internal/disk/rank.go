// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package disk

import "math"

// wilsonZ is the z-score the popularity ranking has always used,
// roughly a one-sided 84% confidence level.
const wilsonZ = 1.0

// Rank computes the popularity score of a disc from its up and down
// rating counts: the lower bound of the Wilson score interval on the
// proportion of up votes. A disc nobody rated scores 0; the score
// rises with more up votes at fixed downs and always stays in [0, 1].
func Rank(ups, downs int) float64 {
	n := float64(ups + downs)
	if n == 0 {
		return 0
	}
	z := wilsonZ
	phat := float64(ups) / n
	return (phat + z*z/(2*n) - z*math.Sqrt((phat*(1-phat)+z*z/(4*n))/n)) /
		(1 + z*z/n)
}
