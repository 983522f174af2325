package base

// maxBinomial bounds the precomputed Pascal triangle.
const maxBinomial = 64

var binomialTable = func() [maxBinomial + 1][maxBinomial + 1]float64 {
	var t [maxBinomial + 1][maxBinomial + 1]float64
	for n := 0; n <= maxBinomial; n++ {
		t[n][0] = 1
		for k := 1; k <= n; k++ {
			t[n][k] = t[n-1][k-1] + t[n-1][k]
		}
	}
	return t
}()

// Binomial returns the binomial coefficient C(n, k) as a float64. Values
// outside the triangle (k < 0 or k > n) are zero.
func Binomial(n, k int) float64 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	if n <= maxBinomial {
		return binomialTable[n][k]
	}
	if k > n-k {
		k = n - k
	}
	r := 1.0
	for d := 1; d <= k; d++ {
		r *= float64(n-k+d) / float64(d)
	}
	return r
}
