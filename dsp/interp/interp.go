package interp

// FracBits is the number of fractional bits in a 16.16 fixed-point read
// position. FracOne is the fixed-point value of one sample.
const (
	FracBits = 16
	FracOne  = 1 << FracBits
	FracMask = FracOne - 1
)

// Frac16 converts the low 16 bits of a fixed-point position to [0, 1).
func Frac16(frac int64) float64 {
	return float64(frac&FracMask) * (1.0 / FracOne)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
