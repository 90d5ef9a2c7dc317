package world

import "math"

// ZigZag maps signed integers onto naturals: 0,-1,1,-2,2 -> 0,1,2,3,4
func ZigZag(v int) uint64 {
	if v >= 0 {
		return uint64(v) << 1
	}
	return uint64(-v)<<1 - 1
}

// UnZigZag is the inverse of ZigZag
func UnZigZag(n uint64) int {
	if n&1 == 0 {
		return int(n >> 1)
	}
	return -int((n + 1) >> 1)
}

// Pair maps two signed integers to one natural with the Cantor pairing
// function over their zigzag encodings. It is a bijection.
func Pair(a, b int) uint64 {
	x, y := ZigZag(a), ZigZag(b)
	return (x+y)*(x+y+1)/2 + y
}

// Unpair is the inverse of Pair
func Unpair(p uint64) (a, b int) {
	w := uint64((math.Sqrt(float64(8*p+1)) - 1) / 2)
	// correct float rounding at large inputs
	for w*(w+1)/2 > p {
		w--
	}
	for (w+1)*(w+2)/2 <= p {
		w++
	}
	t := w * (w + 1) / 2
	y := p - t
	x := w - y
	return UnZigZag(x), UnZigZag(y)
}
