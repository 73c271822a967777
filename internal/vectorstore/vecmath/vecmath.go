// Package vecmath has the small vector helpers shared by the local stores.
package vecmath

import (
	"encoding/binary"
	"errors"
	"math"
	"sort"
)

func Dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Cosine returns the cosine similarity of a and b, 0 when either is zero.
func Cosine(a, b []float64) float64 {
	na, nb := math.Sqrt(Dot(a, a)), math.Sqrt(Dot(b, b))
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// ArgsortDesc returns indexes of vals ordered by descending value. Ties keep
// their original order.
func ArgsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool { return vals[idxs[i]] > vals[idxs[j]] })
	return idxs
}

// Encode packs v as little-endian float64s.
func Encode(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

// Decode is the inverse of Encode.
func Decode(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, errors.New("vecmath: blob length is not a multiple of 8")
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}
