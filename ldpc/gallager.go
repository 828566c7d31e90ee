package ldpc

import (
	"fmt"
	"math/rand"

	mat "github.com/nathanhack/sparsemat"
	"github.com/sirupsen/logrus"
)

// Gallager creates a regular parity check matrix with n columns of weight wc and
// rows of weight wr. The first band of n/wr rows has consecutive ones, the other
// wc-1 bands are column shuffles of it drawn from seed.
func Gallager(n, wc, wr int, seed int64) (mat.SparseMat, error) {
	if wc < 2 {
		return nil, fmt.Errorf("wc must be greater than or equal to 2")
	}
	if wc >= wr {
		return nil, fmt.Errorf("wc (%v) must be less than wr (%v)", wc, wr)
	}
	if n <= 0 || n%wr != 0 {
		return nil, fmt.Errorf("wr (%v) must divide n (%v)", wr, n)
	}

	band := n / wr
	H := mat.DOKMat(band*wc, n)
	r := rand.New(rand.NewSource(seed))
	for s := 0; s < wc; s++ {
		offset := s * band
		if s == 0 {
			for col := 0; col < n; col++ {
				H.Set(col/wr, col, 1)
			}
			continue
		}
		// column col of this band is column perm[col] of the first band
		perm := r.Perm(n)
		for col, from := range perm {
			H.Set(offset+from/wr, col, 1)
		}
	}
	logrus.Debugf("gallager H %vx%v, wc %v, wr %v", band*wc, n, wc, wr)
	return H, nil
}
