// Package distance implements the three pure distance kernels the index and
// collection layers minimize over: l2, cosine, and (negated) dot product.
// l2 is a tight per-dimension loop; cosine and dot take their inner products
// from vek32.Dot. All three work on plain []float32 with no allocation and no
// iterator abstraction, so they stay cheap in the innermost loop of search
// and insertion.
package distance

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"
)

// Metric names recognized by New.
const (
	L2     = "l2"
	Cosine = "cosine"
	Dot    = "dot"
)

// Func computes the distance between two vectors of equal length. Smaller is
// more similar. Implementations assume len(a) == len(b); callers validate
// dimension before calling.
type Func func(a, b []float32) float32

// New resolves a metric name to its Func, or reports InvalidArgument-shaped
// ambiguity via a plain error (the collection/index layers translate that
// into a *vecdberr.Error with the right Kind — this package has no
// dependency on vecdberr to stay leaf-level).
func New(metric string) (Func, error) {
	switch metric {
	case L2:
		return L2Distance, nil
	case Cosine:
		return CosineDistance, nil
	case Dot:
		return DotDistance, nil
	default:
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
}

// L2Distance returns the Euclidean distance between a and b.
func L2Distance(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math32.Sqrt(sum)
}

// CosineDistance returns 1 - cos(a,b), clamped to [0, 2]. Either input
// having zero norm is defined to return 1.0 rather than letting a 0/0
// division escape as NaN.
func CosineDistance(a, b []float32) float32 {
	dot := vek32.Dot(a, b)
	normA := math32.Sqrt(vek32.Dot(a, a))
	normB := math32.Sqrt(vek32.Dot(b, b))

	if normA == 0 || normB == 0 {
		return 1.0
	}

	cos := dot / (normA * normB)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}

	d := 1 - cos
	if d < 0 {
		d = 0
	} else if d > 2 {
		d = 2
	}
	return d
}

// DotDistance returns -<a,b>, so that minimizing distance maximizes inner
// product (consistent with the other two metrics, where smaller is better).
func DotDistance(a, b []float32) float32 {
	return -vek32.Dot(a, b)
}
