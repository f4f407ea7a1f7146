package distance

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-5

func naiveL2(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}

func naiveCosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1.0
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return float32(1 - cos)
}

func naiveDot(a, b []float32) float32 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(-dot)
}

func randomVector(r *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = r.Float32()*2 - 1
	}
	return v
}

func TestKernels_MatchNaiveReference(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		a := randomVector(r, 32)
		b := randomVector(r, 32)

		assert.InDelta(t, naiveL2(a, b), L2Distance(a, b), epsilon)
		assert.InDelta(t, naiveCosine(a, b), CosineDistance(a, b), epsilon)
		assert.InDelta(t, naiveDot(a, b), DotDistance(a, b), epsilon)
	}
}

func TestL2Distance_SelfIsZero(t *testing.T) {
	x := []float32{1, 2, 3, 4}
	assert.InDelta(t, float32(0), L2Distance(x, x), epsilon)
}

func TestCosineDistance_SelfIsZeroForNonzeroVector(t *testing.T) {
	x := []float32{1, 2, 3, 4}
	assert.InDelta(t, float32(0), CosineDistance(x, x), epsilon)
}

func TestCosineDistance_ZeroNormReturnsOne(t *testing.T) {
	zero := []float32{0, 0, 0}
	nonzero := []float32{1, 2, 3}

	assert.Equal(t, float32(1.0), CosineDistance(zero, nonzero))
	assert.Equal(t, float32(1.0), CosineDistance(zero, zero))
}

func TestDotDistance_NegatesInnerProduct(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}
	assert.InDelta(t, float32(-32), DotDistance(a, b), epsilon)
}

func TestNew_ResolvesKnownMetrics(t *testing.T) {
	for _, m := range []string{L2, Cosine, Dot} {
		fn, err := New(m)
		require.NoError(t, err)
		require.NotNil(t, fn)
	}
}

func TestNew_RejectsUnknownMetric(t *testing.T) {
	_, err := New("manhattan")
	require.Error(t, err)
}
