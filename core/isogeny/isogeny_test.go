// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

package isogeny

import (
	"io"
	"math/big"
	"testing"

	"github.com/katzenpost/hpqc/hash"
	"github.com/katzenpost/hpqc/rand"
	"github.com/stretchr/testify/require"

	"github.com/katzenpost/matryoshka/core/fp"
	"github.com/katzenpost/matryoshka/core/fp/vartime"
	"github.com/katzenpost/matryoshka/core/montgomery"
	"github.com/katzenpost/matryoshka/core/opcount"
	"github.com/katzenpost/matryoshka/core/params"
	"github.com/katzenpost/matryoshka/internal/reference"
)

func testRNG(t *testing.T, label string) io.Reader {
	seed := hash.Sum256([]byte(label))
	rng, err := rand.NewDeterministicRandReader(seed[:])
	require.NoError(t, err)
	return rng
}

// requireSamePoint checks that two projective points have identical
// coordinates, not merely the same x.
func requireSamePoint[E any](t *testing.T, c *montgomery.Curve[E], want, got Point[E], msgAndArgs ...interface{}) {
	f := c.Field()
	require.Equal(t, f.ToBig(want.X), f.ToBig(got.X), msgAndArgs...)
	require.Equal(t, f.ToBig(want.Z), f.ToBig(got.Z), msgAndArgs...)
}

func constantTimeEngine(t *testing.T, set *params.Set) (*Engine[fp.Element], *opcount.Counter) {
	counter := opcount.New()
	f, err := fp.New(set.Prime(), counter)
	require.NoError(t, err)
	e, err := New[fp.Element](f, set)
	require.NoError(t, err)
	return e, counter
}

func vartimeEngine(t *testing.T, set *params.Set) (*Engine[vartime.Element], *opcount.Counter) {
	counter := opcount.New()
	e, err := New[vartime.Element](vartime.New(set.Prime(), counter), set)
	require.NoError(t, err)
	return e, counter
}

// referenceIsogeny returns the codomain coefficient and the x-coordinate map
// of the isogeny with kernel generated by the point of abscissa kernelX. A
// kernel on the twist of E_a is handled on E_{-a} via x -> -x.
func referenceIsogeny(t *testing.T, p, a, kernelX *big.Int, l uint64, twist bool) (*big.Int, func(*big.Int) *big.Int) {
	ref := reference.New(p, a)
	if twist {
		ref = ref.Twist()
		kernelX = ref.Neg(kernelX)
	}
	k, err := ref.LiftX(kernelX)
	require.NoError(t, err)
	require.True(t, ref.ScalarMult(k, new(big.Int).SetUint64(l)).Inf, "kernel point has the wrong order")

	iso := ref.NewIsogeny(k, int(l))
	if !twist {
		return iso.Codomain(), iso.Map
	}
	return ref.Neg(iso.Codomain()), func(x *big.Int) *big.Int {
		return ref.Neg(iso.Map(ref.Neg(x)))
	}
}

func TestNew(t *testing.T) {
	f, err := fp.New(params.P512.Prime(), nil)
	require.NoError(t, err)
	_, err = New[fp.Element](f, params.P103)
	require.ErrorIs(t, err, ErrFieldMismatch)
	_, err = New[fp.Element](f, nil)
	require.ErrorIs(t, err, params.ErrInvalidParameters)
}

func TestVelu(t *testing.T) {
	t.Run("fp", func(t *testing.T) {
		e, _ := constantTimeEngine(t, params.P103)
		testVelu(t, e)
	})
	t.Run("vartime", func(t *testing.T) {
		e, _ := vartimeEngine(t, params.P103)
		testVelu(t, e)
	})
}

// testVelu checks kernel multiples, the codomain and point evaluation of
// single isogenies against the affine model for every padding up to the
// batch maximum and a little past it.
func testVelu[E any](t *testing.T, e *Engine[E]) {
	require := require.New(t)
	rng := testRNG(t, "velu")
	c := e.Curve()
	set := e.Params()
	p := set.Prime()

	a := big.NewInt(0)
	for _, index := range []int{0, 1, 4, 7, 12, 20} {
		A := c.FromAffine(a)
		a24 := c.A24(A)
		l := set.Degree(index)
		d := int((l - 1) / 2)
		maxD := int((set.BatchMaxDegree(index)-1)/2) + 3

		s, err := e.SampleKernelPoint(A, index, false, rng)
		require.NoError(err)
		kernelX := c.Affine(s.Kernel)
		want, phi := referenceIsogeny(t, p, a, kernelX, l, false)

		ref := reference.New(p, a)
		k, err := ref.LiftX(kernelX)
		require.NoError(err)

		multiples := e.KernelMultiples(maxD, s.Kernel, a24)
		require.Len(multiples, maxD)
		require.Equal(1, c.Equivalent(s.Kernel, multiples[0]))
		for i := 1; i <= maxD && uint64(i) < l; i++ {
			require.Equal(ref.ScalarMult(k, big.NewInt(int64(i))).X, c.Affine(multiples[i-1]), "multiple %d", i)
		}

		hats := e.Hats(multiples)
		var codomain Coefficients[E]
		for dFake := d; dFake <= maxD; dFake++ {
			codomain = e.IsogenousCurve(d, dFake, hats[:dFake], A)
			require.Equal(want, c.Affine(codomain), "degree %d padded to %d", l, dFake)

			image := e.EvaluateAt(d, dFake, hats[:dFake], s.Plus)
			require.Equal(phi(c.Affine(s.Plus)), c.Affine(image))
		}

		a = c.Affine(codomain)
	}
}

func TestMatryoshka(t *testing.T) {
	t.Run("fp", func(t *testing.T) {
		e, counter := constantTimeEngine(t, params.P103)
		testMatryoshka(t, e, counter)
	})
	t.Run("vartime", func(t *testing.T) {
		e, counter := vartimeEngine(t, params.P103)
		testMatryoshka(t, e, counter)
	})
}

// testMatryoshka walks a few curves from a = 0 and checks, for every batch,
// that several of its degrees give correct results with identical operation
// counts and no inversions.
func testMatryoshka[E any](t *testing.T, e *Engine[E], counter *opcount.Counter) {
	require := require.New(t)
	rng := testRNG(t, "matryoshka")
	c := e.Curve()
	set := e.Params()
	p := set.Prime()

	a := big.NewInt(0)
	for walk := 0; walk < 3; walk++ {
		pushCount := walk % (MaxPush + 1)
		A := c.FromAffine(a)
		next := a

		for b := 0; b < set.NumBatches(); b++ {
			start, stop := set.Batch(b)
			indices := []int{start, (start + stop) / 2, stop - 1}

			var counts []opcount.Counts
			var aNext *big.Int
			for n, index := range indices {
				twist := (walk+b+n)%2 == 1
				s, err := e.SampleKernelPoint(A, index, twist, rng)
				require.NoError(err)
				ts := [MaxPush]Point[E]{s.Plus, s.Minus}

				counter.Reset()
				aNew, images := e.Matryoshka(A, ts, pushCount, s.Kernel, index)
				got := counter.Snapshot()
				require.Zero(got.Inv)
				counts = append(counts, got)

				want, phi := referenceIsogeny(t, p, a, c.Affine(s.Kernel), set.Degree(index), twist)
				require.Equal(want, c.Affine(aNew), "batch %d index %d twist %v", b, index, twist)
				for j := range ts {
					if j < pushCount {
						require.Equal(phi(c.Affine(ts[j])), c.Affine(images[j]), "slot %d", j)
					} else {
						requireSamePoint(t, c, ts[j], images[j], "slot %d", j)
					}
				}
				aNext = want
			}
			for _, got := range counts[1:] {
				require.Equal(counts[0], got, "batch %d", b)
			}
			if b == walk {
				next = aNext
			}
		}
		a = next
	}
}

func TestMatryoshkaCountsIgnorePushCount(t *testing.T) {
	require := require.New(t)
	e, counter := constantTimeEngine(t, params.P103)
	c := e.Curve()
	A := c.FromAffine(big.NewInt(0))
	rng := testRNG(t, "push count")

	var first opcount.Counts
	for pushCount := 0; pushCount <= MaxPush; pushCount++ {
		s, err := e.SampleKernelPoint(A, 10, false, rng)
		require.NoError(err)

		counter.Reset()
		e.Matryoshka(A, [MaxPush]Point[fp.Element]{s.Plus, s.Minus}, pushCount, s.Kernel, 10)
		got := counter.Snapshot()
		if pushCount == 0 {
			first = got
			continue
		}
		require.Equal(first, got, "push count %d", pushCount)
	}
	// Two exponentiations for the Edwards coefficients, no inversions.
	require.Equal(uint64(2), first.Pow)
	require.Zero(first.Inv)
}

// TestSmallestDegreeFromStartingCurve pushes one elligator point through the
// degree L[0] isogeny out of y^2 = x^3 + x.
func TestSmallestDegreeFromStartingCurve(t *testing.T) {
	for _, set := range []*params.Set{params.P103, params.P512} {
		t.Run(set.Name(), func(t *testing.T) {
			require := require.New(t)
			e, counter := constantTimeEngine(t, set)
			c := e.Curve()
			A := c.FromAffine(big.NewInt(0))

			s, err := e.SampleKernelPoint(A, 0, false, testRNG(t, "scenario "+set.Name()))
			require.NoError(err)
			t0, _, err := c.Elligator(A, testRNG(t, "scenario push "+set.Name()))
			require.NoError(err)

			counter.Reset()
			aNew, images := e.Matryoshka(A, [MaxPush]Point[fp.Element]{t0, s.Minus}, 1, s.Kernel, 0)
			require.Zero(counter.Snapshot().Inv)

			want, phi := referenceIsogeny(t, set.Prime(), big.NewInt(0), c.Affine(s.Kernel), set.Degree(0), false)
			require.Equal(want, c.Affine(aNew))
			require.Equal(phi(c.Affine(t0)), c.Affine(images[0]))
			requireSamePoint(t, c, s.Minus, images[1])
		})
	}
}

func TestPreconditions(t *testing.T) {
	require := require.New(t)
	e, _ := constantTimeEngine(t, params.P103)
	c := e.Curve()
	A := c.FromAffine(big.NewInt(0))
	a24 := c.A24(A)
	p := c.FromAffine(big.NewInt(5))
	var ts [MaxPush]Point[fp.Element]

	require.Panics(func() { e.Matryoshka(A, ts, 3, p, 0) })
	require.Panics(func() { e.Matryoshka(A, ts, -1, p, 0) })
	require.Panics(func() { e.Matryoshka(A, ts, 1, p, -1) })
	require.Panics(func() { e.Matryoshka(A, ts, 1, p, params.P103.NumDegrees()) })

	require.Panics(func() { e.KernelMultiples(0, p, a24) })

	hats := e.Hats(e.KernelMultiples(4, p, a24))
	require.Panics(func() { e.IsogenousCurve(2, 3, hats, A) })
	require.Panics(func() { e.IsogenousCurve(5, 4, hats, A) })
	require.Panics(func() { e.EvaluateAt(0, 4, hats, p) })
	require.NotPanics(func() { e.EvaluateAt(1, 4, hats, p) })
}

type zeroReader struct{}

func (zeroReader) Read(b []byte) (int, error) {
	for i := range b {
		b[i] = 0
	}
	return len(b), nil
}

func TestSampleKernelPoint(t *testing.T) {
	require := require.New(t)
	e, _ := constantTimeEngine(t, params.P103)
	c := e.Curve()
	A := c.FromAffine(big.NewInt(0))
	a24 := c.A24(A)

	for _, twist := range []bool{false, true} {
		s, err := e.SampleKernelPoint(A, 3, twist, testRNG(t, "sample"))
		require.NoError(err)
		require.Equal(twist, s.Twist)
		require.GreaterOrEqual(s.Attempts, 1)
		require.False(c.IsInfinity(s.Kernel))
		require.True(c.IsInfinity(e.MulPublic(s.Kernel, a24, 3)))
	}

	// u = 0 maps y^2 = x^3 + x to the 2-torsion point (0, 0) on both sides.
	_, err := e.SampleKernelPoint(A, 3, false, zeroReader{})
	require.ErrorIs(err, ErrSampleExhausted)

	_, err = e.SampleKernelPoint(A, 3, false, io.LimitReader(zeroReader{}, 0))
	require.Error(err)
	require.NotErrorIs(err, ErrSampleExhausted)
}
