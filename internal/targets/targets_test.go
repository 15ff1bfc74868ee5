package targets

import (
	"math"
	"testing"

	"github.com/StefanSko/go-mcmc/pkg/ptree"
)

// perturb returns a copy of q with one flat element offset by h. Leaves are
// indexed in deterministic walk order.
func perturb(q *ptree.Tree, flat int, h float32) *ptree.Tree {
	out := q.Clone()
	i := 0
	out.Walk(func(_ string, leaf *ptree.Tensor) {
		for j := range leaf.Data {
			if i == flat {
				leaf.Data[j] += h
			}
			i++
		}
	})
	return out
}

// flatten returns the gradient elements in walk order.
func flatten(g *ptree.Tree) []float64 {
	var out []float64
	g.Walk(func(_ string, leaf *ptree.Tensor) {
		for _, v := range leaf.Data {
			out = append(out, float64(v))
		}
	})
	return out
}

// TestGradientsMatchFiniteDifferences validates every built-in analytic
// gradient against a central finite difference of its log-density at an
// asymmetric off-origin point.
func TestGradientsMatchFiniteDifferences(t *testing.T) {
	const h = 1e-3
	points := map[string][]float32{
		"std-normal":        {0.73},
		"correlated-normal": {0.41, -0.87},
		"funnel":            {0.9, 0.3, -0.6, 0.2, -0.1, 0.5, -0.4, 0.7, -0.2},
		"banana":            {1.3, -0.4},
	}

	for _, name := range Names() {
		target, err := Lookup(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		q := target.Init()
		vals := points[name]
		i := 0
		q.Walk(func(_ string, leaf *ptree.Tensor) {
			for j := range leaf.Data {
				leaf.Data[j] = vals[i]
				i++
			}
		})

		analytic := flatten(target.Grad(q))
		for e := range analytic {
			up := target.LogProb(perturb(q, e, h))
			down := target.LogProb(perturb(q, e, -h))
			numeric := (up - down) / (2 * h)
			diff := math.Abs(numeric - analytic[e])
			scale := math.Max(1, math.Abs(analytic[e]))
			if diff/scale > 2e-2 {
				t.Errorf("%s: gradient element %d: analytic %v, numeric %v", name, e, analytic[e], numeric)
			}
		}
	}
}

// TestGradientStructure requires every gradient to mirror the input
// structure, the contract the sampler validates at entry.
func TestGradientStructure(t *testing.T) {
	for _, name := range Names() {
		target, _ := Lookup(name)
		q := target.Init()
		if !ptree.SameStructure(q, target.Grad(q)) {
			t.Fatalf("%s: gradient structure differs from input", name)
		}
	}
}

// TestLookupUnknown returns the sentinel error for unregistered names.
func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("no-such-target"); err == nil {
		t.Fatal("expected an error for an unknown target")
	}
}

// TestNamesSorted pins the registry listing order.
func TestNamesSorted(t *testing.T) {
	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
	if len(names) != 4 {
		t.Fatalf("expected 4 built-in targets, got %v", names)
	}
}
