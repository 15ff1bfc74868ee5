// Package targets ships built-in differentiable log-densities with analytic
// gradients. They power the CLI, the HTTP API, and the end-to-end sampler
// tests: a standard normal, a correlated 2-D normal, Neal's funnel, and a
// banana-shaped posterior.
package targets

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/StefanSko/go-mcmc/pkg/ptree"
)

// ErrUnknownTarget is returned by Lookup for names not in the registry.
var ErrUnknownTarget = errors.New("unknown target")

// Target couples a log-density with its gradient and a canonical starting
// position.
type Target struct {
	Name    string
	Desc    string
	Init    func() *ptree.Tree
	LogProb func(q *ptree.Tree) float64
	Grad    func(q *ptree.Tree) *ptree.Tree
}

var registry = map[string]*Target{}

func register(t *Target) {
	registry[t.Name] = t
}

// Lookup resolves a target by name.
func Lookup(name string) (*Target, error) {
	t, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
	}
	return t, nil
}

// Names lists the registered targets in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	register(stdNormal())
	register(correlatedNormal())
	register(funnel())
	register(banana())
}

// stdNormal is an isotropic unit normal in one dimension:
// logProb(x) = -x²/2.
func stdNormal() *Target {
	return &Target{
		Name: "std-normal",
		Desc: "standard normal, 1 dimension",
		Init: func() *ptree.Tree {
			return ptree.Scalar(0)
		},
		LogProb: func(q *ptree.Tree) float64 {
			x := float64(q.Leaf.Data[0])
			return -0.5 * x * x
		},
		Grad: func(q *ptree.Tree) *ptree.Tree {
			return ptree.Scale(q, -1)
		},
	}
}

// correlatedNormal is a 2-D zero-mean normal with unit variances and
// correlation 0.8. The precision matrix is analytic:
// Σ⁻¹ = [[1, -ρ], [-ρ, 1]] / (1 - ρ²).
func correlatedNormal() *Target {
	const rho = 0.8
	prec := 1 / (1 - rho*rho)
	return &Target{
		Name: "correlated-normal",
		Desc: "2-d normal, correlation 0.8",
		Init: func() *ptree.Tree {
			return ptree.Vector(0, 0)
		},
		LogProb: func(q *ptree.Tree) float64 {
			x := float64(q.Leaf.Data[0])
			y := float64(q.Leaf.Data[1])
			return -0.5 * prec * (x*x - 2*rho*x*y + y*y)
		},
		Grad: func(q *ptree.Tree) *ptree.Tree {
			x := float64(q.Leaf.Data[0])
			y := float64(q.Leaf.Data[1])
			g := ptree.ZerosLike(q)
			g.Leaf.Data[0] = float32(-prec * (x - rho*y))
			g.Leaf.Data[1] = float32(-prec * (y - rho*x))
			return g
		},
	}
}

// funnel is Neal's funnel: v ~ N(0, 3), x_i | v ~ N(0, exp(v/2)) for
// i = 1..8, with exp(v/2) the conditional standard deviation. The joint
// log-density is
//
//	-v²/18 - (n/2)·v - e^{-v}/2 · Σ x_i²
//
// up to a constant. Its neck makes it the canonical stress test for
// step-size and mass adaptation.
func funnel() *Target {
	const n = 8
	return &Target{
		Name: "funnel",
		Desc: "Neal's funnel, 1+8 dimensions",
		Init: func() *ptree.Tree {
			return ptree.Branch(map[string]*ptree.Tree{
				"v": ptree.Scalar(0),
				"x": ptree.FromTensor(ptree.NewTensor(n)),
			})
		},
		LogProb: func(q *ptree.Tree) float64 {
			v := float64(q.Children["v"].Leaf.Data[0])
			var sumSq float64
			for _, xi := range q.Children["x"].Leaf.Data {
				sumSq += float64(xi) * float64(xi)
			}
			return -v*v/18 - float64(n)/2*v - 0.5*math.Exp(-v)*sumSq
		},
		Grad: func(q *ptree.Tree) *ptree.Tree {
			v := float64(q.Children["v"].Leaf.Data[0])
			xs := q.Children["x"].Leaf.Data
			expNegV := math.Exp(-v)
			var sumSq float64
			for _, xi := range xs {
				sumSq += float64(xi) * float64(xi)
			}
			g := ptree.ZerosLike(q)
			g.Children["v"].Leaf.Data[0] = float32(-v/9 - float64(n)/2 + 0.5*expNegV*sumSq)
			gx := g.Children["x"].Leaf.Data
			for i, xi := range xs {
				gx[i] = float32(-float64(xi) * expNegV)
			}
			return g
		},
	}
}

// banana is a curved posterior: x₁ ~ N(0, 10) (variance 10) and
// x₂ | x₁ ~ N(0.1·x₁², 1). The ridge along x₂ = 0.1·x₁² defeats any
// axis-aligned Gaussian approximation.
func banana() *Target {
	const (
		varX1 = 10.0
		bend  = 0.1
	)
	return &Target{
		Name: "banana",
		Desc: "banana-shaped posterior, 2 dimensions",
		Init: func() *ptree.Tree {
			return ptree.Vector(0, 0)
		},
		LogProb: func(q *ptree.Tree) float64 {
			x1 := float64(q.Leaf.Data[0])
			x2 := float64(q.Leaf.Data[1])
			r := x2 - bend*x1*x1
			return -x1*x1/(2*varX1) - r*r/2
		},
		Grad: func(q *ptree.Tree) *ptree.Tree {
			x1 := float64(q.Leaf.Data[0])
			x2 := float64(q.Leaf.Data[1])
			r := x2 - bend*x1*x1
			g := ptree.ZerosLike(q)
			g.Leaf.Data[0] = float32(-x1/varX1 + 2*bend*x1*r)
			g.Leaf.Data[1] = float32(-r)
			return g
		},
	}
}
