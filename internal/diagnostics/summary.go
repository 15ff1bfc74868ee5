package diagnostics

import (
	"fmt"
	"math"
	"sort"

	"github.com/StefanSko/go-mcmc/pkg/ptree"
)

// summaryQuantiles are the reported posterior quantiles.
var summaryQuantiles = []float64{0.05, 0.25, 0.5, 0.75, 0.95}

// Summary describes the posterior marginal of one scalar parameter element.
type Summary struct {
	// Name is the leaf path plus a flat element index for non-scalar leaves,
	// e.g. "x[3]".
	Name string  `json:"name"`
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
	// Quantiles holds the {5, 25, 50, 75, 95}% quantiles in order.
	Quantiles [5]float64 `json:"quantiles"`
	Rhat      float64    `json:"rhat"`
	ESS       float64    `json:"ess"`
}

// Summarize computes per-element summaries from stacked draws whose leaves
// carry a leading [chains, samples] axis pair. The output is deterministic
// for identical input: leaves in sorted-path order, elements in row-major
// order.
func Summarize(draws *ptree.Tree) []Summary {
	var out []Summary
	draws.Walk(func(path string, leaf *ptree.Tensor) {
		if len(leaf.Shape) < 2 {
			panic("diagnostics: draws leaf is missing the [chains, samples] axes")
		}
		numChains := leaf.Shape[0]
		numSamples := leaf.Shape[1]
		stride := 1
		for _, d := range leaf.Shape[2:] {
			stride *= d
		}
		for e := 0; e < stride; e++ {
			chains := extractElement(leaf, numChains, numSamples, stride, e)
			out = append(out, summarizeElement(elementName(path, stride, e), chains))
		}
	})
	return out
}

// extractElement pulls the [chains][samples] series of one flat element
// index out of a stacked leaf.
func extractElement(leaf *ptree.Tensor, numChains, numSamples, stride, e int) [][]float64 {
	chains := make([][]float64, numChains)
	for c := 0; c < numChains; c++ {
		series := make([]float64, numSamples)
		for n := 0; n < numSamples; n++ {
			series[n] = float64(leaf.Data[(c*numSamples+n)*stride+e])
		}
		chains[c] = series
	}
	return chains
}

func elementName(path string, stride, e int) string {
	if stride == 1 {
		if path == "" {
			return "theta"
		}
		return path
	}
	if path == "" {
		path = "theta"
	}
	return fmt.Sprintf("%s[%d]", path, e)
}

func summarizeElement(name string, chains [][]float64) Summary {
	var pooled []float64
	for _, ch := range chains {
		pooled = append(pooled, ch...)
	}
	m, v := meanVar(pooled)
	s := Summary{
		Name: name,
		Mean: m,
		SD:   math.Sqrt(v),
		Rhat: SplitRhat(chains),
		ESS:  ESS(chains),
	}
	sorted := append([]float64(nil), pooled...)
	sort.Float64s(sorted)
	for i, q := range summaryQuantiles {
		s.Quantiles[i] = pick(sorted, q)
	}
	return s
}

// pick returns the sort-and-pick quantile: the element at the rounded
// fractional rank q·(n-1).
func pick(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	idx := int(math.Round(q * float64(len(sorted)-1)))
	return sorted[idx]
}
