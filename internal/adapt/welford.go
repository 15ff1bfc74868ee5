package adapt

import "github.com/StefanSko/go-mcmc/pkg/ptree"

// varJitter is added to the estimated diagonal variance so the kinetic
// metric stays strictly positive.
const varJitter = 1e-5

// Welford accumulates an online mean and second moment over position
// samples, one accumulator element per parameter element.
type Welford struct {
	count int
	mean  *ptree.Tree
	m2    *ptree.Tree
}

// NewWelford returns an empty estimator with the structure of like.
func NewWelford(like *ptree.Tree) *Welford {
	return &Welford{
		mean: ptree.ZerosLike(like),
		m2:   ptree.ZerosLike(like),
	}
}

// Count returns the number of observed samples.
func (w *Welford) Count() int {
	return w.count
}

// Observe folds one position sample into the running moments.
func (w *Welford) Observe(x *ptree.Tree) {
	w.count++
	delta := ptree.Sub(x, w.mean)
	w.mean = ptree.AddScaled(w.mean, delta, 1/float32(w.count))
	delta2 := ptree.Sub(x, w.mean)
	w.m2 = ptree.Add(w.m2, ptree.Mul(delta, delta2))
}

// InvMass finalizes the estimate into a diagonal inverse mass: the sample
// variance plus a positive jitter. With fewer than two samples it falls back
// to the identity metric.
func (w *Welford) InvMass() *ptree.Tree {
	if w.count < 2 {
		return ptree.OnesLike(w.mean)
	}
	variance := ptree.Scale(w.m2, 1/float32(w.count-1))
	out := variance.Clone()
	out.Walk(func(_ string, leaf *ptree.Tensor) {
		for i := range leaf.Data {
			leaf.Data[i] += varJitter
		}
	})
	return out
}

// Reset discards all accumulated samples.
func (w *Welford) Reset() {
	w.count = 0
	w.mean = ptree.ZerosLike(w.mean)
	w.m2 = ptree.ZerosLike(w.m2)
}
