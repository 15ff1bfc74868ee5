// Package prng provides splittable, single-use PRNG keys.
//
// Every random draw in a sampling run flows from one root key. A key is
// consumed by exactly one operation: splitting it into children, drawing a
// uniform variate, or filling a tree with normal variates. Accidental reuse
// is a programmer error; enable Strict to make it panic.
package prng

import (
	"math/rand"
	"sync/atomic"

	"github.com/StefanSko/go-mcmc/pkg/ptree"
)

// Strict makes key reuse panic instead of silently drawing from the same
// stream again. Intended for tests and debug builds.
var Strict bool

// Key is a single-use handle to a deterministic random stream.
// The zero Key is invalid; obtain keys from NewKey or Split.
type Key struct {
	state uint64
	used  *uint32
}

// NewKey derives a root key from a seed.
func NewKey(seed uint64) Key {
	return Key{state: mix(seed), used: new(uint32)}
}

// consume marks the key as spent. Reuse panics in Strict mode.
func (k Key) consume() {
	if k.used == nil {
		panic("prng: use of zero Key")
	}
	if !atomic.CompareAndSwapUint32(k.used, 0, 1) && Strict {
		panic("prng: key used twice")
	}
}

// Split consumes the key and returns n statistically independent child keys.
func (k Key) Split(n int) []Key {
	if n <= 0 {
		panic("prng: split into zero keys")
	}
	k.consume()
	out := make([]Key, n)
	for i := range out {
		out[i] = Key{state: mix(k.state + goldenGamma*uint64(i+1)), used: new(uint32)}
	}
	return out
}

// Uniform consumes the key and returns one variate in [0, 1).
func (k Key) Uniform() float64 {
	k.consume()
	return k.rng().Float64()
}

// NormalLike consumes the key and returns a tree with the structure of t
// whose elements are independent standard-normal variates.
func (k Key) NormalLike(t *ptree.Tree) *ptree.Tree {
	k.consume()
	rng := k.rng()
	out := ptree.ZerosLike(t)
	out.Walk(func(_ string, leaf *ptree.Tensor) {
		for i := range leaf.Data {
			leaf.Data[i] = float32(rng.NormFloat64())
		}
	})
	return out
}

func (k Key) rng() *rand.Rand {
	return rand.New(rand.NewSource(int64(k.state)))
}

// goldenGamma is the 64-bit golden-ratio increment used by splitmix64.
const goldenGamma = 0x9e3779b97f4a7c15

// mix is the splitmix64 finalizer: a bijective avalanche over uint64.
func mix(z uint64) uint64 {
	z += goldenGamma
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
