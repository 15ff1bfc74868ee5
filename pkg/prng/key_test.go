package prng

import (
	"testing"

	"github.com/StefanSko/go-mcmc/pkg/ptree"
)

// TestSplitDeterminism verifies that the same seed always yields the same
// key tree and the same variates.
func TestSplitDeterminism(t *testing.T) {
	a := NewKey(42).Split(4)
	b := NewKey(42).Split(4)
	for i := range a {
		ua, ub := a[i].Uniform(), b[i].Uniform()
		if ua != ub {
			t.Fatalf("child %d: %v != %v", i, ua, ub)
		}
	}
}

// TestSplitChildrenDiffer checks that sibling keys drive distinct streams.
func TestSplitChildrenDiffer(t *testing.T) {
	ks := NewKey(7).Split(3)
	u0 := ks[0].Uniform()
	u1 := ks[1].Uniform()
	u2 := ks[2].Uniform()
	if u0 == u1 || u1 == u2 || u0 == u2 {
		t.Fatalf("sibling keys produced equal variates: %v %v %v", u0, u1, u2)
	}
}

// TestSeedsDiffer checks that different seeds diverge immediately.
func TestSeedsDiffer(t *testing.T) {
	if NewKey(1).Uniform() == NewKey(2).Uniform() {
		t.Fatal("distinct seeds produced the same variate")
	}
}

// TestUniformRange draws many variates and checks they stay in [0, 1).
func TestUniformRange(t *testing.T) {
	for i, k := range NewKey(3).Split(1000) {
		u := k.Uniform()
		if u < 0 || u >= 1 {
			t.Fatalf("draw %d out of range: %v", i, u)
		}
	}
}

// TestNormalLikePreservesStructure verifies momentum sampling keeps the
// parameter structure and fills every leaf.
func TestNormalLikePreservesStructure(t *testing.T) {
	tree := ptree.Branch(map[string]*ptree.Tree{
		"a": ptree.Scalar(5),
		"b": ptree.Vector(1, 2, 3, 4),
	})
	z := NewKey(11).NormalLike(tree)
	if !ptree.SameStructure(tree, z) {
		t.Fatal("NormalLike changed the structure")
	}
	var nonzero int
	z.Walk(func(_ string, leaf *ptree.Tensor) {
		for _, v := range leaf.Data {
			if v != 0 {
				nonzero++
			}
		}
	})
	if nonzero == 0 {
		t.Fatal("NormalLike left all leaves zero")
	}
}

// TestNormalMoments sanity-checks the sample mean and variance of a large
// standard-normal draw.
func TestNormalMoments(t *testing.T) {
	tree := ptree.FromTensor(ptree.NewTensor(200000))
	z := NewKey(99).NormalLike(tree)
	var sum, sumSq float64
	for _, v := range z.Leaf.Data {
		f := float64(v)
		sum += f
		sumSq += f * f
	}
	n := float64(len(z.Leaf.Data))
	mean := sum / n
	variance := sumSq/n - mean*mean
	if mean < -0.02 || mean > 0.02 {
		t.Fatalf("sample mean too far from 0: %v", mean)
	}
	if variance < 0.97 || variance > 1.03 {
		t.Fatalf("sample variance too far from 1: %v", variance)
	}
}

// TestStrictReuse ensures Strict mode fails loudly when a key is consumed
// twice.
func TestStrictReuse(t *testing.T) {
	Strict = true
	defer func() {
		Strict = false
		if recover() == nil {
			t.Fatal("expected panic on key reuse in Strict mode")
		}
	}()
	k := NewKey(5)
	k.Uniform()
	k.Uniform()
}

// TestZeroKeyPanics ensures the zero value is rejected.
func TestZeroKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on zero Key")
		}
	}()
	var k Key
	k.Uniform()
}
