package ptree

import (
	"math"
	"testing"
)

func nested() *Tree {
	return Branch(map[string]*Tree{
		"loc":   Scalar(1.5),
		"scale": Vector(2, 3, 4),
		"inner": Branch(map[string]*Tree{
			"w": FromTensor(TensorOf([]float32{1, 2, 3, 4, 5, 6}, 2, 3)),
		}),
	})
}

// TestWalkOrder ensures leaves are visited in sorted-path order regardless of
// map insertion order, which every consumer of deterministic traversal relies
// on.
func TestWalkOrder(t *testing.T) {
	var paths []string
	nested().Walk(func(path string, _ *Tensor) {
		paths = append(paths, path)
	})
	want := []string{"inner/w", "loc", "scale"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d leaves, got %v", len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("leaf order mismatch: got %v want %v", paths, want)
		}
	}
}

// TestCloneIsDeep verifies that mutating a clone leaves the original intact.
func TestCloneIsDeep(t *testing.T) {
	a := nested()
	b := a.Clone()
	b.Children["scale"].Leaf.Data[0] = 99
	if a.Children["scale"].Leaf.Data[0] == 99 {
		t.Fatal("clone aliases the original buffer")
	}
}

// TestSameStructure checks structure comparison on nesting and shapes.
func TestSameStructure(t *testing.T) {
	if !SameStructure(nested(), nested()) {
		t.Fatal("identical trees reported as different structures")
	}
	other := Branch(map[string]*Tree{
		"loc":   Scalar(0),
		"scale": Vector(1, 2), // shorter leaf
		"inner": Branch(map[string]*Tree{
			"w": FromTensor(TensorOf([]float32{0, 0, 0, 0, 0, 0}, 2, 3)),
		}),
	})
	if SameStructure(nested(), other) {
		t.Fatal("shape mismatch not detected")
	}
	if SameStructure(nested(), Scalar(0)) {
		t.Fatal("nesting mismatch not detected")
	}
}

// TestNumElems counts elements across all leaves.
func TestNumElems(t *testing.T) {
	if n := nested().NumElems(); n != 10 {
		t.Fatalf("expected 10 elements, got %d", n)
	}
}

// TestAllFinite detects NaN and Inf anywhere in the tree.
func TestAllFinite(t *testing.T) {
	a := nested()
	if !AllFinite(a) {
		t.Fatal("finite tree reported non-finite")
	}
	a.Children["inner"].Children["w"].Leaf.Data[3] = float32(math.NaN())
	if AllFinite(a) {
		t.Fatal("NaN not detected")
	}
	b := nested()
	b.Children["loc"].Leaf.Data[0] = float32(math.Inf(-1))
	if AllFinite(b) {
		t.Fatal("-Inf not detected")
	}
}
