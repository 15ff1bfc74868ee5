package ptree

import (
	"math"
	"testing"
)

// TestElementwiseOps exercises add/sub/mul/div on matching trees and checks
// that results do not alias the inputs.
func TestElementwiseOps(t *testing.T) {
	a := Vector(2, 4, 8)
	b := Vector(1, 2, 4)

	sum := Add(a, b)
	diff := Sub(a, b)
	prod := Mul(a, b)
	quot := Div(a, b)

	wantSum := []float32{3, 6, 12}
	wantDiff := []float32{1, 2, 4}
	wantProd := []float32{2, 8, 32}
	wantQuot := []float32{2, 2, 2}
	for i := 0; i < 3; i++ {
		if sum.Leaf.Data[i] != wantSum[i] || diff.Leaf.Data[i] != wantDiff[i] ||
			prod.Leaf.Data[i] != wantProd[i] || quot.Leaf.Data[i] != wantQuot[i] {
			t.Fatalf("elementwise op mismatch at %d", i)
		}
	}

	sum.Leaf.Data[0] = -1
	if a.Leaf.Data[0] != 2 {
		t.Fatal("Add result aliases input")
	}
}

// TestStructureMismatchPanics confirms the algebra rejects trees of different
// structure loudly rather than corrupting data.
func TestStructureMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on structure mismatch")
		}
	}()
	Add(Vector(1, 2), Vector(1, 2, 3))
}

// TestScaleSqrtZerosOnes covers the unary constructors and maps.
func TestScaleSqrtZerosOnes(t *testing.T) {
	a := Vector(4, 9, 16)
	if got := Scale(a, 0.5).Leaf.Data[2]; got != 8 {
		t.Fatalf("Scale: got %v want 8", got)
	}
	if got := Sqrt(a).Leaf.Data[1]; got != 3 {
		t.Fatalf("Sqrt: got %v want 3", got)
	}
	z := ZerosLike(a)
	o := OnesLike(a)
	for i := 0; i < 3; i++ {
		if z.Leaf.Data[i] != 0 || o.Leaf.Data[i] != 1 {
			t.Fatal("ZerosLike/OnesLike produced wrong values")
		}
	}
}

// TestAddScaled checks the fused update used by the integrator.
func TestAddScaled(t *testing.T) {
	got := AddScaled(Vector(1, 1), Vector(2, 4), 0.5)
	if got.Leaf.Data[0] != 2 || got.Leaf.Data[1] != 3 {
		t.Fatalf("AddScaled: got %v", got.Leaf.Data)
	}
}

// TestSumDot checks the scalar reductions against hand computation.
func TestSumDot(t *testing.T) {
	a := Branch(map[string]*Tree{
		"x": Vector(1, 2, 3),
		"y": Scalar(4),
	})
	if got := Sum(a); got != 10 {
		t.Fatalf("Sum: got %v want 10", got)
	}
	b := Branch(map[string]*Tree{
		"x": Vector(2, 2, 2),
		"y": Scalar(2),
	})
	if got := Dot(a, b); got != 20 {
		t.Fatalf("Dot: got %v want 20", got)
	}
}

// TestStack verifies the new leading axis and value layout.
func TestStack(t *testing.T) {
	trees := []*Tree{Vector(1, 2), Vector(3, 4), Vector(5, 6)}
	stacked := Stack(trees)
	if len(stacked.Leaf.Shape) != 2 || stacked.Leaf.Shape[0] != 3 || stacked.Leaf.Shape[1] != 2 {
		t.Fatalf("Stack shape: got %v", stacked.Leaf.Shape)
	}
	want := []float32{1, 2, 3, 4, 5, 6}
	for i, v := range want {
		if stacked.Leaf.Data[i] != v {
			t.Fatalf("Stack data[%d]: got %v want %v", i, stacked.Leaf.Data[i], v)
		}
	}

	// Stacking twice yields a [2, 3, 2] leaf, the chains-by-samples layout.
	twice := Stack([]*Tree{stacked, stacked})
	if twice.Leaf.Shape[0] != 2 || twice.Leaf.Shape[1] != 3 || twice.Leaf.Shape[2] != 2 {
		t.Fatalf("double Stack shape: got %v", twice.Leaf.Shape)
	}
}

// TestDotAccumulatesInFloat64 guards against float32 accumulation loss on
// long vectors.
func TestDotAccumulatesInFloat64(t *testing.T) {
	n := 1 << 20
	data := make([]float32, n)
	for i := range data {
		data[i] = 1e-3
	}
	a := FromTensor(TensorOf(data, n))
	got := Dot(a, OnesLike(a))
	want := float64(n) * 1e-3
	if math.Abs(got-want)/want > 1e-4 {
		t.Fatalf("Dot lost precision: got %v want %v", got, want)
	}
}
