package ptree

import "math"

// Add returns the elementwise sum a + b.
func Add(a, b *Tree) *Tree {
	return zipLeaves(a, b, func(x, y *Tensor) *Tensor {
		out := x.Clone()
		for i := range out.Data {
			out.Data[i] += y.Data[i]
		}
		return out
	})
}

// Sub returns the elementwise difference a - b.
func Sub(a, b *Tree) *Tree {
	return zipLeaves(a, b, func(x, y *Tensor) *Tensor {
		out := x.Clone()
		for i := range out.Data {
			out.Data[i] -= y.Data[i]
		}
		return out
	})
}

// Mul returns the elementwise product a ⊙ b.
func Mul(a, b *Tree) *Tree {
	return zipLeaves(a, b, func(x, y *Tensor) *Tensor {
		out := x.Clone()
		for i := range out.Data {
			out.Data[i] *= y.Data[i]
		}
		return out
	})
}

// Div returns the elementwise quotient a / b.
func Div(a, b *Tree) *Tree {
	return zipLeaves(a, b, func(x, y *Tensor) *Tensor {
		out := x.Clone()
		for i := range out.Data {
			out.Data[i] /= y.Data[i]
		}
		return out
	})
}

// Scale returns a scaled by the scalar s.
func Scale(a *Tree, s float32) *Tree {
	return a.mapLeaves(func(x *Tensor) *Tensor {
		out := x.Clone()
		for i := range out.Data {
			out.Data[i] *= s
		}
		return out
	})
}

// AddScaled returns a + s·b in one pass.
func AddScaled(a, b *Tree, s float32) *Tree {
	return zipLeaves(a, b, func(x, y *Tensor) *Tensor {
		out := x.Clone()
		for i := range out.Data {
			out.Data[i] += s * y.Data[i]
		}
		return out
	})
}

// Sqrt returns the elementwise square root.
func Sqrt(a *Tree) *Tree {
	return a.mapLeaves(func(x *Tensor) *Tensor {
		out := x.Clone()
		for i := range out.Data {
			out.Data[i] = float32(math.Sqrt(float64(out.Data[i])))
		}
		return out
	})
}

// ZerosLike returns a zero tree with the structure of a.
func ZerosLike(a *Tree) *Tree {
	return a.mapLeaves(func(x *Tensor) *Tensor {
		return NewTensor(x.Shape...)
	})
}

// OnesLike returns an all-ones tree with the structure of a.
func OnesLike(a *Tree) *Tree {
	return a.mapLeaves(func(x *Tensor) *Tensor {
		out := NewTensor(x.Shape...)
		for i := range out.Data {
			out.Data[i] = 1
		}
		return out
	})
}

// Sum reduces the tree to a scalar: the sum over all leaves of all elements.
// Accumulation is in float64 to limit cancellation error.
func Sum(a *Tree) float64 {
	var sum float64
	a.Walk(func(_ string, leaf *Tensor) {
		for _, v := range leaf.Data {
			sum += float64(v)
		}
	})
	return sum
}

// Dot returns the sum of the elementwise product over all leaves,
// accumulated in float64.
func Dot(a, b *Tree) float64 {
	var sum float64
	leavesA := a.Leaves()
	leavesB := b.Leaves()
	if len(leavesA) != len(leavesB) {
		panic("ptree: structure mismatch")
	}
	for i := range leavesA {
		x, y := leavesA[i], leavesB[i]
		if !x.SameShape(y) {
			panic("ptree: leaf shape mismatch")
		}
		for j := range x.Data {
			sum += float64(x.Data[j]) * float64(y.Data[j])
		}
	}
	return sum
}

// AllFinite reports whether every element of every leaf is finite.
func AllFinite(a *Tree) bool {
	finite := true
	a.Walk(func(_ string, leaf *Tensor) {
		for _, v := range leaf.Data {
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				finite = false
				return
			}
		}
	})
	return finite
}

// Stack combines k same-structure trees into one whose leaves gain a new
// leading axis of length k. It panics on an empty list or mismatched
// structures.
func Stack(trees []*Tree) *Tree {
	if len(trees) == 0 {
		panic("ptree: stack of zero trees")
	}
	first := trees[0]
	for _, t := range trees[1:] {
		if !SameStructure(first, t) {
			panic("ptree: structure mismatch")
		}
	}
	return stack(trees)
}

func stack(trees []*Tree) *Tree {
	first := trees[0]
	if first.IsLeaf() {
		shape := append([]int{len(trees)}, first.Leaf.Shape...)
		out := NewTensor(shape...)
		n := first.Leaf.NumElems()
		for i, t := range trees {
			copy(out.Data[i*n:(i+1)*n], t.Leaf.Data)
		}
		return &Tree{Leaf: out}
	}
	children := make(map[string]*Tree, len(first.Children))
	for _, k := range first.keys() {
		sub := make([]*Tree, len(trees))
		for i, t := range trees {
			sub[i] = t.Children[k]
		}
		children[k] = stack(sub)
	}
	return &Tree{Children: children}
}
