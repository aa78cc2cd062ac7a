package alphabet

import "iter"

// View is the sub-sequence of a Buffer at positions offset, offset+stride,
// offset+2*stride and so on. Writes through a View land in the Buffer.
type View struct {
	buf    *Buffer
	offset int
	stride int
}

// Len returns ceil((N-offset)/stride), or 0 when offset is past the end.
func (v View) Len() int {
	n := v.buf.Len()
	if v.offset >= n {
		return 0
	}
	return (n - v.offset + v.stride - 1) / v.stride
}

// Offset returns the first buffer position covered by the View.
func (v View) Offset() int { return v.offset }

// Stride returns the distance between consecutive positions.
func (v View) Stride() int { return v.stride }

// Position maps the i-th View element to its Buffer position.
func (v View) Position(i int) int {
	return v.offset + i*v.stride
}

// At returns the i-th Symbol of the View.
func (v View) At(i int) Symbol {
	return v.buf.syms[v.Position(i)]
}

// Set replaces the i-th Symbol of the View.
func (v View) Set(i int, s Symbol) {
	v.buf.syms[v.Position(i)] = s
}

// All iterates over View indices and Symbols in position order.
func (v View) All() iter.Seq2[int, Symbol] {
	return func(yield func(int, Symbol) bool) {
		syms := v.buf.syms
		for i, p := 0, v.offset; p < len(syms); i, p = i+1, p+v.stride {
			if !yield(i, syms[p]) {
				return
			}
		}
	}
}

// Update replaces every Symbol of the View with f(index, symbol).
func (v View) Update(f func(i int, s Symbol) Symbol) {
	syms := v.buf.syms
	for i, p := 0, v.offset; p < len(syms); i, p = i+1, p+v.stride {
		syms[p] = f(i, syms[p])
	}
}

// Symbols returns a copy of the selected Symbols.
func (v View) Symbols() []Symbol {
	out := make([]Symbol, 0, v.Len())
	for _, s := range v.All() {
		out = append(out, s)
	}
	return out
}

// CopyFrom writes src's Symbols into v element by element. Both Views must
// have equal length.
func (v View) CopyFrom(src View) {
	if v.Len() != src.Len() {
		panic("alphabet: copy between views of different length")
	}
	for i, s := range src.All() {
		v.Set(i, s)
	}
}
