// Package atomicbyte provides a byte array with atomic load, store and
// compare-and-swap at byte granularity.
//
// sync/atomic has no byte-wide operations, so each access goes through the
// aligned 32-bit word containing the byte. CAS on a byte retries only while
// neighboring bytes in the same word change; the byte itself failing the
// comparison reports failure immediately.
package atomicbyte

import (
	"sync/atomic"
	"unsafe"
)

// Array is a fixed-size byte array supporting atomic element access.
// The zero value is not usable; call New.
type Array struct {
	// buf is padded to a word multiple so the word containing any logical
	// byte is fully in bounds. make() returns word-aligned storage.
	buf []byte
	n   int
}

// New returns an Array of n bytes, each initialized to fill.
func New(n int, fill byte) *Array {
	a := &Array{
		buf: make([]byte, (n+3)&^3),
		n:   n,
	}
	a.Fill(fill)
	return a
}

// Len returns the number of logical bytes.
func (a *Array) Len() int { return a.n }

// Bytes returns the logical bytes as a slice aliasing the array's storage.
// The caller must not access it concurrently with atomic mutation.
func (a *Array) Bytes() []byte { return a.buf[:a.n] }

// Fill sets every byte to v. Not atomic with respect to concurrent access.
func (a *Array) Fill(v byte) {
	for i := range a.buf {
		a.buf[i] = v
	}
}

func (a *Array) word(i int) *atomic.Uint32 {
	return (*atomic.Uint32)(unsafe.Pointer(&a.buf[i&^3]))
}

// Load atomically reads byte i.
func (a *Array) Load(i int) byte {
	shift := uint(i&3) * 8
	return byte(a.word(i).Load() >> shift)
}

// Store atomically writes byte i. Only safe when the caller holds exclusive
// claim to the byte; concurrent writers to the same byte race.
func (a *Array) Store(i int, v byte) {
	w := a.word(i)
	shift := uint(i&3) * 8
	for {
		old := w.Load()
		new := old&^(0xff<<shift) | uint32(v)<<shift
		if w.CompareAndSwap(old, new) {
			return
		}
	}
}

// CompareAndSwap atomically replaces byte i with new if it currently equals
// old, reporting whether the swap happened.
func (a *Array) CompareAndSwap(i int, old, new byte) bool {
	w := a.word(i)
	shift := uint(i&3) * 8
	for {
		cur := w.Load()
		if byte(cur>>shift) != old {
			return false
		}
		next := cur&^(0xff<<shift) | uint32(new)<<shift
		if w.CompareAndSwap(cur, next) {
			return true
		}
	}
}
