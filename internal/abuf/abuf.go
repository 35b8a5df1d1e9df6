// Package abuf implements the Appendable Buffer: a growable byte arena used
// by a Context to accumulate one picture's bitstream payload and slice
// offsets without a syscall per append. Grounded on the grow-don't-shrink
// idiom of the teacher's buffer pool, but adapted from a pool of reusable
// buffers into a single buffer that grows in place, since the decoder needs
// one stable backing array per Context rather than borrow/return semantics.
package abuf

const alignment = 16

// Buffer is not safe for concurrent use; the owning Context serializes all
// access to its scratch buffers, the same way the fixed contract requires.
type Buffer struct {
	data []byte
	size int
}

// New returns an empty buffer with no backing storage until the first Append.
func New() *Buffer {
	return &Buffer{}
}

// Len returns the number of bytes appended since the last Reset.
func (b *Buffer) Len() int { return b.size }

// Cap returns the current backing allocation size.
func (b *Buffer) Cap() int { return len(b.data) }

// Bytes returns the valid prefix of the backing array. The returned slice is
// only valid until the next Append grows the buffer.
func (b *Buffer) Bytes() []byte { return b.data[:b.size] }

// Append copies p onto the end of the buffer, growing the backing array if
// needed. Growth doubles the first allocation and adds at least +50% on
// subsequent overflow, always landing on a 16-byte-aligned capacity, and
// never shrinks -- matching the fixed contract's growth rule exactly.
func (b *Buffer) Append(p []byte) {
	needed := b.size + len(p)
	if needed > len(b.data) {
		b.grow(needed)
	}
	copy(b.data[b.size:needed], p)
	b.size = needed
}

func (b *Buffer) grow(needed int) {
	newCap := len(b.data)
	if newCap == 0 {
		newCap = needed * 2
	} else {
		for newCap < needed {
			newCap += newCap / 2
		}
	}
	newCap = alignUp(newCap, alignment)

	fresh := make([]byte, newCap)
	copy(fresh, b.data[:b.size])
	b.data = fresh
}

func alignUp(n, align int) int {
	if rem := n % align; rem != 0 {
		n += align - rem
	}
	return n
}

// Reset zeros the logical size without freeing the backing array, so the
// next picture's Append calls reuse the same allocation.
func (b *Buffer) Reset() {
	b.size = 0
}

// Free releases the backing storage entirely. Called when the owning
// Context (or its scratch buffers) is destroyed.
func (b *Buffer) Free() {
	b.data = nil
	b.size = 0
}
