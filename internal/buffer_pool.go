package internal

import "sync"

// BufferPool recycles byte slices used to render requests.
// Buffers above maxCap are dropped on Put so that a large piped request
// does not pin its memory.
type BufferPool struct {
	pool   sync.Pool
	maxCap int
}

func NewBufferPool(initialSize, maxCap int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any {
				buf := make([]byte, 0, initialSize)
				return &buf
			},
		},
		maxCap: maxCap,
	}
}

// Get returns an empty slice with a capacity of at least size.
func (p *BufferPool) Get(size int) []byte {
	buf := *p.pool.Get().(*[]byte)
	if cap(buf) < size {
		return make([]byte, 0, size)
	}
	return buf[:0]
}

// Put returns buf to the pool. buf must not be used afterwards.
func (p *BufferPool) Put(buf []byte) {
	if buf == nil || cap(buf) > p.maxCap {
		return
	}
	buf = buf[:0]
	p.pool.Put(&buf)
}
