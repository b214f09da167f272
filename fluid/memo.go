package fluid

import "sync"

type memoKey struct {
	out, in1, in2 Property
	v1, v2        float64
	fluid         string
}

// DefaultMemoSize bounds the entries a Memo from NewMemo holds.
const DefaultMemoSize = 1 << 16

// Memo caches successful lookups of the wrapped backend. Fluids are keyed by
// their descriptor string, so mixtures that round to the same 3-decimal
// composition share entries. Root-finder iterates rarely repeat, so the cache
// is dropped whole once it reaches its size.
type Memo struct {
	backend Backend
	size    int

	mu           sync.Mutex
	cache        map[memoKey]float64
	hits, misses uint64
	flushes      uint64
}

func NewMemo(b Backend) *Memo {
	return NewMemoSize(b, DefaultMemoSize)
}

// NewMemoSize returns a Memo holding at most size entries, DefaultMemoSize
// when size <= 0.
func NewMemoSize(b Backend, size int) *Memo {
	if size <= 0 {
		size = DefaultMemoSize
	}
	return &Memo{
		backend: b,
		size:    size,
		cache:   make(map[memoKey]float64),
	}
}

func (m *Memo) Props(out Property, in1 Property, v1 float64, in2 Property, v2 float64, f Fluid) (float64, error) {
	k := memoKey{out: out, in1: in1, v1: v1, in2: in2, v2: v2, fluid: f.String()}

	m.mu.Lock()
	v, ok := m.cache[k]
	if ok {
		m.hits++
	} else {
		m.misses++
	}
	m.mu.Unlock()
	if ok {
		return v, nil
	}

	v, err := m.backend.Props(out, in1, v1, in2, v2, f)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	if len(m.cache) >= m.size {
		m.cache = make(map[memoKey]float64)
		m.flushes++
	}
	m.cache[k] = v
	m.mu.Unlock()
	return v, nil
}

// Stats reports cache hits and misses since construction or the last Reset.
func (m *Memo) Stats() (hits, misses uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// Flushes counts how often the cache was dropped for reaching its size.
func (m *Memo) Flushes() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}

func (m *Memo) Reset() {
	m.mu.Lock()
	m.cache = make(map[memoKey]float64)
	m.hits, m.misses, m.flushes = 0, 0, 0
	m.mu.Unlock()
}
