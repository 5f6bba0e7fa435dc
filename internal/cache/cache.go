// Package cache memoizes calculation reports for repeated identical requests.
// Calculations are pure, so entries never expire; the least recently used entry
// is evicted once capacity is reached.
package cache

import (
	"container/list"
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/eugenenazirov/cbm-calculator/internal/calculator"
)

// Metrics reports cache effectiveness.
type Metrics struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	Capacity  int
}

// LRU is a thread-safe least-recently-used report cache.
// A nil *LRU is a valid, always-missing cache.
type LRU struct {
	mu        sync.Mutex
	capacity  int
	ll        *list.List
	items     map[uint64]*list.Element
	hits      int64
	misses    int64
	evictions int64
}

type entry struct {
	key    uint64
	req    calculator.Request
	report calculator.Report
}

// New creates an LRU holding up to capacity reports. It returns nil when
// capacity is not positive, which disables caching.
func New(capacity int) *LRU {
	if capacity <= 0 {
		return nil
	}
	return &LRU{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[uint64]*list.Element, capacity),
	}
}

// Get returns a copy of the report cached for req.
func (c *LRU) Get(req calculator.Request) (calculator.Report, bool) {
	if c == nil {
		return calculator.Report{}, false
	}
	key := Key(req)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok || el.Value.(*entry).req != req {
		c.misses++
		return calculator.Report{}, false
	}
	c.ll.MoveToFront(el)
	c.hits++
	r := el.Value.(*entry).report
	return calculator.BuildReport(r.Volume, r.Stacking, r.Fit), true
}

// Put stores a copy of report for req, evicting the oldest entry when full.
func (c *LRU) Put(req calculator.Request, report calculator.Report) {
	if c == nil {
		return
	}
	key := Key(req)
	stored := calculator.BuildReport(report.Volume, report.Stacking, report.Fit)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value = &entry{key: key, req: req, report: stored}
		c.ll.MoveToFront(el)
		return
	}

	c.items[key] = c.ll.PushFront(&entry{key: key, req: req, report: stored})
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
		c.evictions++
	}
}

// Clear drops every entry.
func (c *LRU) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.ll.Init()
	c.items = make(map[uint64]*list.Element, c.capacity)
	c.mu.Unlock()
}

// Metrics returns a snapshot of the cache counters.
func (c *LRU) Metrics() Metrics {
	if c == nil {
		return Metrics{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Metrics{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      c.ll.Len(),
		Capacity:  c.capacity,
	}
}

// Key digests every field of a normalized request.
func Key(req calculator.Request) uint64 {
	buf := make([]byte, 0, 20*8+32)
	f := func(v float64) {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}

	b := req.Box
	f(b.Dimension.Length)
	f(b.Dimension.Width)
	f(b.Dimension.Height)
	f(b.Weight)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(b.Quantity))
	if b.AllowTipping {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	p := req.Pallet
	f(p.Footprint.Length)
	f(p.Footprint.Width)
	f(p.MaxStackHeight)
	f(p.MaxWeight)
	f(p.DeckHeight)
	f(p.TareWeight)

	c := req.Container
	f(c.InternalDimension.Length)
	f(c.InternalDimension.Width)
	f(c.InternalDimension.Height)
	f(c.MaxPayloadWeight)
	buf = append(buf, c.Type...)
	buf = append(buf, 0)
	buf = append(buf, req.Mode...)

	return xxhash.Sum64(buf)
}
