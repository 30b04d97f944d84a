package runtime

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vodia/compose/pkg/compose/catalog"
)

// boundaryCache is the thread-safe singleton table described in spec §5:
// logically map<string, map<Type, Lazy<object>>>. Outer keys (boundary
// names) are fixed at provider construction time or added by child
// providers for fresh boundaries (§5); inner maps are mutated under mu.
//
// The map+mutex pair alone already gives compare-and-get semantics for the
// (boundary, part) cell (spec §4.6.2c). A singleflight.Group additionally
// collapses the common case of many goroutines racing to create the SAME
// cell for the first time onto a single map-mutation critical section,
// rather than each one taking the mutex, finding the table still empty,
// constructing its own Lazy, and discarding all but one.
type boundaryCache struct {
	mu     sync.Mutex
	tables map[string]map[catalog.PartDefinition]*Lazy
	group  singleflight.Group

	// slot assigns each distinct part definition a small integer, used to
	// build cheap singleflight keys (the arena-index idiom from spec §9
	// applied to the runtime instead of the configure-time builder).
	slotMu sync.Mutex
	slots  map[catalog.PartDefinition]int
	nextID int
}

func newBoundaryCache() *boundaryCache {
	return &boundaryCache{
		tables: make(map[string]map[catalog.PartDefinition]*Lazy),
		slots:  make(map[catalog.PartDefinition]int),
	}
}

func (c *boundaryCache) slotFor(def catalog.PartDefinition) int {
	c.slotMu.Lock()
	defer c.slotMu.Unlock()
	if id, ok := c.slots[def]; ok {
		return id
	}
	id := c.nextID
	c.nextID++
	c.slots[def] = id
	return id
}

// getOrCreate implements spec §4.6.2 (b) and (c): if the boundary's table
// already has an entry for def, return it; otherwise construct one with
// factory, atomically install it, and return the (possibly another
// goroutine's winning) installed Lazy.
func (c *boundaryCache) getOrCreate(boundary string, def catalog.PartDefinition, factory func() (any, error)) *Lazy {
	c.mu.Lock()
	if table, ok := c.tables[boundary]; ok {
		if l, ok := table[def]; ok {
			c.mu.Unlock()
			return l
		}
	}
	c.mu.Unlock()

	key := fmt.Sprintf("%s\x00%d", boundary, c.slotFor(def))
	v, _, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		table, ok := c.tables[boundary]
		if !ok {
			table = make(map[catalog.PartDefinition]*Lazy)
			c.tables[boundary] = table
		}
		if l, ok := table[def]; ok {
			return l, nil
		}
		l := NewLazy(factory)
		table[def] = l
		return l, nil
	})
	return v.(*Lazy)
}

// size reports how many (boundary, part) cells have been populated, used
// by providerMetrics' singleton-cache size gauge.
func (c *boundaryCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, table := range c.tables {
		total += len(table)
	}
	return total
}

// ensureBoundary makes sure boundary has a (possibly empty) table, used
// when a child provider activates a fresh boundary (§5).
func (c *boundaryCache) ensureBoundary(boundary string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tables[boundary]; !ok {
		c.tables[boundary] = make(map[catalog.PartDefinition]*Lazy)
	}
}
