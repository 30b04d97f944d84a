package builder

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/vodia/compose/pkg/compose/catalog"
)

// debugIDNamespace seeds the deterministic per-part debug identifiers
// (§4.6.6) so that the same part definition always yields the same UUID
// no matter which goroutine resolves it first.
var debugIDNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// debugIDCache models spec §4.6.6's reflection-slot caches: an array of
// lazily resolved values sized at Configuration-build time, one per part.
// Slots tolerate benign races — concurrent first accesses to the same slot
// may each compute the value, but because resolution is a pure,
// deterministic function of the part's arena index, every resolution of
// slot i converges on the same string, so losing the race costs nothing.
// The index (not just the part's String()) feeds the hash so that two
// distinct parts which happen to stringify identically still get distinct
// node identities.
type debugIDCache struct {
	parts []*catalog.ComposablePart
	slots []atomic.String
}

func newDebugIDCache(parts []*catalog.ComposablePart) *debugIDCache {
	return &debugIDCache{parts: parts, slots: make([]atomic.String, len(parts))}
}

func (c *debugIDCache) get(index int) string {
	if v := c.slots[index].Load(); v != "" {
		return v
	}
	seed := fmt.Sprintf("%d:%s", index, c.parts[index].Definition.String())
	id := uuid.NewSHA1(debugIDNamespace, []byte(seed)).String()
	c.slots[index].Store(id)
	return id
}
