package runtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/vodia/compose/pkg/compose/catalog"
)

type cacheTestPart struct{ name string }

func (p *cacheTestPart) String() string                                         { return p.name }
func (p *cacheTestPart) Exports() []catalog.ExportDefinition                    { return nil }
func (p *cacheTestPart) ImportingMembers() []catalog.ImportDefinitionBinding    { return nil }
func (p *cacheTestPart) ImportingConstructor() []catalog.ImportDefinitionBinding { return nil }
func (p *cacheTestPart) IsShared() bool                                         { return true }
func (p *cacheTestPart) SharingBoundary() string                                { return "" }
func (p *cacheTestPart) IsSharingBoundaryInferred() bool                       { return false }
func (p *cacheTestPart) NewInstance(args []any) (any, error)                    { return &struct{}{}, nil }
func (p *cacheTestPart) SetImportingMember(any, string, any) error              { return nil }
func (p *cacheTestPart) ExtractExport(instance any, _ catalog.ExportDefinition) (any, error) {
	return instance, nil
}

// TestBoundaryCacheSingletonUnderConcurrency exercises testable property #4
// (spec §8): for any (boundary, part) pair, at most one object is ever
// observed across concurrent resolvers.
func TestBoundaryCacheSingletonUnderConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := newBoundaryCache()
	part := &cacheTestPart{name: "singleton"}

	var constructions int
	var mu sync.Mutex

	const goroutines = 64
	results := make([]any, goroutines)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		i := i
		go func() {
			defer wg.Done()
			l := c.getOrCreate("", part, func() (any, error) {
				mu.Lock()
				constructions++
				mu.Unlock()
				return &struct{ tag int }{tag: 1}, nil
			})
			v, err := l.Value()
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[i] = v
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, constructions)
	first := results[0]
	for _, r := range results {
		assert.Same(t, first, r)
	}
}

func TestBoundaryCacheSizeReflectsPopulatedCells(t *testing.T) {
	c := newBoundaryCache()
	assert.Equal(t, 0, c.size())

	a := &cacheTestPart{name: "a"}
	b := &cacheTestPart{name: "b"}
	c.getOrCreate("", a, func() (any, error) { return 1, nil })
	c.getOrCreate("tenant-1", b, func() (any, error) { return 2, nil })

	assert.Equal(t, 2, c.size())
}
