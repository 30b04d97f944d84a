// Package compose is the public façade for the composition engine: it
// exposes the configuration builder (Configure) and the runtime export
// provider (see provider.go) described in spec.md.
package compose

import (
	"context"
	"fmt"

	"github.com/emicklei/dot"
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vodia/compose/pkg/compose/catalog"
	"github.com/vodia/compose/pkg/compose/internal/builder"
)

// BuilderOptions configures Configure (spec §4.1), mirroring the teacher's
// LoaderOptions struct shape.
type BuilderOptions struct {
	Logger         log.Logger
	TracerProvider trace.TracerProvider
	Registerer     prometheus.Registerer
}

// Configuration is the immutable, validated product of Configure (spec §3,
// §4.1 step 10). It wraps the internal builder representation and exposes
// the external interfaces named in spec §6.
type Configuration struct {
	inner               *builder.Configuration
	referenceAssemblies map[string]struct{}
}

// Configure resolves cat into a Configuration, or fails with an aggregate
// composition-failed error (spec §4.1, §7).
func Configure(ctx context.Context, cat catalog.Catalog, opts BuilderOptions) (*Configuration, error) {
	b := builder.New(builder.Options{
		Logger:         opts.Logger,
		TracerProvider: opts.TracerProvider,
		Registerer:     opts.Registerer,
	})
	inner, err := b.Create(ctx, cat)
	if err != nil {
		return nil, err
	}
	return &Configuration{inner: inner}, nil
}

// Catalog returns the working catalog, including the synthesized
// export-provider self-export part added in Create step 2.
func (c *Configuration) Catalog() catalog.Catalog { return c.inner.Catalog }

// Parts returns every ComposablePart materialized by Create.
func (c *Configuration) Parts() []*catalog.ComposablePart { return c.inner.Parts }

// PartFor returns the ComposablePart built for def, or nil if it is not
// part of this configuration.
func (c *Configuration) PartFor(def catalog.PartDefinition) *catalog.ComposablePart {
	return c.inner.PartFor(def)
}

// EffectiveSharingBoundary implements spec §4.1's
// GetEffectiveSharingBoundary and the builder API named in spec §6.
// Precondition: def.IsShared().
func (c *Configuration) EffectiveSharingBoundary(def catalog.PartDefinition) string {
	return c.inner.EffectiveSharingBoundary(def)
}

// DebugID returns a stable identifier for def (spec §4.6.6), used as the
// node ID in ToDgml so that two parts whose String() collide still render
// as distinct nodes.
func (c *Configuration) DebugID(def catalog.PartDefinition) string {
	return c.inner.DebugID(def)
}

// WithReferenceAssemblies returns a new Configuration with names added to
// the reference-assembly set (spec §6), consumed by the external code
// generator. It does not mutate the receiver, matching the teacher's
// pattern of returning copied/cloned state (Loader.Graph/OriginalGraph)
// rather than exposing mutable shared references.
func (c *Configuration) WithReferenceAssemblies(names ...string) *Configuration {
	merged := make(map[string]struct{}, len(c.referenceAssemblies)+len(names))
	for name := range c.referenceAssemblies {
		merged[name] = struct{}{}
	}
	for _, name := range names {
		merged[name] = struct{}{}
	}
	return &Configuration{inner: c.inner, referenceAssemblies: merged}
}

// ReferenceAssemblies returns the accumulated reference-assembly set.
func (c *Configuration) ReferenceAssemblies() []string {
	out := make([]string, 0, len(c.referenceAssemblies))
	for name := range c.referenceAssemblies {
		out = append(out, name)
	}
	return out
}

// ToDgml renders the part graph as a DOT graph for external viewers (spec
// §6); ToDgml never serves or displays the result itself (spec §1
// Non-goals: no viewer UI). DOT is this corpus's closest ecosystem
// analogue to DGML, via github.com/emicklei/dot (used elsewhere in the
// retrieval pack by crossplane-crossplane).
func (c *Configuration) ToDgml() string {
	g := dot.NewGraph(dot.Directed)

	boundaryClusters := make(map[string]*dot.Graph)
	nodes := make(map[catalog.PartDefinition]dot.Node)

	for _, part := range c.inner.Parts {
		boundary := ""
		if part.Definition.IsShared() {
			boundary = c.EffectiveSharingBoundary(part.Definition)
		}

		target := g
		if boundary != "" {
			cluster, ok := boundaryClusters[boundary]
			if !ok {
				cluster = g.Subgraph("boundary: "+boundary, dot.ClusterOption)
				boundaryClusters[boundary] = cluster
			}
			target = cluster
		}

		n := target.Node(c.DebugID(part.Definition))
		n.Label(part.Definition.String())
		n.Attr("shared", fmt.Sprintf("%t", part.Definition.IsShared()))
		nodes[part.Definition] = n
	}

	for _, part := range c.inner.Parts {
		from := nodes[part.Definition]
		for imp, exports := range part.SatisfyingExports {
			for _, exp := range exports {
				to, ok := nodes[exp.Part]
				if !ok {
					continue
				}
				edge := g.Edge(from, to)
				edge.Attr("import", imp.Member)
				edge.Attr("contract", imp.ContractName)
			}
		}
	}

	return g.String()
}
