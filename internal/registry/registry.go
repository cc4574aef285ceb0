// Package registry maps job type names, as referenced from a graph
// description file, to the Go code that decodes their arguments and
// builds their node in a jobs.Graph. It plays the same role the
// surrounding example projects give their own handler registries: a single
// place where declarative configuration is tied back to compiled Go.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/hcl/v2"

	"github.com/hlehtosalo/job-scheduler/internal/jobs"
)

// Decoder turns a node's HCL argument body into a concrete, trivially
// copyable parameter value for its job type.
type Decoder[P any] func(body hcl.Body, ctx *hcl.EvalContext) (P, error)

type entry struct {
	decode func(body hcl.Body, ctx *hcl.EvalContext) (any, error)
	build  func(g *jobs.Graph, params any, predecessors []*jobs.Node) *jobs.Node
}

// Registry holds every job type a running program knows how to build.
type Registry struct {
	entries map[string]*entry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Module lets a package register one or more related job types at once.
type Module interface {
	Register(r *Registry)
}

// Register adds a new job type under name. fn is the job function invoked
// once the node's root job runs; decode turns the node's HCL body into the
// P value fn expects. Register panics if name is already registered, the
// same fail-fast convention the job scheduler itself uses for programmer
// errors.
func Register[P any](r *Registry, name string, fn jobs.Func, decode Decoder[P]) {
	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("registry: job type %q already registered", name))
	}
	slog.Debug("registering job type", "name", name)
	r.entries[name] = &entry{
		decode: func(body hcl.Body, ctx *hcl.EvalContext) (any, error) {
			return decode(body, ctx)
		},
		build: func(g *jobs.Graph, params any, predecessors []*jobs.Node) *jobs.Node {
			p := params.(P)
			if len(predecessors) == 0 {
				return jobs.NewNode(g, fn, p)
			}
			return jobs.NewNodeWithPredecessors(g, fn, p, predecessors)
		},
	}
}

// Decode resolves jobType's arguments body into its concrete parameter
// value, boxed as any ready to hand to Build.
func (r *Registry) Decode(jobType string, body hcl.Body, ctx *hcl.EvalContext) (any, error) {
	e, ok := r.entries[jobType]
	if !ok {
		return nil, fmt.Errorf("registry: unknown job type %q", jobType)
	}
	return e.decode(body, ctx)
}

// Build constructs the graph node for jobType using a value previously
// returned by Decode. It panics on an unknown job type: by the time Build
// runs, Decode should already have failed loudly for that case.
func (r *Registry) Build(jobType string, g *jobs.Graph, params any, predecessors []*jobs.Node) *jobs.Node {
	e, ok := r.entries[jobType]
	if !ok {
		panic(fmt.Sprintf("registry: unknown job type %q", jobType))
	}
	return e.build(g, params, predecessors)
}

// Has reports whether jobType is registered.
func (r *Registry) Has(jobType string) bool {
	_, ok := r.entries[jobType]
	return ok
}

// Names returns every registered job type name, primarily for logging and
// diagnostics.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}
