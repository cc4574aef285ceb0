package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/hlehtosalo/job-scheduler/internal/jobs"
	"github.com/hlehtosalo/job-scheduler/internal/registry"
)

// EvalContext builds the hcl.EvalContext every node's arguments block is
// decoded against: a small set of variables describing the scheduler
// itself, so a graph description can size its own arguments off of it
// (e.g. `count = worker_count` to fan a node out once per worker).
func EvalContext(workerCount int) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"worker_count": cty.NumberIntVal(int64(workerCount)),
		},
	}
}

// Build resolves spec against r, in declaration order, into a runnable
// jobs.Graph. A node's DependsOn entries must name nodes already built
// earlier in spec.Nodes; forward references are a configuration error, not
// a scheduler invariant violation, so Build returns an error rather than
// panicking. ctx is passed to every node's argument decode call; pass nil
// to decode with no variables or functions available.
func Build(spec *GraphSpec, r *registry.Registry, ctx *hcl.EvalContext) (*jobs.Graph, error) {
	g := jobs.NewGraph()
	built := make(map[string]*jobs.Node, len(spec.Nodes))

	for _, nodeSpec := range spec.Nodes {
		if _, exists := built[nodeSpec.Name]; exists {
			return nil, fmt.Errorf("config: duplicate node name %q", nodeSpec.Name)
		}
		if !r.Has(nodeSpec.JobType) {
			return nil, fmt.Errorf("config: node %q references unknown job type %q", nodeSpec.Name, nodeSpec.JobType)
		}

		predecessors := make([]*jobs.Node, 0, len(nodeSpec.DependsOn))
		for _, dep := range nodeSpec.DependsOn {
			predNode, ok := built[dep]
			if !ok {
				return nil, fmt.Errorf("config: node %q depends on %q, which is not declared before it", nodeSpec.Name, dep)
			}
			predecessors = append(predecessors, predNode)
		}

		params, err := r.Decode(nodeSpec.JobType, nodeSpec.Body(), ctx)
		if err != nil {
			return nil, fmt.Errorf("config: node %q: %w", nodeSpec.Name, err)
		}

		built[nodeSpec.Name] = r.Build(nodeSpec.JobType, g, params, predecessors)
	}

	return g, nil
}
