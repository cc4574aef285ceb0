// Package config declares the graph description grammar and loads it from
// HCL files: a flat list of node blocks naming a registered job type, the
// predecessor nodes they depend on, and an arguments body decoded by that
// job type's own Go code.
package config

import "github.com/hashicorp/hcl/v2"

// NodeSpec is one `node` block: an instance of jobType named name, runnable
// once every node listed in DependsOn has completed.
type NodeSpec struct {
	JobType   string          `hcl:"job_type,label"`
	Name      string          `hcl:"name,label"`
	DependsOn []string        `hcl:"depends_on,optional"`
	Arguments *argumentsBlock `hcl:"arguments,block"`
}

// argumentsBlock defers decoding of a node's arguments to its job type's
// own registered decoder, the same "remain" idiom used elsewhere in this
// codebase's HCL-backed configuration.
type argumentsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Body returns the node's argument body, or an empty body if the node
// declared no `arguments` block at all.
func (n *NodeSpec) Body() hcl.Body {
	if n.Arguments == nil {
		return hcl.EmptyBody()
	}
	return n.Arguments.Body
}

// graphFile is the top-level shape of a single .hcl graph description file.
type graphFile struct {
	Nodes []*NodeSpec `hcl:"node,block"`
	Body  hcl.Body    `hcl:",remain"`
}

// GraphSpec is every node declared across one or more graph description
// files, in declaration order. Declaration order doubles as the required
// dependency order: a node's DependsOn may only name nodes declared
// earlier in the same merged sequence.
type GraphSpec struct {
	Nodes []*NodeSpec
}
