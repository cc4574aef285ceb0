// Package print supplies the "print" job type: a trivial, side-effecting
// node useful for wiring together a graph description file and watching
// it execute, without needing a real workload.
package print

import (
	"fmt"
	"unsafe"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/hlehtosalo/job-scheduler/internal/jobs"
	"github.com/hlehtosalo/job-scheduler/internal/registry"
)

// maxMessageLen bounds Params.Message: a job's parameters must fit in its
// node's inline, fixed-size buffer, so unlike most HCL-decoded strings
// this one cannot simply be held by reference.
const maxMessageLen = 40

// Params is a "print" node's arguments, already converted into the fixed
// byte array a job's trivially copyable parameter buffer requires.
// Message longer than maxMessageLen bytes is truncated by decode.
type Params struct {
	Message [maxMessageLen]byte
	Length  uint8
	Count   uint8
}

// spec is the HCL-decodable shape of a "print" node's arguments block,
// before it is packed into Params.
type spec struct {
	Message string `hcl:"message"`
	Count   int    `hcl:"count,optional"`
}

func decode(body hcl.Body, ctx *hcl.EvalContext) (Params, error) {
	var s spec
	if diags := gohcl.DecodeBody(body, ctx, &s); diags.HasErrors() {
		return Params{}, diags
	}
	if s.Count <= 0 {
		s.Count = 1
	}
	if s.Count > 255 {
		s.Count = 255
	}

	var params Params
	n := copy(params.Message[:], s.Message)
	params.Length = uint8(n)
	params.Count = uint8(s.Count)
	return params, nil
}

func run(raw unsafe.Pointer, spawner *jobs.Spawner, info *jobs.WorkerInfo) {
	params := jobs.ParamsOf[Params](raw)
	message := string(params.Message[:params.Length])
	for i := uint8(0); i != params.Count; i++ {
		fmt.Println(message)
	}
}

// Module registers the "print" job type.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	registry.Register(r, "print", run, decode)
}
