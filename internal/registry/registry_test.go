package registry

import (
	"unsafe"

	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlehtosalo/job-scheduler/internal/jobs"
)

type echoParams struct {
	Value int32
}

func echoFunc(unsafe.Pointer, *jobs.Spawner, *jobs.WorkerInfo) {}

func decodeEcho(body hcl.Body, ctx *hcl.EvalContext) (echoParams, error) {
	return echoParams{Value: 42}, nil
}

func TestRegisterAndBuildRootNode(t *testing.T) {
	r := New()
	Register(r, "echo", echoFunc, decodeEcho)
	assert.True(t, r.Has("echo"))

	params, err := r.Decode("echo", nil, nil)
	require.NoError(t, err)

	g := jobs.NewGraph()
	node := r.Build("echo", g, params, nil)
	require.NotNil(t, node)
	assert.Equal(t, 1, g.NodeCount())
}

func TestRegisterPanicsOnDuplicate(t *testing.T) {
	r := New()
	Register(r, "echo", echoFunc, decodeEcho)
	assert.Panics(t, func() {
		Register(r, "echo", echoFunc, decodeEcho)
	})
}

func TestDecodeUnknownJobTypeErrors(t *testing.T) {
	r := New()
	_, err := r.Decode("missing", nil, nil)
	assert.Error(t, err)
}

func TestBuildUnknownJobTypePanics(t *testing.T) {
	r := New()
	g := jobs.NewGraph()
	assert.Panics(t, func() {
		r.Build("missing", g, echoParams{}, nil)
	})
}
