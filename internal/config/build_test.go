package config

import (
	"testing"
	"unsafe"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlehtosalo/job-scheduler/internal/jobs"
	"github.com/hlehtosalo/job-scheduler/internal/registry"
)

type stubParams struct{ Value int32 }

func stubFunc(unsafe.Pointer, *jobs.Spawner, *jobs.WorkerInfo) {}

func decodeStub(body hcl.Body, ctx *hcl.EvalContext) (stubParams, error) {
	return stubParams{}, nil
}

func newStubRegistry() *registry.Registry {
	r := registry.New()
	registry.Register(r, "stub", stubFunc, decodeStub)
	return r
}

func TestBuildLinksDependenciesInDeclarationOrder(t *testing.T) {
	r := newStubRegistry()
	spec := &GraphSpec{
		Nodes: []*NodeSpec{
			{JobType: "stub", Name: "a"},
			{JobType: "stub", Name: "b", DependsOn: []string{"a"}},
		},
	}

	g, err := Build(spec, r, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())
}

func TestBuildRejectsForwardReference(t *testing.T) {
	r := newStubRegistry()
	spec := &GraphSpec{
		Nodes: []*NodeSpec{
			{JobType: "stub", Name: "a", DependsOn: []string{"b"}},
			{JobType: "stub", Name: "b"},
		},
	}

	_, err := Build(spec, r, nil)
	assert.Error(t, err)
}

func TestBuildRejectsUnknownJobType(t *testing.T) {
	r := newStubRegistry()
	spec := &GraphSpec{Nodes: []*NodeSpec{{JobType: "missing", Name: "a"}}}

	_, err := Build(spec, r, nil)
	assert.Error(t, err)
}

func TestBuildRejectsDuplicateName(t *testing.T) {
	r := newStubRegistry()
	spec := &GraphSpec{
		Nodes: []*NodeSpec{
			{JobType: "stub", Name: "a"},
			{JobType: "stub", Name: "a"},
		},
	}

	_, err := Build(spec, r, nil)
	assert.Error(t, err)
}
