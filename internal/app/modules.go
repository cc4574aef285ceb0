package app

import (
	"github.com/hlehtosalo/job-scheduler/internal/registry"
	"github.com/hlehtosalo/job-scheduler/modules/print"
)

// coreModules is the definitive list of all job types compiled into the
// binary.
var coreModules = []registry.Module{
	print.Module{},
}
