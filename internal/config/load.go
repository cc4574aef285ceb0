package config

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/hlehtosalo/job-scheduler/internal/ctxlog"
	"github.com/hlehtosalo/job-scheduler/internal/fsutil"
)

// Load parses every .hcl file found under path (a single file or a
// directory walked recursively) and merges their node declarations, in the
// order the files were found, into one GraphSpec.
func Load(ctx context.Context, path string) (*GraphSpec, error) {
	logger := ctxlog.FromContext(ctx)

	filePaths, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("config: failed to search %s for .hcl files: %w", path, err)
	}
	if len(filePaths) == 0 {
		return nil, fmt.Errorf("config: no .hcl files found under %s", path)
	}
	logger.Debug("found graph description files", "count", len(filePaths))

	parser := hclparse.NewParser()
	spec := &GraphSpec{}
	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, fmt.Errorf("config: failed to parse %s: %w", filePath, diags)
		}

		var gf graphFile
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &gf); diags.HasErrors() {
			return nil, fmt.Errorf("config: failed to decode %s: %w", filePath, diags)
		}
		spec.Nodes = append(spec.Nodes, gf.Nodes...)
		logger.Debug("loaded graph description file", "file", filePath, "nodes", len(gf.Nodes))
	}

	return spec, nil
}
