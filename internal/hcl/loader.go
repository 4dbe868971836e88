package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/flowforgego/internal/config"
	"github.com/vk/flowforgego/internal/ctxlog"
	"github.com/vk/flowforgego/internal/fsutil"
	"github.com/vk/flowforgego/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load orchestrates the HCL loading process. Each path may be a single
// .hcl file or a directory searched recursively; task and plugin blocks
// from every file are merged into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findWorkflowFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.WorkflowConfig
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, t := range root.Tasks {
			task, err := translateTask(t)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid task in %s: %w", file, err)
			}
			model.Tasks = append(model.Tasks, task)
		}
		for _, p := range root.Plugins {
			model.Plugins = append(model.Plugins, translatePlugin(p))
		}
	}

	logger.Debug("HCL loading complete.", "tasks", len(model.Tasks), "plugins", len(model.Plugins))
	return model, NewConverter(), nil
}

// findWorkflowFiles flattens the given paths into a deduplicated list of
// .hcl files. A configured path that does not exist is skipped, not an
// error.
func (l *Loader) findWorkflowFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, dup := seen[p]; !dup {
			all = append(all, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	return all, nil
}

// translateTask converts the HCL-specific task schema into the agnostic model.
func translateTask(t *schema.Task) (*config.Task, error) {
	var timeout time.Duration
	if t.Timeout != "" {
		d, err := time.ParseDuration(t.Timeout)
		if err != nil {
			return nil, fmt.Errorf("task '%s.%s': invalid timeout %q: %w", t.ModuleType, t.Name, t.Timeout, err)
		}
		timeout = d
	}
	return &config.Task{
		ModuleType:        t.ModuleType,
		Name:              t.Name,
		Description:       t.Description,
		Arguments:         extractBodyAttributes(t.Arguments),
		DependsOn:         t.DependsOn,
		Retry:             t.Retry,
		Timeout:           timeout,
		ContinueOnFailure: t.ContinueOnFailure,
		Batchable:         t.Batchable,
	}, nil
}

// translatePlugin converts the HCL-specific plugin schema into the agnostic model.
func translatePlugin(p *schema.Plugin) *config.Plugin {
	return &config.Plugin{
		Type:      p.Type,
		Arguments: extractBodyAttributes(p.Arguments),
		DependsOn: p.DependsOn,
		Conflicts: p.Conflicts,
	}
}

func extractBodyAttributes(args *schema.TaskArgs) map[string]hcl.Expression {
	if args == nil || args.Body == nil {
		return nil
	}
	attrs, _ := args.Body.JustAttributes()
	if len(attrs) == 0 {
		return nil
	}
	exprMap := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		exprMap[name] = attr.Expr
	}
	return exprMap
}
