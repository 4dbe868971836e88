package recovery

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vk/flowforgego/internal/classify"
	"github.com/vk/flowforgego/internal/ctxlog"
	"github.com/vk/flowforgego/internal/engine"
)

// Commands holds the shell commands a plan is built from. Zero-value
// fields fall back to the npm toolchain defaults.
type Commands struct {
	LintFix     string
	LintVerify  string
	BuildClean  string
	Reinstall   string
	Build       string
	DepsClean   string
	DepsInstall string
	DepsVerify  string
}

func (c *Commands) applyDefaults() {
	if c.LintFix == "" {
		c.LintFix = "npm run lint -- --fix"
	}
	if c.LintVerify == "" {
		c.LintVerify = "npm run lint"
	}
	if c.BuildClean == "" {
		c.BuildClean = "npm run clean --if-present"
	}
	if c.Reinstall == "" {
		c.Reinstall = "npm ci"
	}
	if c.Build == "" {
		c.Build = "npm run build"
	}
	if c.DepsClean == "" {
		c.DepsClean = "npm cache verify"
	}
	if c.DepsInstall == "" {
		c.DepsInstall = "npm install"
	}
	if c.DepsVerify == "" {
		c.DepsVerify = "npm ls --depth=0"
	}
}

// Options configures a Synthesizer.
type Options struct {
	// Dir is the working directory for fix commands. Empty means the
	// process working directory.
	Dir string
	// Commands overrides the default fix commands.
	Commands Commands
}

// Synthesizer builds recovery plans. It implements engine.RecoveryPlanner.
// Plans are synthesized fresh on every call; two failures with the same
// fingerprint still get independent task lists.
type Synthesizer struct {
	opts Options
}

// New creates a Synthesizer.
func New(opts Options) *Synthesizer {
	opts.Commands.applyDefaults()
	return &Synthesizer{opts: opts}
}

// Plan maps a classification to a remediation task list. Fixable
// categories get executable fix-then-verify plans; everything else gets
// a single advisory task that surfaces the suggested manual steps and
// always succeeds.
func (s *Synthesizer) Plan(c classify.Classification) []engine.Task {
	if !c.Fixable {
		return s.advisoryPlan(c)
	}

	switch c.Category {
	case classify.CategoryLinting:
		return []engine.Task{
			s.commandTask("lint-fix", "Apply lint autofixes", s.opts.Commands.LintFix),
			s.commandTask("lint-verify", "Re-run the linter", s.opts.Commands.LintVerify, "lint-fix"),
		}
	case classify.CategoryBuild:
		return []engine.Task{
			s.commandTask("build-clean", "Clean build artifacts", s.opts.Commands.BuildClean),
			s.commandTask("reinstall", "Reinstall dependencies", s.opts.Commands.Reinstall),
			s.commandTask("rebuild", "Rebuild the project", s.opts.Commands.Build, "build-clean", "reinstall"),
		}
	case classify.CategoryDependency:
		return []engine.Task{
			s.commandTask("deps-clean", "Verify the package cache", s.opts.Commands.DepsClean),
			s.commandTask("deps-install", "Install missing dependencies", s.opts.Commands.DepsInstall),
			s.commandTask("deps-verify", "Verify the dependency tree", s.opts.Commands.DepsVerify, "deps-clean", "deps-install"),
		}
	default:
		return s.advisoryPlan(c)
	}
}

func (s *Synthesizer) commandTask(id, title, command string, deps ...string) engine.Task {
	dir := s.opts.Dir
	return engine.Task{
		ID:        id,
		Title:     title,
		DependsOn: deps,
		Run: func(ctx context.Context, h *engine.Handle) error {
			return runCommand(ctx, h, dir, command)
		},
	}
}

func (s *Synthesizer) advisoryPlan(c classify.Classification) []engine.Task {
	return []engine.Task{{
		ID:    "advise",
		Title: fmt.Sprintf("Manual steps for %s failure", c.Category),
		Run: func(ctx context.Context, h *engine.Handle) error {
			logger := ctxlog.FromContext(ctx)
			logger.Warn("No automated fix is available.",
				"category", c.Category, "severity", c.Severity, "description", c.Description)
			for _, fix := range c.SuggestedFixes {
				logger.Warn("Suggested fix.", "step", fix)
			}
			h.SetOutput(strings.Join(c.SuggestedFixes, "\n"))
			return nil
		},
	}}
}

// runCommand shells out through `sh -c` so fix commands can use the full
// shell syntax a package.json script would.
func runCommand(ctx context.Context, h *engine.Handle, dir, command string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Running fix command.", "command", command)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	h.SetOutput(strings.TrimSpace(buf.String()))
	if err != nil {
		return fmt.Errorf("fix command '%s' failed: %w", command, err)
	}
	return nil
}
