package classify

// rule pairs a set of case-insensitive substring patterns with the
// classification they imply.
type rule struct {
	patterns    []string
	category    Category
	severity    Severity
	fixable     bool
	description string
	fixes       []string
}

// rules is evaluated in priority order; the first matching rule wins.
// Keep new categories additive: append a rule, do not grow a conditional.
var rules = []rule{
	{
		patterns:    []string{"eslint", "lint:", "linting", "lint error", "golangci"},
		category:    CategoryLinting,
		severity:    SeverityWarning,
		fixable:     true,
		description: "A linter reported style or correctness violations.",
		fixes: []string{
			"run the linter's auto-fix mode",
			"re-run the linter to verify a clean pass",
		},
	},
	{
		patterns:    []string{"typescript", "tsc ", "ts(", "type error", "is not assignable to"},
		category:    CategoryTypeScript,
		severity:    SeverityCritical,
		fixable:     false,
		description: "Type checking failed; the reported types need manual reconciliation.",
		fixes: []string{
			"inspect the reported type mismatch and adjust the offending declaration",
		},
	},
	{
		patterns:    []string{"build failed", "compilation", "cannot compile", "undefined:", "webpack", "vite"},
		category:    CategoryBuild,
		severity:    SeverityCritical,
		fixable:     true,
		description: "The build toolchain failed to produce artifacts.",
		fixes: []string{
			"clean build outputs",
			"reinstall dependencies",
			"rebuild from a clean slate",
		},
	},
	{
		patterns:    []string{"unauthorized", "authentication", "401", "403", "forbidden", "invalid token", "permission denied"},
		category:    CategoryAuthentication,
		severity:    SeverityCritical,
		fixable:     false,
		description: "A tool rejected the run's credentials.",
		fixes: []string{
			"refresh or re-issue the credentials used by the failing step",
		},
	},
	{
		patterns:    []string{"cannot find module", "module not found", "no required module", "missing go.sum entry", "unresolved dependency", "npm err"},
		category:    CategoryDependency,
		severity:    SeverityWarning,
		fixable:     true,
		description: "A declared dependency could not be resolved.",
		fixes: []string{
			"prune the module cache",
			"reinstall declared dependencies",
			"verify the build after reinstalling",
		},
	},
}

// unknownRule is the fallback when nothing in the table matches.
var unknownRule = rule{
	category:    CategoryUnknown,
	severity:    SeverityMinor,
	fixable:     false,
	description: "The error did not match any known failure pattern.",
	fixes: []string{
		"inspect the raw error output and rerun the failing task manually",
	},
}
