package classify

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Categories(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category Category
		fixable  bool
		severity Severity
	}{
		{"eslint output", errors.New("ESLint found 3 errors"), CategoryLinting, true, SeverityWarning},
		{"lint prefix", errors.New("lint: unexpected token"), CategoryLinting, true, SeverityWarning},
		{"golangci", errors.New("golangci-lint run exited with code 1"), CategoryLinting, true, SeverityWarning},
		{"typescript", errors.New("TS(2345): type error in src/app.ts"), CategoryTypeScript, false, SeverityCritical},
		{"build", errors.New("Build failed with 2 errors"), CategoryBuild, true, SeverityCritical},
		{"compiler", errors.New("undefined: engine.Run"), CategoryBuild, true, SeverityCritical},
		{"auth", errors.New("registry push rejected: 401 Unauthorized"), CategoryAuthentication, false, SeverityCritical},
		{"dependency", errors.New("cannot find module 'left-pad'"), CategoryDependency, true, SeverityWarning},
		{"go modules", errors.New("missing go.sum entry for module"), CategoryDependency, true, SeverityWarning},
		{"unknown", errors.New("segmentation fault (core dumped)"), CategoryUnknown, false, SeverityMinor},
	}

	c := New(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.err)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.fixable, got.Fixable)
			assert.Equal(t, tt.severity, got.Severity)
			assert.NotEmpty(t, got.Description)
			assert.NotEmpty(t, got.SuggestedFixes)
			assert.NotEmpty(t, got.Fingerprint)
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// Mentions both linting and build; linting sits higher in the table.
	c := New(Options{})
	got := c.Classify(errors.New("eslint: build failed with 1 error"))
	assert.Equal(t, CategoryLinting, got.Category)
}

func TestClassify_MemoizesByFingerprint(t *testing.T) {
	c := New(Options{})

	first := c.Classify(errors.New("ESLint found 3 errors"))
	second := c.Classify(errors.New("ESLint found 3 errors"))

	assert.Equal(t, first, second)
	hits, misses := c.Stats()
	assert.EqualValues(t, 1, misses, "the rule table must be evaluated once")
	assert.EqualValues(t, 1, hits)
}

func TestClassify_RecomputesAfterTTL(t *testing.T) {
	c := New(Options{CacheTTL: 30 * time.Millisecond})

	c.Classify(errors.New("ESLint found 3 errors"))
	time.Sleep(60 * time.Millisecond)
	got := c.Classify(errors.New("ESLint found 3 errors"))

	assert.Equal(t, CategoryLinting, got.Category)
	_, misses := c.Stats()
	assert.EqualValues(t, 2, misses, "expired entries must be recomputed")
}

func TestClassify_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New(Options{CacheSize: 2})

	c.Classify(errors.New("error one"))
	c.Classify(errors.New("error two"))
	c.Classify(errors.New("error three")) // evicts "error one"
	c.Classify(errors.New("error one"))

	_, misses := c.Stats()
	assert.EqualValues(t, 4, misses)
}

func TestFingerprint(t *testing.T) {
	t.Run("stable for equal content", func(t *testing.T) {
		a := Fingerprint(errors.New("boom"))
		b := Fingerprint(errors.New("boom"))
		assert.Equal(t, a, b)
	})

	t.Run("distinguishes messages", func(t *testing.T) {
		assert.NotEqual(t, Fingerprint(errors.New("boom")), Fingerprint(errors.New("bang")))
	})

	t.Run("includes the wrapped chain", func(t *testing.T) {
		cause := errors.New("boom")
		wrapped := fmt.Errorf("task failed: %w", cause)
		flat := errors.New("task failed: boom")
		assert.NotEqual(t, Fingerprint(wrapped), Fingerprint(flat))
	})

	t.Run("nil error", func(t *testing.T) {
		assert.Empty(t, Fingerprint(nil))
	})

	t.Run("oversized input is truncated, not rejected", func(t *testing.T) {
		huge := errors.New(string(make([]byte, 100_000)))
		require.Len(t, Fingerprint(huge), 16)
	})
}
