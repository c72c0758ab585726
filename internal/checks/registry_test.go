package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	assert.Same(t, reg, Default())

	ids := reg.IDs()
	require.Len(t, ids, 18)
	assert.Equal(t, "git_repository", ids[0])
	assert.Equal(t, "gitleaks_scan", ids[len(ids)-1])

	for _, c := range reg.Checks() {
		assert.NotEmpty(t, c.Title, c.ID)
		assert.NotEmpty(t, c.Family, c.ID)
	}

	c, ok := reg.Lookup("readme_present")
	require.True(t, ok)
	assert.Equal(t, "README.md", c.Artifact)

	_, ok = reg.Lookup("nope")
	assert.False(t, ok)
}

func TestRegistryIDsIsACopy(t *testing.T) {
	reg := Default()
	ids := reg.IDs()
	ids[0] = "mutated"
	assert.Equal(t, "git_repository", reg.IDs()[0])
}

func TestRegistryUnknown(t *testing.T) {
	reg := Default()
	assert.Empty(t, reg.Unknown([]string{"readme_present", "gitleaks_scan"}))
	assert.Equal(t, []string{"nope", "other"}, reg.Unknown([]string{"nope", "readme_present", "other", "nope"}))
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	noop := func(context.Context, *Target) CheckResult { return CheckResult{} }
	assert.Panics(t, func() {
		NewRegistry(Check{ID: "a", Run: noop}, Check{ID: "a", Run: noop})
	})
	assert.Panics(t, func() {
		NewRegistry(Check{ID: "a"})
	})
}
