package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chmouel/gaiacommit/internal/theme"
)

func TestSuggestConfigKeys(t *testing.T) {
	assert.Equal(t, []string{"gc.retry_attempts=", "gc.retry_backoff_limit=", "gc.remote="}, SuggestConfig("gc.re"))
	assert.Equal(t, SuggestConfig("gc.hist"), SuggestConfig("hist"))
	assert.Len(t, SuggestConfig(""), len(ConfigKeys))
	assert.Empty(t, SuggestConfig("gc.nope"))
}

func TestSuggestConfigValues(t *testing.T) {
	assert.Equal(t, []string{"gc.selector=fzf"}, SuggestConfig("gc.selector=f"))
	assert.Equal(t, []string{"gc.history=true", "gc.history=false"}, SuggestConfig("gc.history="))
	assert.Empty(t, SuggestConfig("gc.remote=or"))
}

func TestFlagValues(t *testing.T) {
	assert.Equal(t, theme.Available(), FlagValues("--theme"))
	assert.Equal(t, theme.Available(), FlagValues("-t"))
	assert.Equal(t, []string{"HEAD"}, FlagValues("branch"))
	assert.Nil(t, FlagValues("--remote"))
	assert.Nil(t, FlagValues("--unknown"))
}

func TestGetFlagsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range GetFlags() {
		assert.False(t, seen[f.Name], "duplicate flag %s", f.Name)
		seen[f.Name] = true
		if f.Short != "" {
			assert.False(t, seen[f.Short], "duplicate alias %s", f.Short)
			seen[f.Short] = true
		}
	}
}
