package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/wgapi/cache"
	"github.com/s0up4200/wgapi/wgapi"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"search=alex", "account_id=1,2,3", "fields=nickname=x"})
	require.NoError(t, err)
	assert.Equal(t, wgapi.Params{
		"search":     "alex",
		"account_id": "1,2,3",
		"fields":     "nickname=x",
	}, params)

	_, err = parseParams([]string{"search"})
	assert.Error(t, err)

	_, err = parseParams([]string{"=alex"})
	assert.Error(t, err)
}

func TestVersionString(t *testing.T) {
	tests := []struct {
		version  string
		expected string
	}{
		{"dev", "wgapi dev (development build, built now)"},
		{"v1.2.3", "wgapi v1.2.3 (built now)"},
		{"1.3.0-rc.1", "wgapi v1.3.0-rc.1 (pre-release, built now)"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.expected, versionString(tt.version, "now"))
		})
	}
}

func TestCompileFilters(t *testing.T) {
	matchers, err := compileFilters(nil)
	require.NoError(t, err)
	assert.Empty(t, matchers)

	matchers, err = compileFilters([]string{`tier >= 8`, `nation == "ussr"`, `tier >= 8`})
	require.NoError(t, err)
	require.Len(t, matchers, 3)
	assert.Same(t, matchers[0], matchers[2])

	ok, err := matchAll(matchers, "1", map[string]any{"tier": 10, "nation": "ussr"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = matchAll(matchers, "2", map[string]any{"tier": 10, "nation": "germany"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = compileFilters([]string{`tier >=`})
	assert.Error(t, err)
}

func TestResultEntriesAllPagesOfObjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get(wgapi.PageParam) {
		case "1":
			fmt.Fprint(w, `{"status":"ok","meta":{"total":3},"data":{"a":{"n":1},"b":{"n":2}}}`)
		case "2":
			fmt.Fprint(w, `{"status":"ok","meta":{"total":3},"data":{"c":{"n":3}}}`)
		default:
			fmt.Fprint(w, `{"status":"ok","meta":{"total":3},"data":{}}`)
		}
	}))
	t.Cleanup(server.Close)

	prev := callAll
	callAll = true
	t.Cleanup(func() { callAll = prev })

	client := wgapi.NewClient(zerolog.Nop(), wgapi.WithCache(cache.NewMemory()))
	res := client.NewResult(server.URL+"/wot/globalmap/fronts/", nil, wgapi.WithPagination(true))

	entries, err := resultEntries(context.Background(), res)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for i, key := range []string{"a", "b", "c"} {
		assert.Equal(t, key, entries[i].key)
		assert.Equal(t, map[string]any{"n": json.Number(fmt.Sprint(i + 1))}, entries[i].value)
	}
}

type closingCache struct {
	*cache.Memory
	closed bool
}

func (c *closingCache) Close() error {
	c.closed = true
	return nil
}

func TestCloseApp(t *testing.T) {
	prev := responses
	t.Cleanup(func() { responses = prev })

	responses = cache.NewMemory()
	assert.NoError(t, closeApp(rootCmd, nil))

	c := &closingCache{Memory: cache.NewMemory()}
	responses = c
	require.NoError(t, closeApp(rootCmd, nil))
	assert.True(t, c.closed)

	responses = nil
	assert.NoError(t, closeApp(rootCmd, nil))
}
