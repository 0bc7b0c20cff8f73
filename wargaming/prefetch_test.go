package wargaming

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/wgapi/wgapi"
)

func TestPrefetch(t *testing.T) {
	server, requests := newTestServer(t, `{"status":"ok","data":[{"account_id":1}]}`)

	var results []*wgapi.Result
	for _, region := range []string{"eu", "na", "asia"} {
		api := newTestAPI(t, server, "wot", region)
		res, err := api.Call("account", "list", wgapi.Params{"search": "alex"})
		require.NoError(t, err)
		results = append(results, res)
	}

	require.NoError(t, Prefetch(context.Background(), 2, results...))
	assert.Len(t, requests(), 3)

	// data is now served without further requests
	for _, res := range results {
		n, err := res.Len(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}
	assert.Len(t, requests(), 3)

	assert.NoError(t, Prefetch(context.Background(), 0))
}

func TestPrefetchError(t *testing.T) {
	server, _ := newTestServer(t, `{"status":"error","error":{"code":407,"message":"INVALID_APPLICATION_ID"}}`)
	api := newTestAPI(t, server, "wot", "eu", WithMaxAttempts(1))

	res, err := api.Call("ratings", "types", nil)
	require.NoError(t, err)

	err = Prefetch(context.Background(), 0, res)
	require.Error(t, err)
	var reqErr *wgapi.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.True(t, reqErr.IsInvalidApplicationID())
}
