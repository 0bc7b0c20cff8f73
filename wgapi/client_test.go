package wgapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/wgapi/cache"
)

// apiServer counts requests per page_no and answers with the body returned
// by respond.
type apiServer struct {
	*httptest.Server

	mu    sync.Mutex
	total int
	pages map[string]int
}

func newAPIServer(t *testing.T, respond func(r *http.Request) (int, string)) *apiServer {
	t.Helper()
	s := &apiServer{pages: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.total++
		s.pages[r.URL.Query().Get(PageParam)]++
		s.mu.Unlock()

		status, body := respond(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *apiServer) requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *apiServer) pageRequests(page string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[page]
}

func newTestClient(opts ...Option) *Client {
	opts = append([]Option{WithCache(cache.NewMemory())}, opts...)
	return NewClient(zerolog.Nop(), opts...)
}

func TestClientCachesResponses(t *testing.T) {
	server := newAPIServer(t, func(r *http.Request) (int, string) {
		return http.StatusOK, `{"status":"ok","meta":{"count":1},"data":[{"nickname":"alex","account_id":500123}]}`
	})
	client := newTestClient()
	endpoint := server.URL + "/wot/account/list/"

	first := client.NewResult(endpoint, Params{"application_id": "demo", "search": "alex"})
	data, err := first.Data(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KindArray, data.Kind())

	second := client.NewResult(endpoint, Params{"search": "alex", "application_id": "demo"})
	n, err := second.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	meta, err := second.Meta(context.Background())
	require.NoError(t, err)
	assert.Contains(t, meta, "count")

	assert.Equal(t, 1, server.requests())
}

func TestClientCacheKeyIgnoresParamForm(t *testing.T) {
	server := newAPIServer(t, func(r *http.Request) (int, string) {
		return http.StatusOK, `{"status":"ok","data":{}}`
	})
	client := newTestClient()
	endpoint := server.URL + "/wot/account/info/"

	_, err := client.NewResult(endpoint, Params{"account_id": []int{1, 2}, "extra": true}).Data(context.Background())
	require.NoError(t, err)
	_, err = client.NewResult(endpoint, Params{"extra": "true", "account_id": "1,2"}).Data(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, server.requests())

	_, err = client.NewResult(endpoint, Params{"account_id": "1,2,3", "extra": "true"}).Data(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, server.requests())
}

func TestClientRetriesRemoteErrors(t *testing.T) {
	server := newAPIServer(t, func(r *http.Request) (int, string) {
		return http.StatusOK, `{"status":"error","error":{"code":402,"message":"INVALID_APPLICATION_ID","field":"application_id","value":null}}`
	})
	client := newTestClient()

	res := client.NewResult(server.URL+"/wot/account/list/", Params{"application_id": "demo"})
	_, err := res.Data(context.Background())
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, 402, reqErr.Code)
	assert.True(t, reqErr.IsInvalidApplicationID())
	assert.Equal(t, "application_id", reqErr.Field)
	assert.True(t, errors.Is(err, ErrRemote))
	assert.Same(t, reqErr, res.Err())
	assert.Equal(t, DefaultMaxAttempts, server.requests())
}

func TestClientRetriesRemoteErrorsWithNumericValue(t *testing.T) {
	server := newAPIServer(t, func(r *http.Request) (int, string) {
		return http.StatusOK, `{"status":"error","error":{"code":407,"message":"INVALID_LIMIT","field":"limit","value":500}}`
	})
	client := newTestClient()

	_, err := client.NewResult(server.URL+"/wot/x/", Params{"limit": 500}).Data(context.Background())
	require.ErrorIs(t, err, ErrRemote)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, 407, reqErr.Code)
	assert.Equal(t, "INVALID_LIMIT", reqErr.Message)
	assert.Equal(t, "500", reqErr.Value)
	assert.Equal(t, DefaultMaxAttempts, server.requests())
}

func TestClientRetryRecovers(t *testing.T) {
	var calls atomic.Int32
	server := newAPIServer(t, func(r *http.Request) (int, string) {
		if calls.Add(1) < 3 {
			return http.StatusOK, `{"status":"error","error":{"code":407,"message":"REQUEST_LIMIT_EXCEEDED"}}`
		}
		return http.StatusOK, `{"status":"ok","data":{"1":"one"}}`
	})
	client := newTestClient()

	res := client.NewResult(server.URL+"/wot/ratings/types/", nil)
	text, err := res.Text(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":"one"}`, text)
	assert.Equal(t, 3, server.requests())
}

func TestClientMaxAttemptsOverride(t *testing.T) {
	server := newAPIServer(t, func(r *http.Request) (int, string) {
		return http.StatusOK, `{"status":"error","error":{"code":504,"message":"SOURCE_NOT_AVAILABLE"}}`
	})
	client := newTestClient()

	res := client.NewResult(server.URL+"/wot/globalmap/fronts/", nil, WithMaxAttempts(1))
	_, err := res.Data(context.Background())
	require.ErrorIs(t, err, ErrRemote)
	assert.Equal(t, 1, server.requests())
}

func TestClientTransportErrorsAreNotRetried(t *testing.T) {
	server := newAPIServer(t, func(r *http.Request) (int, string) {
		return http.StatusBadGateway, `<html>bad gateway</html>`
	})
	client := newTestClient()

	res := client.NewResult(server.URL+"/wot/account/list/", nil)
	_, err := res.Data(context.Background())
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
	assert.False(t, errors.Is(err, ErrRemote))
	assert.Nil(t, res.Err())
	assert.Equal(t, 1, server.requests())
}

func TestClientSendsUserAgent(t *testing.T) {
	var agents []string
	var mu sync.Mutex
	server := newAPIServer(t, func(r *http.Request) (int, string) {
		mu.Lock()
		agents = append(agents, r.Header.Get("User-Agent"))
		mu.Unlock()
		return http.StatusOK, `{"status":"ok","data":[]}`
	})

	_, err := newTestClient().NewResult(server.URL+"/a/", nil).Data(context.Background())
	require.NoError(t, err)
	_, err = newTestClient(WithUserAgent("custom/1.0")).NewResult(server.URL+"/b/", nil).Data(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultUserAgent, "custom/1.0"}, agents)
}

func TestClientSharesConcurrentFetches(t *testing.T) {
	release := make(chan struct{})
	server := newAPIServer(t, func(r *http.Request) (int, string) {
		<-release
		return http.StatusOK, `{"status":"ok","data":{"500123":{"nickname":"alex"}}}`
	})
	client := newTestClient()
	endpoint := server.URL + "/wot/account/info/"

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := client.NewResult(endpoint, Params{"account_id": 500123})
			_, err := res.Get(context.Background(), 500123)
			errs <- err
		}()
	}
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, server.requests())
}

func TestClientCancelledCallerDoesNotFailOthers(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	server := newAPIServer(t, func(r *http.Request) (int, string) {
		started <- struct{}{}
		<-release
		return http.StatusOK, `{"status":"ok","data":{"1":"one"}}`
	})
	client := newTestClient()
	endpoint := server.URL + "/wot/ratings/types/"

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := client.NewResult(endpoint, nil).Data(ctx)
		first <- err
	}()
	<-started

	second := make(chan error, 1)
	go func() {
		_, err := client.NewResult(endpoint, nil).Get(context.Background(), 1)
		second <- err
	}()

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(release)
	assert.NoError(t, <-second)
	assert.Equal(t, 1, server.requests())
}

type stubTransport struct {
	calls int
	resp  *Response
}

func (s *stubTransport) Get(_ context.Context, _ string, _ url.Values) (*Response, error) {
	s.calls++
	return s.resp, nil
}

func TestClientWithTransport(t *testing.T) {
	stub := &stubTransport{resp: &Response{Status: "error"}}
	client := newTestClient(WithTransport(stub), WithRetryPolicy(RetryPolicy{MaxAttempts: 2}))

	_, err := client.NewResult("https://api.example/wot/x/", nil).Data(context.Background())
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "UNKNOWN_ERROR", reqErr.Message)
	assert.Equal(t, 2, stub.calls)
}

func TestNewResultPageParam(t *testing.T) {
	client := newTestClient()

	res := client.NewResult("https://api.example/", Params{PageParam: 4}, WithPagination(false))
	assert.Equal(t, 4, res.Page())
	assert.False(t, res.Paginated())

	res = client.NewResult("https://api.example/", Params{"search": "x"}, WithPagination(true))
	assert.Equal(t, 1, res.Page())
	assert.True(t, res.Paginated())
	assert.True(t, strings.HasPrefix(res.URL(), "https://api.example"))
	assert.Equal(t, map[string]string{"search": "x"}, res.Params())
}
