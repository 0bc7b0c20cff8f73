package wgapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"sync"
)

// reprLimit bounds the text produced by Repr
const reprLimit = 200

// Result is one logical query against the API: an endpoint URL and a set of
// parameters. The data is fetched on first access, served from the response
// cache afterwards and, when pagination is enabled, iterated across pages.
type Result struct {
	mu sync.Mutex

	client   *Client
	url      string
	params   map[string]string
	paginate bool
	retry    RetryPolicy

	pageNo  int
	perPage int

	lastErr  *RequestError
	override *Payload

	loadedKey string
	payload   Payload
	meta      map[string]any
}

// URL returns the endpoint URL
func (r *Result) URL() string {
	return r.url
}

// Params returns a copy of the normalized query parameters
func (r *Result) Params() map[string]string {
	return maps.Clone(r.params)
}

// Paginated reports whether the Result iterates across pages
func (r *Result) Paginated() bool {
	return r.paginate
}

// Page returns the current page number
func (r *Result) Page() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pageNo
}

// Err returns the last error reported by the API, if any
func (r *Result) Err() *RequestError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Data returns the payload of the current page
func (r *Result) Data(ctx context.Context) (Payload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetchLocked(ctx)
}

// Meta returns the response metadata of the current page. It is empty when
// the API sent none.
func (r *Result) Meta(ctx context.Context) (map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.fetchLocked(ctx); err != nil {
		return nil, err
	}
	return r.meta, nil
}

// Len returns meta.total for a paginated Result and the number of entries
// of the payload otherwise. A paginated Result whose response has no total
// fails with ErrUnsupported.
func (r *Result) Len(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lenLocked(ctx)
}

func (r *Result) lenLocked(ctx context.Context) (int, error) {
	payload, err := r.fetchLocked(ctx)
	if err != nil {
		return 0, err
	}
	if !r.paginate || r.override != nil {
		return payload.Len()
	}
	if total, ok := metaTotal(r.meta); ok {
		return total, nil
	}
	return 0, &UnsupportedError{URL: r.url, Reason: "response has no 'total' in 'meta'"}
}

// PerPage returns the number of items per page, discovered from the first
// fetched page. If nothing was fetched yet, page 1 is fetched without
// moving the page cursor.
func (r *Result) PerPage(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.perPageLocked(ctx)
}

func (r *Result) perPageLocked(ctx context.Context) (int, error) {
	if r.perPage == 0 && r.override == nil {
		pageNo := r.pageNo
		r.pageNo = 1
		_, err := r.fetchLocked(ctx)
		r.pageNo = pageNo
		if err != nil {
			return 0, err
		}
	}
	return r.perPage, nil
}

// Get returns the entry stored under key, trying the alternate string/int
// representation of the key before failing with ErrKeyNotFound.
func (r *Result) Get(ctx context.Context, key any) (any, error) {
	payload, err := r.Data(ctx)
	if err != nil {
		return nil, err
	}
	return payload.Lookup(key)
}

// Keys returns the keys of an object payload
func (r *Result) Keys(ctx context.Context) ([]string, error) {
	payload, err := r.Data(ctx)
	if err != nil {
		return nil, err
	}
	return payload.Keys()
}

// Items returns the key/value pairs of an object payload
func (r *Result) Items(ctx context.Context) ([]Item, error) {
	payload, err := r.Data(ctx)
	if err != nil {
		return nil, err
	}
	return payload.Items()
}

// Values returns the values of an object payload
func (r *Result) Values(ctx context.Context) ([]any, error) {
	payload, err := r.Data(ctx)
	if err != nil {
		return nil, err
	}
	return payload.Values()
}

// Text renders the full payload
func (r *Result) Text(ctx context.Context) (string, error) {
	payload, err := r.Data(ctx)
	if err != nil {
		return "", err
	}
	return payload.String(), nil
}

// Repr renders the payload truncated to 200 characters, suitable for logs
func (r *Result) Repr(ctx context.Context) (string, error) {
	text, err := r.Text(ctx)
	if err != nil {
		return "", err
	}
	return truncate(text, reprLimit), nil
}

// String implements fmt.Stringer
func (r *Result) String() string {
	text, err := r.Text(context.Background())
	if err != nil {
		return fmt.Sprintf("<%s: %v>", r.url, err)
	}
	return text
}

// SetData replaces the payload, bypassing fetching and pagination entirely
func (r *Result) SetData(v any) {
	p := NewPayload(v)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.override = &p
}

// ResetData drops a payload installed by SetData
func (r *Result) ResetData() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.override = nil
}

// Collect drains Iter into a slice
func (r *Result) Collect(ctx context.Context) ([]any, error) {
	var out []any
	it := r.Iter()
	for it.Next(ctx) {
		out = append(out, it.Value())
	}
	return out, it.Err()
}

// Iter returns an iterator over the payload. For a paginated Result the
// iterator continues across pages and moves the Result's page cursor; it is
// single-pass and Iter must be called again to iterate anew.
func (r *Result) Iter() *Iterator {
	r.mu.Lock()
	paginate := r.paginate && r.override == nil
	r.mu.Unlock()

	return &Iterator{
		r:        r,
		paginate: paginate,
	}
}

// pageParams returns the query parameters of the current page
func (r *Result) pageParams() map[string]string {
	if !r.paginate {
		return r.params
	}
	params := maps.Clone(r.params)
	params[PageParam] = strconv.Itoa(r.pageNo)
	return params
}

func (r *Result) fetchLocked(ctx context.Context) (Payload, error) {
	if r.override != nil {
		if r.meta == nil {
			r.meta = map[string]any{}
		}
		return *r.override, nil
	}

	params := r.pageParams()
	key := CacheKey(r.url, params)
	if key == r.loadedKey {
		return r.payload, nil
	}

	entry, err := r.client.load(ctx, r.url, key, params, r.retry)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			r.lastErr = reqErr
		}
		return Payload{}, err
	}

	payload, err := DecodePayload(entry.Data)
	if err != nil {
		return Payload{}, &TransportError{URL: r.url, Err: err}
	}
	meta, err := decodeMeta(entry.Meta)
	if err != nil {
		return Payload{}, &TransportError{URL: r.url, Err: err}
	}

	r.loadedKey = key
	r.payload = payload
	r.meta = meta

	if r.perPage == 0 {
		if n, err := payload.Len(); err == nil {
			r.perPage = n
		}
	}
	return payload, nil
}

// nextPage moves the cursor forward and returns the elements of the new page
func (r *Result) nextPage(ctx context.Context) ([]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pageNo++
	r.client.logger.Debug().Str("url", r.url).Int("page", r.pageNo).Msg("Fetching next page")

	payload, err := r.fetchLocked(ctx)
	if err != nil {
		return nil, err
	}
	return payload.Elements()
}

// hasMorePages reports whether the page after the current one may hold
// items. Without a known total the next page is always tried.
func (r *Result) hasMorePages(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// an override is a single page
	if r.override != nil {
		return false, nil
	}

	total, err := r.lenLocked(ctx)
	if errors.Is(err, ErrUnsupported) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	perPage, err := r.perPageLocked(ctx)
	if err != nil {
		return false, err
	}
	return !(0 < total && total < r.pageNo*perPage), nil
}

func (r *Result) elements(ctx context.Context) ([]any, error) {
	payload, err := r.Data(ctx)
	if err != nil {
		return nil, err
	}
	return payload.Elements()
}

func decodeMeta(raw json.RawMessage) (map[string]any, error) {
	meta := map[string]any{}
	if len(raw) == 0 {
		return meta, nil
	}
	p, err := DecodePayload(raw)
	if err != nil {
		return nil, err
	}
	if m, ok := p.Value().(map[string]any); ok {
		return m, nil
	}
	return meta, nil
}

func metaTotal(meta map[string]any) (int, bool) {
	v, ok := meta["total"]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return int(n), true
	case float64:
		return int(t), true
	case int:
		return t, true
	case nil:
		return 0, true
	}
	return 0, false
}
