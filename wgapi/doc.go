// Package wgapi implements lazily fetched results of the Wargaming public API.
//
// A Result is bound to one endpoint URL and one set of query parameters. Its
// data is requested on first access, stored in a response cache shared by
// every Result of the Client, and reused for identical requests afterwards.
//
// # Usage
//
//	client := wgapi.NewClient(logger, wgapi.WithTimeout(10*time.Second))
//	res := client.NewResult("https://api.worldoftanks.eu/wot/account/list/",
//		wgapi.Params{"application_id": "demo", "search": "alex"})
//
//	accounts, err := res.Collect(ctx)
//
// # Pagination
//
// Endpoints that accept page_no can be iterated transparently across pages
// by creating the Result with WithPagination(true). Len then reports the
// server side total from meta.total and fails with ErrUnsupported when the
// endpoint does not report one; iteration still works and stops at the
// first empty page.
//
// # Errors
//
// An API response with status "error" becomes a *RequestError carrying the
// server's code and message. Only these errors are retried, up to the
// attempt budget of the RetryPolicy. Network and decoding failures are
// returned as *TransportError on the first attempt.
package wgapi
