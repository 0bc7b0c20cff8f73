// Package wargaming exposes the per-game call surface of the Wargaming
// public API.
//
// The modules and endpoints of a game come from its schema; every endpoint
// call validates its arguments and returns an unfetched *wgapi.Result.
//
// # Usage
//
//	client := wgapi.NewClient(logger)
//	wot, err := wargaming.New("wot", "demo", "en", "eu", client)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := wot.Call("account", "list", wgapi.Params{"search": "alex"})
//	if err != nil {
//		log.Fatal(err) // *schema.ValidationError, no request was made
//	}
//	players, err := res.Collect(ctx)
package wargaming
