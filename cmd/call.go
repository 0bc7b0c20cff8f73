package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/wgapi/filter"
	"github.com/s0up4200/wgapi/wargaming"
	"github.com/s0up4200/wgapi/wgapi"
)

var (
	callParams  []string
	callFilters []string
	callLimit   int
	callAll     bool
	callRegions []string
)

// callCmd represents the call command
var callCmd = &cobra.Command{
	Use:   "call <module> <endpoint>",
	Short: "Call an API endpoint and print the result",
	Long: `Call an endpoint of the configured game and print one item per line.

Parameters are passed as key=value pairs; list values are comma separated.
application_id and language are filled from the configuration. Endpoints
that accept page_no are walked across all pages with --all.

Examples:
  wgapi call account list -p search=alex
  wgapi -g wows call encyclopedia ships --all --filter 'tier >= 8'
  wgapi call account list -p search=alex --regions eu,na,asia`,
	Args: cobra.ExactArgs(2),
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringArrayVarP(&callParams, "param", "p", nil, "endpoint parameter as key=value (repeatable)")
	callCmd.Flags().StringArrayVarP(&callFilters, "filter", "f", nil, "filter expression applied to result items (repeatable, all must match)")
	callCmd.Flags().IntVarP(&callLimit, "limit", "n", 0, "print at most n items")
	callCmd.Flags().BoolVarP(&callAll, "all", "a", false, "iterate across all pages of paginated endpoints")
	callCmd.Flags().StringSliceVar(&callRegions, "regions", nil, "query several regions concurrently")
}

func runCall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	params, err := parseParams(callParams)
	if err != nil {
		return err
	}

	matchers, err := compileFilters(callFilters)
	if err != nil {
		return err
	}

	regions := callRegions
	if len(regions) == 0 {
		regions = []string{cfg.Application.Region}
	}

	results := make([]*wgapi.Result, 0, len(regions))
	for _, region := range regions {
		api, err := newAPI(region)
		if err != nil {
			return err
		}
		res, err := api.Call(args[0], args[1], params)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if len(results) > 1 {
		logger.Debug().Strs("regions", regions).Msg("Prefetching results")
		if err := wargaming.Prefetch(ctx, wargaming.DefaultPrefetchLimit, results...); err != nil {
			return err
		}
	}

	for i, res := range results {
		if len(results) > 1 {
			fmt.Printf("== %s\n", regions[i])
		}
		if err := printResult(ctx, res, matchers); err != nil {
			return err
		}
	}
	return nil
}

// parseParams turns key=value pairs into call parameters
func parseParams(pairs []string) (wgapi.Params, error) {
	params := make(wgapi.Params, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (expected key=value)", pair)
		}
		params[key] = value
	}
	return params, nil
}

// compileFilters compiles every --filter expression. Repeated expressions
// share one program.
func compileFilters(expressions []string) ([]filter.Matcher, error) {
	if len(expressions) == 0 {
		return nil, nil
	}

	compiler, err := filter.NewCompiler(filter.DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	matchers := make([]filter.Matcher, 0, len(expressions))
	for _, expression := range expressions {
		f, err := compiler.Compile(expression)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		matchers = append(matchers, f)
	}
	logger.Debug().Int("filters", len(matchers)).Int("programs", compiler.Len()).Msg("Filters compiled")
	return matchers, nil
}

func matchAll(matchers []filter.Matcher, key, item any) (bool, error) {
	for _, m := range matchers {
		ok, err := m.Match(key, item)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

type entry struct {
	key   any
	value any
}

func printResult(ctx context.Context, res *wgapi.Result, matchers []filter.Matcher) error {
	entries, err := resultEntries(ctx, res)
	if err != nil {
		return err
	}

	if total, err := res.Len(ctx); err == nil {
		logger.Debug().Str("url", res.URL()).Int("total", total).Int("fetched", len(entries)).Msg("Result size")
	}

	printed := 0
	for _, e := range entries {
		if callLimit > 0 && printed >= callLimit {
			break
		}
		ok, err := matchAll(matchers, e.key, e.value)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		text, err := json.Marshal(e.value)
		if err != nil {
			return fmt.Errorf("failed to encode item: %w", err)
		}
		if key, ok := e.key.(string); ok {
			fmt.Fprintf(os.Stdout, "%s\t%s\n", key, text)
		} else {
			fmt.Fprintln(os.Stdout, string(text))
		}
		printed++
	}

	if printed == 0 {
		fmt.Fprintln(os.Stderr, "No items found.")
	}
	return nil
}

// resultEntries returns what should be printed: the pairs of an object
// payload or the elements of an array payload, across pages with --all.
func resultEntries(ctx context.Context, res *wgapi.Result) ([]entry, error) {
	if res.Paginated() && callAll {
		var entries []entry
		it := res.Iter()
		for i := 0; it.Next(ctx); i++ {
			e, err := pageEntry(ctx, res, i, it.Value())
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
		return entries, it.Err()
	}

	payload, err := res.Data(ctx)
	if err != nil {
		return nil, err
	}

	switch payload.Kind() {
	case wgapi.KindObject:
		items, err := payload.Items()
		if err != nil {
			return nil, err
		}
		entries := make([]entry, len(items))
		for i, item := range items {
			entries[i] = entry{key: item.Key, value: item.Value}
		}
		return entries, nil
	case wgapi.KindArray:
		items, _ := payload.AsSequence()
		entries := make([]entry, len(items))
		for i, item := range items {
			entries[i] = entry{key: i, value: item}
		}
		return entries, nil
	case wgapi.KindNull:
		return nil, nil
	default:
		return []entry{{key: 0, value: payload.Value()}}, nil
	}
}

// pageEntry pairs an iterated item with its value. Object pages yield keys,
// so the value is looked up on the page the iterator is on.
func pageEntry(ctx context.Context, res *wgapi.Result, index int, item any) (entry, error) {
	page, err := res.Data(ctx)
	if err != nil {
		return entry{}, err
	}
	if page.Kind() != wgapi.KindObject {
		return entry{key: index, value: item}, nil
	}
	value, err := page.Lookup(item)
	if err != nil {
		return entry{}, err
	}
	return entry{key: item, value: value}, nil
}
