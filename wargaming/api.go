package wargaming

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/wgapi/schema"
	"github.com/s0up4200/wgapi/wgapi"
)

// API is the call surface of one game in one region
type API struct {
	game          string
	region        string
	applicationID string
	language      string
	baseURL       string
	maxAttempts   int

	client  *wgapi.Client
	schema  *schema.Schema
	modules map[string]*Module
	logger  zerolog.Logger
}

// Option configures an API
type Option func(*apiOptions)

type apiOptions struct {
	baseURL     string
	schemaDir   string
	schema      *schema.Schema
	maxAttempts int
	logger      zerolog.Logger
}

// WithBaseURL sets the URL template formatted with region and game
func WithBaseURL(template string) Option {
	return func(o *apiOptions) {
		o.baseURL = template
	}
}

// WithSchemaDir loads <game>-schema.json from dir instead of the built-in schemas
func WithSchemaDir(dir string) Option {
	return func(o *apiOptions) {
		o.schemaDir = dir
	}
}

// WithSchema uses an already parsed schema
func WithSchema(s *schema.Schema) Option {
	return func(o *apiOptions) {
		o.schema = s
	}
}

// WithMaxAttempts sets the attempt budget of every Result created by the API
func WithMaxAttempts(attempts int) Option {
	return func(o *apiOptions) {
		o.maxAttempts = attempts
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(o *apiOptions) {
		o.logger = logger
	}
}

// New builds the API of game in region from its schema
func New(game, applicationID, language, region string, client *wgapi.Client, opts ...Option) (*API, error) {
	o := apiOptions{
		baseURL: schema.DefaultBaseURL,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	game = strings.ToLower(game)
	baseURL, err := schema.RegionURL(o.baseURL, region, game)
	if err != nil {
		return nil, err
	}

	s := o.schema
	if s == nil {
		s, err = schema.Load(game, o.schemaDir)
		if err != nil {
			return nil, err
		}
	}

	api := &API{
		game:          game,
		region:        region,
		applicationID: applicationID,
		language:      language,
		baseURL:       baseURL,
		maxAttempts:   o.maxAttempts,
		client:        client,
		schema:        s,
		modules:       make(map[string]*Module, len(s.Modules)),
		logger:        o.logger,
	}
	for name, m := range s.Modules {
		api.modules[name] = &Module{api: api, schema: m}
	}

	api.logger.Debug().
		Str("game", game).
		Str("region", region).
		Str("base_url", baseURL).
		Int("modules", len(api.modules)).
		Msg("API initialized")

	return api, nil
}

// Game returns the game identifier
func (a *API) Game() string {
	return a.game
}

// Region returns the region identifier
func (a *API) Region() string {
	return a.region
}

// BaseURL returns the base URL of every endpoint
func (a *API) BaseURL() string {
	return a.baseURL
}

// Modules returns the module names in sorted order
func (a *API) Modules() []string {
	return a.schema.ModuleNames()
}

// Module returns the named module
func (a *API) Module(name string) (*Module, error) {
	m, ok := a.modules[name]
	if !ok {
		return nil, &schema.ValidationError{Reason: fmt.Sprintf("unknown module for %s: %s", a.game, name)}
	}
	return m, nil
}

// Call is a shortcut for Module(module).Call(endpoint, args)
func (a *API) Call(module, endpoint string, args wgapi.Params) (*wgapi.Result, error) {
	m, err := a.Module(module)
	if err != nil {
		return nil, err
	}
	return m.Call(endpoint, args)
}

// String renders the API like <WOT at https://api.worldoftanks.eu/wot/, language=en>
func (a *API) String() string {
	return fmt.Sprintf("<%s at %s, language=%s>", strings.ToUpper(a.game), a.baseURL, a.language)
}

// Module is a named group of endpoints bound to an API
type Module struct {
	api    *API
	schema *schema.Module
}

// Name returns the module name
func (m *Module) Name() string {
	return m.schema.Name
}

// Endpoints returns the endpoint names in sorted order
func (m *Module) Endpoints() []string {
	return m.schema.EndpointNames()
}

// Endpoint returns the schema of the named endpoint
func (m *Module) Endpoint(name string) (*schema.Endpoint, error) {
	return m.schema.Endpoint(name)
}

// Call validates args against the endpoint and returns an unfetched Result
func (m *Module) Call(endpoint string, args wgapi.Params) (*wgapi.Result, error) {
	e, err := m.schema.Endpoint(endpoint)
	if err != nil {
		return nil, err
	}

	call, err := e.Build(args, schema.Defaults{
		ApplicationID: m.api.applicationID,
		Language:      m.api.language,
	})
	if err != nil {
		return nil, err
	}

	opts := []wgapi.ResultOption{wgapi.WithPagination(call.Paginated)}
	if m.api.maxAttempts > 0 {
		opts = append(opts, wgapi.WithMaxAttempts(m.api.maxAttempts))
	}
	return m.api.client.NewResult(m.api.baseURL+call.Path, call.Params, opts...), nil
}
