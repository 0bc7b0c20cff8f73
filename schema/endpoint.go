package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/s0up4200/wgapi/wgapi"
)

// Parameter names injected into every call when omitted
const (
	ParamLanguage      = "language"
	ParamApplicationID = "application_id"
)

// Param describes one declared endpoint parameter
type Param struct {
	Doc      string `json:"doc"`
	Required bool   `json:"required"`
	Type     string `json:"type"`
}

// Defaults are injected into a call when the caller omits them
type Defaults struct {
	ApplicationID string
	Language      string
}

// Call is a validated request ready to be bound to a Result
type Call struct {
	// Path is relative to the game's base URL, e.g. "account/list/"
	Path      string
	Params    wgapi.Params
	Paginated bool
}

// Builder turns caller arguments into a validated Call
type Builder interface {
	Build(args wgapi.Params, defaults Defaults) (Call, error)
}

// Endpoint is a single remote operation of a module
type Endpoint struct {
	Module string
	Name   string
	Doc    string
	Params map[string]Param
}

var _ Builder = (*Endpoint)(nil)

// Path returns the endpoint path relative to the base URL
func (e *Endpoint) Path() string {
	return e.Module + "/" + e.Name + "/"
}

// Paginated reports whether the endpoint declares page_no
func (e *Endpoint) Paginated() bool {
	_, ok := e.Params[wgapi.PageParam]
	return ok
}

// Build validates args against the declared parameters. Unknown and missing
// required parameters are rejected; language and application_id are filled
// from defaults. The call paginates when the endpoint declares page_no and
// the caller did not pick a page.
func (e *Endpoint) Build(args wgapi.Params, defaults Defaults) (Call, error) {
	params := make(wgapi.Params, len(args)+2)
	for _, name := range sortedNames(args) {
		if _, ok := e.Params[name]; !ok {
			return Call{}, validationErrorf("wrong parameter for %s: %s", e.Path(), name)
		}
		params[name] = args[name]
	}

	if _, ok := params[ParamLanguage]; !ok && defaults.Language != "" {
		params[ParamLanguage] = defaults.Language
	}
	if _, ok := params[ParamApplicationID]; !ok && defaults.ApplicationID != "" {
		params[ParamApplicationID] = defaults.ApplicationID
	}

	for _, name := range sortedNames(e.Params) {
		if !e.Params[name].Required {
			continue
		}
		if _, ok := params[name]; !ok {
			return Call{}, validationErrorf("missing required parameter for %s: %s", e.Path(), name)
		}
	}

	_, pageGiven := args[wgapi.PageParam]
	return Call{
		Path:      e.Path(),
		Params:    params,
		Paginated: e.Paginated() && !pageGiven,
	}, nil
}

// Help renders the endpoint documentation with its keyword arguments
func (e *Endpoint) Help() string {
	var b strings.Builder
	b.WriteString(e.Doc)
	b.WriteString("\n\nKeyword arguments:\n")
	for _, name := range sortedNames(e.Params) {
		p := e.Params[name]
		fmt.Fprintf(&b, "%-20s  doc:      %s\n", name, p.Doc)
		fmt.Fprintf(&b, "%-20s  required: %t\n", "", p.Required)
		fmt.Fprintf(&b, "%-20s  type:     %s\n\n", "", p.Type)
	}
	return b.String()
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
