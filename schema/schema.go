// Package schema loads the declarative description of the API: which
// modules each game exposes, the endpoints of every module and the
// parameters each endpoint accepts.
//
// A schema file is named <game>-schema.json and has the form
//
//	{"account": {"list": {"__doc__": "...", "search": {"doc": "...", "required": true, "type": "string"}}}}
package schema

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

//go:embed data/*.json
var builtin embed.FS

const docKey = "__doc__"

// Schema is the parsed API description of one game
type Schema struct {
	Game    string
	Modules map[string]*Module
}

// Module groups related endpoints, e.g. "account"
type Module struct {
	Name      string
	Endpoints map[string]*Endpoint
}

// ModuleNames returns the module names in sorted order
func (s *Schema) ModuleNames() []string {
	return sortedNames(s.Modules)
}

// Module returns the named module
func (s *Schema) Module(name string) (*Module, error) {
	m, ok := s.Modules[name]
	if !ok {
		return nil, validationErrorf("unknown module for %s: %s", s.Game, name)
	}
	return m, nil
}

// EndpointNames returns the endpoint names in sorted order
func (m *Module) EndpointNames() []string {
	return sortedNames(m.Endpoints)
}

// Endpoint returns the named endpoint
func (m *Module) Endpoint(name string) (*Endpoint, error) {
	e, ok := m.Endpoints[name]
	if !ok {
		return nil, validationErrorf("unknown endpoint in module %s: %s", m.Name, name)
	}
	return e, nil
}

// Load reads the schema of game from dir, or from the built-in schemas when
// dir is empty.
func Load(game, dir string) (*Schema, error) {
	if err := CheckGame(game); err != nil {
		return nil, err
	}

	var fsys fs.FS = builtin
	name := "data/" + game + "-schema.json"
	if dir != "" {
		fsys = os.DirFS(dir)
		name = game + "-schema.json"
	}

	f, err := fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no schema for game %s: %w", game, err)
		}
		return nil, fmt.Errorf("failed to open schema: %w", err)
	}
	defer f.Close()

	return Parse(game, f)
}

// Parse decodes a schema document
func Parse(game string, r io.Reader) (*Schema, error) {
	var raw map[string]map[string]map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode schema for %s: %w", game, err)
	}

	s := &Schema{
		Game:    game,
		Modules: make(map[string]*Module, len(raw)),
	}
	for moduleName, endpoints := range raw {
		module := &Module{
			Name:      moduleName,
			Endpoints: make(map[string]*Endpoint, len(endpoints)),
		}
		for endpointName, fields := range endpoints {
			endpoint := &Endpoint{
				Module: moduleName,
				Name:   endpointName,
				Params: make(map[string]Param, len(fields)),
			}
			for field, value := range fields {
				if field == docKey {
					if err := json.Unmarshal(value, &endpoint.Doc); err != nil {
						return nil, fmt.Errorf("invalid doc of %s: %w", endpoint.Path(), err)
					}
					continue
				}
				var p Param
				if err := json.Unmarshal(value, &p); err != nil {
					return nil, fmt.Errorf("invalid parameter %s of %s: %w", field, endpoint.Path(), err)
				}
				endpoint.Params[field] = p
			}
			module.Endpoints[endpointName] = endpoint
		}
		s.Modules[moduleName] = module
	}
	return s, nil
}
