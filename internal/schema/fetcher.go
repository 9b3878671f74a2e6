// Package schema fetches and analyzes a target's GraphQL schema via
// introspection, producing the in-memory model.Schema that the DoS and BOLA
// probers query for candidate operations.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roomkangali/gqlbola/internal/httpclient"
	"github.com/roomkangali/gqlbola/internal/model"
)

// introspectionQuery is a trimmed introspection document (root type names,
// types, fields, arguments and type references only), unwrapping
// NonNull/List wrappers seven levels deep -- deep enough for every field
// shape a real-world API exposes.
const introspectionQuery = `query IntrospectionQuery {
  __schema {
    queryType { name }
    mutationType { name }
    types {
      kind
      name
      fields(includeDeprecated: true) {
        name
        args { name type { ...TypeRef } }
        type { ...TypeRef }
      }
    }
  }
}
fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType {
        kind
        name
        ofType {
          kind
          name
          ofType {
            kind
            name
            ofType {
              kind
              name
            }
          }
        }
      }
    }
  }
}`

type introspectionEnvelope struct {
	Schema struct {
		QueryType    *struct{ Name string } `json:"queryType"`
		MutationType *struct{ Name string } `json:"mutationType"`
		Types        []introspectionType    `json:"types"`
	} `json:"__schema"`
}

type introspectionType struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Fields []struct {
		Name string `json:"name"`
		Args []struct {
			Name string        `json:"name"`
			Type model.TypeRef `json:"type"`
		} `json:"args"`
		Type model.TypeRef `json:"type"`
	} `json:"fields"`
}

// Fetch requests introspection using the given principal's credentials and
// builds the in-memory schema model. A transport failure is returned
// unchanged; the orchestrator records its text in a Low introspection
// finding without classifying it. hadErrors reports
// whether the response carried GraphQL errors alongside its data.
func Fetch(ctx context.Context, client *httpclient.Client, targetURL string, user model.UserContext, timeout time.Duration) (sch *model.Schema, hadErrors bool, err error) {
	headers := map[string]string{}
	if user.AuthToken != "" {
		headers["Authorization"] = "Bearer " + user.AuthToken
	}

	resp, err := client.Post(ctx, targetURL, introspectionQuery, nil, headers, timeout)
	if err != nil {
		return nil, false, err
	}
	if !resp.HasData() {
		return nil, false, fmt.Errorf("introspection returned no data")
	}

	var env introspectionEnvelope
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return nil, false, fmt.Errorf("decoding introspection response: %w", err)
	}

	return buildSchema(env), len(resp.Errors) > 0, nil
}

func buildSchema(env introspectionEnvelope) *model.Schema {
	s := &model.Schema{Types: make(map[string]*model.TypeDefinition)}
	if env.Schema.QueryType != nil {
		s.QueryType = env.Schema.QueryType.Name
	}
	if env.Schema.MutationType != nil {
		s.MutationType = env.Schema.MutationType.Name
	}

	for _, t := range env.Schema.Types {
		if t.Name == "" {
			continue
		}
		def := &model.TypeDefinition{Kind: t.Kind, Name: t.Name}
		for _, f := range t.Fields {
			fd := model.FieldDefinition{Name: f.Name, Type: f.Type}
			for _, a := range f.Args {
				fd.Args = append(fd.Args, model.InputValue{Name: a.Name, Type: a.Type})
			}
			def.Fields = append(def.Fields, fd)
		}
		s.Types[t.Name] = def
	}
	return s
}

// FromSDL parses a raw SDL string supplied inline as ScanTarget.Schema
// instead of via live introspection. Full SDL grammar (directives, unions,
// interfaces beyond field listing) is out of scope; see DESIGN.md for the
// decision to support only the object/field subset SDL configurations
// realistically carry for this use case.
func FromSDL(sdl string) (*model.Schema, error) {
	return parseMinimalSDL(sdl)
}
