package expr

import (
	"encoding/json"
	"fmt"

	"github.com/typeconform/validator/pkg/algebra"
)

// Unmarshal decodes a type expression from its tagged-object snapshot form,
// e.g. {"type":"union","members":[{"type":"primitive","kind":"integer"},
// {"type":"literal","value":"unknown"}]}.
func Unmarshal(data []byte) (Expr, error) {
	var peek struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return nil, fmt.Errorf("type expression: %w", err)
	}

	switch peek.Type {
	case "primitive":
		var raw struct {
			Kind algebra.Kind `json:"kind"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if !raw.Kind.IsValid() {
			return nil, fmt.Errorf("type expression: unknown primitive kind %q", raw.Kind)
		}
		return &Primitive{Kind: raw.Kind}, nil

	case "literal":
		var raw struct {
			Value any `json:"value"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return &Literal{Value: raw.Value}, nil

	case "union":
		var raw struct {
			Members []json.RawMessage `json:"members"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if len(raw.Members) == 0 {
			return nil, fmt.Errorf("type expression: union requires at least one member")
		}
		members := make([]Expr, len(raw.Members))
		for i, m := range raw.Members {
			e, err := Unmarshal(m)
			if err != nil {
				return nil, err
			}
			members[i] = e
		}
		return &Union{Members: members}, nil

	case "list":
		var raw struct {
			Elem json.RawMessage `json:"elem"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		elem, err := Unmarshal(raw.Elem)
		if err != nil {
			return nil, err
		}
		return &List{Elem: elem}, nil

	case "map":
		var raw struct {
			Key   json.RawMessage `json:"key"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		key, err := Unmarshal(raw.Key)
		if err != nil {
			return nil, err
		}
		value, err := Unmarshal(raw.Value)
		if err != nil {
			return nil, err
		}
		return &Map{Key: key, Value: value}, nil

	case "tuple":
		var raw struct {
			Elems []json.RawMessage `json:"elems"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		elems := make([]Expr, len(raw.Elems))
		for i, el := range raw.Elems {
			e, err := Unmarshal(el)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return &Tuple{Elems: elems}, nil

	case "record":
		var raw struct {
			Fields []struct {
				Name string          `json:"name"`
				Type json.RawMessage `json:"type"`
			} `json:"fields"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		fields := make([]Field, len(raw.Fields))
		for i, f := range raw.Fields {
			if f.Name == "" {
				return nil, fmt.Errorf("type expression: record field %d has no name", i)
			}
			t, err := Unmarshal(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = Field{Name: f.Name, Type: t}
		}
		return &Record{Fields: fields}, nil

	case "ref":
		var raw struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw.Name == "" {
			return nil, fmt.Errorf("type expression: ref requires a name")
		}
		return &NamedRef{Name: raw.Name}, nil

	case "any":
		return &AnyType{}, nil

	default:
		return nil, fmt.Errorf("type expression: unknown node type %q", peek.Type)
	}
}
