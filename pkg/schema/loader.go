package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	typeconform "github.com/typeconform/validator"
	"github.com/typeconform/validator/pkg/expr"
)

// snapshotDoc is the on-disk snapshot document.
type snapshotDoc struct {
	Version  string      `json:"version"`
	Aliases  []aliasDoc  `json:"aliases,omitempty"`
	Entities []entityDoc `json:"entities"`
}

type aliasDoc struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type entityDoc struct {
	Kind       string     `json:"kind"`
	Fields     []fieldDoc `json:"fields"`
	Associated []string   `json:"associated,omitempty"`
	Metadata   []string   `json:"metadata,omitempty"`
}

type fieldDoc struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

// LoadJSON decodes a full declaration snapshot from its JSON document form.
// Aliases load before entities so that declaration order inside the
// document does not matter.
func LoadJSON(data []byte) (*Snapshot, error) {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: invalid snapshot document: %w", err)
	}

	if v := typeconform.SnapshotVersion(doc.Version); !v.IsValid() {
		return nil, fmt.Errorf("schema: unsupported snapshot version %q", doc.Version)
	}

	snap := NewSnapshot()

	for _, a := range doc.Aliases {
		t, err := expr.Unmarshal(a.Type)
		if err != nil {
			return nil, fmt.Errorf("schema: alias %q: %w", a.Name, err)
		}
		if err := snap.AddAlias(&Alias{Name: a.Name, Type: t}); err != nil {
			return nil, err
		}
	}

	for _, e := range doc.Entities {
		ent := &Entity{
			Kind:       e.Kind,
			Fields:     make([]FieldDecl, 0, len(e.Fields)),
			Associated: e.Associated,
			Metadata:   e.Metadata,
		}
		for _, f := range e.Fields {
			t, err := expr.Unmarshal(f.Type)
			if err != nil {
				return nil, fmt.Errorf("schema: entity %q field %q: %w", e.Kind, f.Name, err)
			}
			ent.Fields = append(ent.Fields, FieldDecl{Name: f.Name, Type: t})
		}
		if err := snap.AddEntity(ent); err != nil {
			return nil, err
		}
	}

	return snap, nil
}

// LoadReader decodes a snapshot document from a reader.
func LoadReader(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("schema: read snapshot: %w", err)
	}
	return LoadJSON(data)
}

// LoadFile decodes a snapshot document from a file.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read snapshot %s: %w", path, err)
	}
	return LoadJSON(data)
}
