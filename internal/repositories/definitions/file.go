package definitions

import (
	"errors"
	"fmt"
	"os"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML library document. Map keys are record ids; a record
// without its own id takes the key.
func LoadFile(path string) (*records.Library, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, dnderr.NotFoundf("definitions file %s not found", path).
			WithMeta("path", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions file: %w", err)
	}

	lib := records.NewLibrary()
	if err := yaml.Unmarshal(data, lib); err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeInvalidArgument, fmt.Sprintf("failed to parse %s", path))
	}
	fillIDs(lib)
	return lib, nil
}

func fillIDs(lib *records.Library) {
	for id, v := range lib.Characters {
		if v != nil && v.ID == "" {
			v.ID = id
		}
	}
	for id, v := range lib.Units {
		if v != nil && v.ID == "" {
			v.ID = id
		}
	}
	for id, v := range lib.Skills {
		if v != nil && v.ID == "" {
			v.ID = id
		}
	}
	for id, v := range lib.MainSkills {
		if v != nil && v.ID == "" {
			v.ID = id
		}
	}
	for id, v := range lib.Spells {
		if v != nil && v.ID == "" {
			v.ID = id
		}
	}
	for id, v := range lib.Races {
		if v != nil && v.ID == "" {
			v.ID = id
		}
	}
	for id, v := range lib.Artifacts {
		if v != nil && v.ID == "" {
			v.ID = id
		}
	}
}

// NewFileCatalog loads a YAML library into an in-memory catalog
func NewFileCatalog(path string) (*InMemoryCatalog, error) {
	lib, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewInMemoryCatalog(lib), nil
}
