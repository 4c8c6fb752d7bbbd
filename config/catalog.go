package config

import (
	"encoding/json"
	"os"

	"github.com/c360/flowcore/errors"
	"github.com/c360/flowcore/nodetype"
)

// LoadCatalog reads a JSON array of node-type descriptions and registers them
// in a fresh registry. Registration failures (duplicates, bad cardinality)
// surface as structural errors naming the offending type.
func LoadCatalog(path string) (*nodetype.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapStructural(err, "Catalog", "LoadCatalog", "read catalog file")
	}
	return ParseCatalog(data)
}

// ParseCatalog builds a registry from raw catalog JSON.
func ParseCatalog(data []byte) (*nodetype.Registry, error) {
	var descriptions []nodetype.Description
	if err := json.Unmarshal(data, &descriptions); err != nil {
		return nil, errors.WrapStructural(err, "Catalog", "ParseCatalog", "parse catalog JSON")
	}

	registry := nodetype.NewRegistry()
	for i := range descriptions {
		if err := registry.Register(&descriptions[i]); err != nil {
			return nil, errors.Wrap(err, "Catalog", "ParseCatalog", "register node type")
		}
	}
	return registry, nil
}
