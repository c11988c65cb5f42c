package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
)

// seedRecord is the on-disk YAML shape for local catalog bootstrap.
type seedRecord struct {
	Identifier  string   `yaml:"identifier"`
	DisplayName string   `yaml:"displayName"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Subcategory string   `yaml:"subcategory"`
	Tags        []string `yaml:"tags"`
	Aliases     []string `yaml:"aliases"`
	IsTrigger   bool     `yaml:"isTrigger"`
}

type seedFile struct {
	Nodes []seedRecord `yaml:"nodes"`
}

// LoadSeed reads catalog entities from a local YAML file, for running
// without network access. The AI partition is classified here, same as on
// the fetch path.
func LoadSeed(path string) ([]apptype.CatalogEntity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}
	entities := make([]apptype.CatalogEntity, 0, len(seed.Nodes))
	for _, r := range seed.Nodes {
		e := apptype.CatalogEntity{
			Identifier:       r.Identifier,
			DisplayName:      r.DisplayName,
			Description:      r.Description,
			Category:         r.Category,
			Subcategory:      r.Subcategory,
			Tags:             r.Tags,
			Aliases:          r.Aliases,
			IsTriggerVariant: r.IsTrigger,
		}
		e.IsAI = classifyAI(e)
		entities = append(entities, e)
	}
	return entities, nil
}
