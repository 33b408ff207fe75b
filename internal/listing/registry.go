package listing

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/views.yaml
var viewsYAML embed.FS

// Registry holds the declared filter surface of every list view. Configs
// are validated against it at startup so no filter field exists that the
// engine cannot evaluate.
type Registry struct {
	Views []ViewSpec `yaml:"views"`
}

// ViewSpec declares which fields one list view may filter and sort on.
type ViewSpec struct {
	Name            string   `yaml:"name"`
	SearchFields    []string `yaml:"search_fields,omitempty"`
	MultiSelect     []string `yaml:"multi_select,omitempty"`
	Scalar          []string `yaml:"scalar,omitempty"`
	StatusField     bool     `yaml:"status_field,omitempty"`
	SortCriteria    []string `yaml:"sort,omitempty"`
	DefaultPageSize int      `yaml:"default_page_size,omitempty"`
}

func (v ViewSpec) AllowsSort(criterion string) bool {
	if criterion == "" {
		return true
	}
	return contains(v.SortCriteria, criterion)
}

// LoadRegistry reads the embedded views.yaml. The path parameter is a
// filesystem fallback for local development.
func LoadRegistry(path string) (*Registry, error) {
	data, err := viewsYAML.ReadFile("config/views.yaml")
	if err != nil {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, err
	}

	for _, view := range reg.Views {
		if view.Name == "" {
			return nil, fmt.Errorf("view registry: entry with empty name")
		}
	}

	return &reg, nil
}

// View returns the named view spec.
func (r *Registry) View(name string) (ViewSpec, error) {
	for _, view := range r.Views {
		if view.Name == name {
			return view, nil
		}
	}
	return ViewSpec{}, fmt.Errorf("view registry: unknown view %q", name)
}
