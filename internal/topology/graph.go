package topology

import (
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ben0x539/eve-log-alert/internal/errors"
)

// Graph is the import format: each system lists the systems it has a jump to.
//
//	systems:
//	  UQ-PWD: [Y-MPWL, 8-TFDX]
//	  Y-MPWL: [UQ-PWD]
type Graph struct {
	Systems map[string][]string `yaml:"systems"`
}

// Names returns the listed systems in sorted order.
func (g Graph) Names() []string {
	names := make([]string, 0, len(g.Systems))
	for name := range g.Systems {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadGraph decodes a YAML graph. Unknown top-level keys are rejected.
func LoadGraph(r io.Reader) (Graph, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var g Graph
	if err := dec.Decode(&g); err != nil {
		if err == io.EOF {
			return Graph{}, errors.NewTopologyError("empty graph file", nil)
		}
		return Graph{}, errors.NewTopologyError("failed to parse graph", err)
	}
	for name, tos := range g.Systems {
		if strings.TrimSpace(name) == "" {
			return Graph{}, errors.NewTopologyError("graph lists a system with an empty name", nil)
		}
		for _, to := range tos {
			if strings.TrimSpace(to) == "" {
				return Graph{}, errors.NewTopologyError("graph lists a jump to an empty name", nil).WithSystem(name)
			}
		}
	}
	return g, nil
}

// LoadGraphFile reads a YAML graph from path.
func LoadGraphFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, errors.NewTopologyError("failed to open graph file", err)
	}
	defer func() { _ = f.Close() }()
	return LoadGraph(f)
}
