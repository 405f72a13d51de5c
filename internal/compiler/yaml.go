package compiler

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tokenreplay/internal/petri"
)

type yamlPlace struct {
	Initial int `yaml:"initial"`
	Final   int `yaml:"final"`
}

type yamlTransition struct {
	Label string   `yaml:"label"`
	In    []string `yaml:"in"`
	Out   []string `yaml:"out"`
}

// CompileYAML compiles the nets of a YAML model document. Mapping order is
// kept, so place and transition indices follow the file.
func CompileYAML(filename string, src []byte) ([]*petri.Net, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%s: empty model document", filename)
	}
	netsNode := mappingValue(doc.Content[0], "net")
	if netsNode == nil || netsNode.Kind != yaml.MappingNode || len(netsNode.Content) == 0 {
		return nil, fmt.Errorf("%s: no nets defined (expected a top-level net mapping)", filename)
	}

	var nets []*petri.Net
	for i := 0; i+1 < len(netsNode.Content); i += 2 {
		net, err := compileYAMLNet(filename, netsNode.Content[i].Value, netsNode.Content[i+1])
		if err != nil {
			return nil, err
		}
		nets = append(nets, net)
	}
	return nets, nil
}

func compileYAMLNet(filename, name string, node *yaml.Node) (*petri.Net, error) {
	b := petri.NewBuilder(name)

	places := mappingValue(node, "places")
	if places == nil {
		return nil, yamlError(filename, node, "places", "places are required")
	}
	for i := 0; i+1 < len(places.Content); i += 2 {
		place := places.Content[i].Value
		var p yamlPlace
		if err := places.Content[i+1].Decode(&p); err != nil {
			return nil, yamlError(filename, places.Content[i+1], place, err.Error())
		}
		b.Place(place)
		if p.Initial != 0 {
			b.Initial(place, p.Initial)
		}
		if p.Final != 0 {
			b.Final(place, p.Final)
		}
	}

	transitions := mappingValue(node, "transitions")
	if transitions == nil {
		return nil, yamlError(filename, node, "transitions", "transitions are required")
	}
	for i := 0; i+1 < len(transitions.Content); i += 2 {
		name := transitions.Content[i].Value
		var t yamlTransition
		if err := transitions.Content[i+1].Decode(&t); err != nil {
			return nil, yamlError(filename, transitions.Content[i+1], name, err.Error())
		}
		b.Transition(name, t.Label)
		for _, p := range t.In {
			b.Arc(p, name)
		}
		for _, p := range t.Out {
			b.Arc(name, p)
		}
	}

	return b.Build()
}

// mappingValue returns the value node for key in a mapping node.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func yamlError(filename string, node *yaml.Node, field, msg string) error {
	return fmt.Errorf("%s:%d:%d: %s: %s", filename, node.Line, node.Column, field, msg)
}
