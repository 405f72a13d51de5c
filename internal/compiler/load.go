package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/tokenreplay/internal/petri"
	"github.com/roach88/tokenreplay/internal/pnml"
)

// ErrNetSelection is wrapped by LoadFile errors when the requested net
// cannot be chosen from the model.
var ErrNetSelection = errors.New("select net")

// LoadFile loads a model, choosing the format by extension: .pnml, .cue,
// .yaml or .yml. A directory is loaded as a CUE package. When the model
// declares several nets, name selects one; an empty name is only accepted
// for single-net models.
func LoadFile(path, name string) (*petri.Net, error) {
	nets, err := loadNets(path)
	if err != nil {
		return nil, err
	}
	return pick(nets, name, path)
}

func loadNets(path string) ([]*petri.Net, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if info.IsDir() {
		return loadCUE(path, ".")
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pnml":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		defer f.Close()
		net, err := pnml.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return []*petri.Net{net}, nil
	case ".cue":
		return loadCUE(filepath.Dir(path), filepath.Base(path))
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		return CompileYAML(path, data)
	default:
		return nil, fmt.Errorf("load model %s: unknown file extension %q (want .pnml, .cue, .yaml or .yml)", path, ext)
	}
}

// loadCUE builds one CUE instance from dir. arg is "." for the package in
// dir or a file name inside it.
func loadCUE(dir, arg string) ([]*petri.Net, error) {
	instances := load.Instances([]string{arg}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("load model %s: no CUE instances loaded", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileNets(value)
}

func pick(nets []*petri.Net, name, path string) (*petri.Net, error) {
	if name == "" {
		if len(nets) == 1 {
			return nets[0], nil
		}
		names := make([]string, len(nets))
		for i, n := range nets {
			names[i] = n.Name()
		}
		return nil, fmt.Errorf("%w: %s defines %d nets (%s); choose one by name", ErrNetSelection, path, len(nets), strings.Join(names, ", "))
	}
	for _, n := range nets {
		if n.Name() == name {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: %s: no net named %q", ErrNetSelection, path, name)
}
