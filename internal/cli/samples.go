package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mverlet/pairjit/internal/geom"
)

// PairSample is one evaluator input: a separation vector plus the types
// and orientations of both particles.
type PairSample struct {
	R     geom.Vec3
	TypeI uint32
	QI    geom.Quat
	TypeJ uint32
	QJ    geom.Quat
}

// pairsFile mirrors the YAML sample file layout.
type pairsFile struct {
	Pairs []pairEntry `yaml:"pairs"`
}

type pairEntry struct {
	R     []float32 `yaml:"r"`
	TypeI uint32    `yaml:"type_i"`
	QI    []float32 `yaml:"q_i"`
	TypeJ uint32    `yaml:"type_j"`
	QJ    []float32 `yaml:"q_j"`
}

// LoadPairs reads pair samples from a YAML file. Orientations default to
// the identity quaternion when omitted.
func LoadPairs(path string) ([]PairSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pairs: %w", err)
	}

	var pf pairsFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse pairs %s: %w", path, err)
	}
	if len(pf.Pairs) == 0 {
		return nil, fmt.Errorf("no pairs found in %s", path)
	}

	samples := make([]PairSample, 0, len(pf.Pairs))
	for i, p := range pf.Pairs {
		if len(p.R) != 3 {
			return nil, fmt.Errorf("pair %d: r must have 3 components, got %d", i, len(p.R))
		}
		s := PairSample{
			R:     geom.Vec3{X: p.R[0], Y: p.R[1], Z: p.R[2]},
			TypeI: p.TypeI,
			TypeJ: p.TypeJ,
			QI:    geom.Identity,
			QJ:    geom.Identity,
		}
		if s.QI, err = quatFrom(p.QI, i, "q_i"); err != nil {
			return nil, err
		}
		if s.QJ, err = quatFrom(p.QJ, i, "q_j"); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	return samples, nil
}

func quatFrom(q []float32, idx int, field string) (geom.Quat, error) {
	switch len(q) {
	case 0:
		return geom.Identity, nil
	case 4:
		return geom.Quat{W: q[0], X: q[1], Y: q[2], Z: q[3]}, nil
	default:
		return geom.Quat{}, fmt.Errorf("pair %d: %s must have 4 components, got %d", idx, field, len(q))
	}
}
