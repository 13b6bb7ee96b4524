package compliance

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/fleetcommand/internal/alignment"
)

// Catalog models a doctrines.yml file.
type Catalog struct {
	Doctrines []DoctrineSpec `yaml:"doctrines"`
}

// DoctrineSpec is the YAML form of a Doctrine. Axes and outlooks are named.
type DoctrineSpec struct {
	Name                 string  `yaml:"name"`
	Window               *Window `yaml:"window"`
	AxisTolerance        float32 `yaml:"axis_tolerance"`
	OutlookTolerance     float32 `yaml:"outlook_tolerance"`
	ChaosMutinyThreshold float32 `yaml:"chaos_mutiny_threshold"`
	LawfulContractFloor  float32 `yaml:"lawful_contract_floor"`
	SuspicionGain        float32 `yaml:"suspicion_gain"`
	Axes                 []struct {
		Axis string  `yaml:"axis"`
		Min  float32 `yaml:"min"`
		Max  float32 `yaml:"max"`
	} `yaml:"axes"`
	Outlooks []struct {
		Outlook       string  `yaml:"outlook"`
		MinimumWeight float32 `yaml:"minimum_weight"`
	} `yaml:"outlooks"`
}

// LoadCatalog reads and validates a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read doctrine catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid doctrine yaml: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// DefaultCatalog returns the built-in doctrines.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog([]byte(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("built-in doctrine catalog: %v", err))
	}
	return c
}

// Validate checks every doctrine and returns the first problem found.
func (c *Catalog) Validate() error {
	if len(c.Doctrines) == 0 {
		return fmt.Errorf("catalog.doctrines is required")
	}
	seen := make(map[string]bool, len(c.Doctrines))
	for i, d := range c.Doctrines {
		if d.Name == "" {
			return fmt.Errorf("doctrine %d has empty name", i)
		}
		if seen[d.Name] {
			return fmt.Errorf("doctrine %s defined twice", d.Name)
		}
		seen[d.Name] = true

		if w := d.Window; w != nil {
			if w.LawMin > w.LawMax || w.GoodMin > w.GoodMax || w.IntegrityMin > w.IntegrityMax {
				return fmt.Errorf("doctrine %s window has min above max", d.Name)
			}
		}
		for _, f := range []struct {
			name string
			v    float32
		}{
			{"axis_tolerance", d.AxisTolerance},
			{"outlook_tolerance", d.OutlookTolerance},
			{"chaos_mutiny_threshold", d.ChaosMutinyThreshold},
			{"lawful_contract_floor", d.LawfulContractFloor},
			{"suspicion_gain", d.SuspicionGain},
		} {
			if f.v < 0 || f.v > 1 {
				return fmt.Errorf("doctrine %s %s must be within [0,1], got %g", d.Name, f.name, f.v)
			}
		}
		for _, a := range d.Axes {
			if _, err := alignment.ParseAxis(a.Axis); err != nil {
				return fmt.Errorf("doctrine %s: %w", d.Name, err)
			}
			if a.Min > a.Max {
				return fmt.Errorf("doctrine %s axis %s has min above max", d.Name, a.Axis)
			}
		}
		for _, o := range d.Outlooks {
			if _, err := alignment.ParseOutlook(o.Outlook); err != nil {
				return fmt.Errorf("doctrine %s: %w", d.Name, err)
			}
		}
	}
	return nil
}

// Names returns doctrine names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Doctrines))
	for i, d := range c.Doctrines {
		names[i] = d.Name
	}
	return names
}

// Doctrine builds the named doctrine.
func (c *Catalog) Doctrine(name string) (*Doctrine, error) {
	for _, spec := range c.Doctrines {
		if spec.Name == name {
			return spec.build(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDoctrine, name)
}

// Build returns every doctrine in catalog order.
func (c *Catalog) Build() []*Doctrine {
	out := make([]*Doctrine, len(c.Doctrines))
	for i := range c.Doctrines {
		out[i] = c.Doctrines[i].build()
	}
	return out
}

// build assumes the spec has been validated.
func (s *DoctrineSpec) build() *Doctrine {
	d := &Doctrine{
		Name:                 s.Name,
		Window:               OpenWindow(),
		AxisTolerance:        s.AxisTolerance,
		OutlookTolerance:     s.OutlookTolerance,
		ChaosMutinyThreshold: s.ChaosMutinyThreshold,
		LawfulContractFloor:  s.LawfulContractFloor,
		SuspicionGain:        s.SuspicionGain,
	}
	if s.Window != nil {
		d.Window = *s.Window
	}
	for _, a := range s.Axes {
		axis, _ := alignment.ParseAxis(a.Axis)
		d.Axes = append(d.Axes, AxisExpectation{Axis: axis, Min: a.Min, Max: a.Max})
	}
	for _, o := range s.Outlooks {
		id, _ := alignment.ParseOutlook(o.Outlook)
		d.Outlooks = append(d.Outlooks, OutlookExpectation{Outlook: id, MinimumWeight: o.MinimumWeight})
	}
	return d
}

const defaultCatalog = `doctrines:
  - name: admiralty
    window:
      law_min: 0.2
      law_max: 1
      good_min: -0.5
      good_max: 1
      integrity_min: 0
      integrity_max: 1
    axis_tolerance: 0.1
    outlook_tolerance: 0.1
    chaos_mutiny_threshold: 0.55
    lawful_contract_floor: 0.5
    suspicion_gain: 0.2
    axes:
      - axis: authoritarian
        min: 0.1
        max: 1
    outlooks:
      - outlook: loyalist
        minimum_weight: 0.3

  - name: free_traders
    window:
      law_min: -0.6
      law_max: 0.6
      good_min: -1
      good_max: 1
      integrity_min: -0.5
      integrity_max: 1
    axis_tolerance: 0.2
    outlook_tolerance: 0.2
    chaos_mutiny_threshold: 0.75
    lawful_contract_floor: 0.3
    suspicion_gain: 0.1
    axes:
      - axis: materialist
        min: 0.2
        max: 1
      - axis: xenophobia
        min: -1
        max: 0.3
    outlooks:
      - outlook: opportunist
        minimum_weight: 0.2

  - name: crusade
    window:
      law_min: 0.4
      law_max: 1
      good_min: 0.2
      good_max: 1
      integrity_min: 0.3
      integrity_max: 1
    axis_tolerance: 0.05
    outlook_tolerance: 0.05
    chaos_mutiny_threshold: 0.4
    lawful_contract_floor: 0.6
    suspicion_gain: 0.4
    axes:
      - axis: war
        min: 0.5
        max: 1
      - axis: expansionist
        min: 0.2
        max: 1
    outlooks:
      - outlook: fanatic
        minimum_weight: 0.4
`
