package tutor

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrUnknownMode = errors.New("unknown mode")

// Persona replaces the system prompt template of one mode.
// Templates may use the {language}, {class} and {subject} placeholders.
type Persona struct {
	Mode     Mode   `yaml:"mode" json:"mode"`
	Name     string `yaml:"name" json:"name"`
	Template string `yaml:"template" json:"template"`
}

type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// LoadPersonas reads persona overrides from a YAML file:
//
//	personas:
//	  - mode: exam
//	    name: Board exam coach
//	    template: "You are ... in {language}."
func LoadPersonas(path string) ([]Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePersonas(data)
}

func ParsePersonas(data []byte) ([]Persona, error) {
	var f personaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse personas: %w", err)
	}
	for i, p := range f.Personas {
		if !p.Mode.Known() {
			return nil, fmt.Errorf("persona %d: %w %q", i, ErrUnknownMode, p.Mode)
		}
		if p.Template == "" {
			return nil, fmt.Errorf("persona %d (%s): empty template", i, p.Mode)
		}
	}
	return f.Personas, nil
}
