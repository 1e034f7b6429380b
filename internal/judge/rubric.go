package judge

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed skill_quality.yaml
var defaultRubric []byte

type ScoreLevel struct {
	Label    string   `yaml:"label"`
	Criteria []string `yaml:"criteria"`
}

type Dimension struct {
	Name        string             `yaml:"-"`
	Weight      float64            `yaml:"weight"`
	Description string             `yaml:"description"`
	Scores      map[int]ScoreLevel `yaml:"scores"`
}

// Rubric keeps dimensions in file order so the prompt reads like the file.
type Rubric struct {
	Dimensions []Dimension
}

func (r *Rubric) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Dims yaml.Node `yaml:"scoring_dimensions"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Dims.Kind != yaml.MappingNode {
		return fmt.Errorf("scoring_dimensions must be a mapping")
	}
	for i := 0; i+1 < len(raw.Dims.Content); i += 2 {
		var d Dimension
		if err := raw.Dims.Content[i+1].Decode(&d); err != nil {
			return fmt.Errorf("dimension %s: %w", raw.Dims.Content[i].Value, err)
		}
		d.Name = raw.Dims.Content[i].Value
		r.Dimensions = append(r.Dimensions, d)
	}
	return nil
}

// LoadRubric reads a rubric file; an empty path yields the built-in rubric.
func LoadRubric(path string) (*Rubric, error) {
	data := defaultRubric
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading rubric: %w", err)
		}
	}
	return ParseRubric(data)
}

func ParseRubric(data []byte) (*Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing rubric: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate requires every scored dimension to be described.
func (r *Rubric) Validate() error {
	have := make(map[string]bool, len(r.Dimensions))
	for _, d := range r.Dimensions {
		have[d.Name] = true
	}
	var missing []string
	for _, name := range Dimensions {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("rubric missing dimensions: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Format renders the rubric as prompt text.
func (r *Rubric) Format() string {
	var lines []string
	for _, d := range r.Dimensions {
		lines = append(lines, fmt.Sprintf("### %s (weight: %s)", titleCase(d.Name), strconv.FormatFloat(d.Weight, 'f', -1, 64)))
		lines = append(lines, d.Description)
		levels := make([]int, 0, len(d.Scores))
		for lvl := range d.Scores {
			levels = append(levels, lvl)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(levels)))
		for _, lvl := range levels {
			s := d.Scores[lvl]
			lines = append(lines, fmt.Sprintf("  - %d (%s): %s", lvl, s.Label, strings.Join(s.Criteria, ", ")))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func titleCase(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
