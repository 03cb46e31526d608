package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/okian/gridcast/internal/domain/model"
)

// DefaultSegments are the qualifying segment columns read when a manifest
// entry does not name its own.
var DefaultSegments = []string{"Q1", "Q2", "Q3"}

// ResultSource is one results file tagged with its season and event type.
type ResultSource struct {
	Path   string `yaml:"path"`
	Season int    `yaml:"season"`
	Event  string `yaml:"event"`
}

// QualifyingSource is one qualifying file tagged with its event type.
type QualifyingSource struct {
	Path     string   `yaml:"path"`
	Event    string   `yaml:"event"`
	Segments []string `yaml:"segments"`
}

// Manifest lists the input files of a dataset.
type Manifest struct {
	CurrentSeason int                `yaml:"current_season"`
	Results       []ResultSource     `yaml:"results"`
	Qualifying    []QualifyingSource `yaml:"qualifying"`

	dir string
}

// LoadManifest reads and validates a YAML manifest. Relative file paths are
// resolved against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFile, path, err)
	}
	m, err := ParseManifest(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest decodes manifest YAML without resolving paths.
func ParseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.Results) == 0 {
		return fmt.Errorf("%w: no results files", ErrManifest)
	}
	for i, r := range m.Results {
		if r.Path == "" {
			return fmt.Errorf("%w: results[%d]: empty path", ErrManifest, i)
		}
		if r.Season <= 0 {
			return fmt.Errorf("%w: results[%d]: season must be positive", ErrManifest, i)
		}
		if _, err := model.ParseEventType(r.Event); err != nil {
			return fmt.Errorf("%w: results[%d]: %w", ErrManifest, i, err)
		}
	}
	for i, q := range m.Qualifying {
		if q.Path == "" {
			return fmt.Errorf("%w: qualifying[%d]: empty path", ErrManifest, i)
		}
		if _, err := model.ParseEventType(q.Event); err != nil {
			return fmt.Errorf("%w: qualifying[%d]: %w", ErrManifest, i, err)
		}
	}
	return nil
}

// Resolve returns p joined onto the manifest directory unless absolute.
func (m *Manifest) Resolve(p string) string {
	if filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}

func (q QualifyingSource) segments() []string {
	if len(q.Segments) == 0 {
		return DefaultSegments
	}
	return q.Segments
}
