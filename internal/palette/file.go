package palette

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/preston-bernstein/scorekeeper-service/internal/color"
)

// LoadFile reads a YAML catalogue, for example:
//
//	revision: club-2025
//	default: {home: "#0072b2", away: "#d55e00"}
//	entries:
//	  - {key: blueRed, home: "#007aff", away: "#ff3b30", asset: blueRed}
func LoadFile(path string) (Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalogue{}, fmt.Errorf("read palette file: %w", err)
	}
	return Decode(data)
}

// filePair keeps colors as written so typos are reported instead of loading as black.
type filePair struct {
	Home string `yaml:"home"`
	Away string `yaml:"away"`
}

type fileEntry struct {
	Key      string `yaml:"key"`
	filePair `yaml:",inline"`
	Asset    string `yaml:"asset,omitempty"`
}

type fileCatalogue struct {
	Revision string      `yaml:"revision"`
	Default  *filePair   `yaml:"default"`
	Entries  []fileEntry `yaml:"entries"`
}

// Decode parses and validates a YAML catalogue. Every color must be a valid hex color.
// A missing default falls back to the first entry.
func Decode(data []byte) (Catalogue, error) {
	var raw fileCatalogue
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Catalogue{}, fmt.Errorf("decode palette catalogue: %w", err)
	}

	c := Catalogue{Revision: raw.Revision, Entries: make([]Entry, 0, len(raw.Entries))}
	for i, e := range raw.Entries {
		pair, err := e.filePair.parse()
		if err != nil {
			return Catalogue{}, fmt.Errorf("palette entry %d (%q): %w", i, e.Key, err)
		}
		c.Entries = append(c.Entries, Entry{Key: e.Key, Pair: pair, Asset: e.Asset})
	}
	if err := c.Validate(); err != nil {
		return Catalogue{}, err
	}

	if raw.Default != nil {
		pair, err := raw.Default.parse()
		if err != nil {
			return Catalogue{}, fmt.Errorf("palette default: %w", err)
		}
		c.Default = pair
	} else {
		c.Default = c.Entries[0].Pair
	}
	if c.Revision == "" {
		c.Revision = "custom"
	}
	return c, nil
}

func (p filePair) parse() (Pair, error) {
	home, err := color.ParseHexStrict(p.Home)
	if err != nil {
		return Pair{}, fmt.Errorf("home: %w", err)
	}
	away, err := color.ParseHexStrict(p.Away)
	if err != nil {
		return Pair{}, fmt.Errorf("away: %w", err)
	}
	return Pair{Home: home, Away: away}, nil
}

// Encode renders a catalogue as YAML.
func Encode(c Catalogue) ([]byte, error) {
	return yaml.Marshal(c)
}
