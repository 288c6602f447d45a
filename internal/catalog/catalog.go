package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/revtrack/pkg/models"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownReference is returned when a selection names a topic or
// subtopic the catalog does not contain
var ErrUnknownReference = errors.New("unknown catalog reference")

// Catalog is a subject document: units of topics of subtopics
type Catalog struct {
	Subject string `json:"subject" yaml:"subject" toml:"subject"`
	Units   []Unit `json:"units" yaml:"units" toml:"units"`
}

// Unit groups topics
type Unit struct {
	Unit   string  `json:"unit" yaml:"unit" toml:"unit"`
	Topics []Topic `json:"topics" yaml:"topics" toml:"topics"`
}

// Topic lists the subtopics that can be checked for revision
type Topic struct {
	Topic     string   `json:"topic" yaml:"topic" toml:"topic"`
	Subtopics []string `json:"subtopics" yaml:"subtopics" toml:"subtopics"`
}

// Entry is a catalog file found in a directory
type Entry struct {
	Title string // "economics.json" -> "Economics"
	Path  string
}

var decoders = map[string]func([]byte, *Catalog) error{
	".json": func(b []byte, c *Catalog) error { return json.Unmarshal(b, c) },
	".yaml": func(b []byte, c *Catalog) error { return yaml.Unmarshal(b, c) },
	".yml":  func(b []byte, c *Catalog) error { return yaml.Unmarshal(b, c) },
	".toml": func(b []byte, c *Catalog) error {
		return toml.NewDecoder(bytes.NewReader(b)).Decode(c)
	},
}

// Supported reports whether name has a decodable catalog extension
func Supported(name string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Decode parses a catalog document, choosing the format from name's extension
func Decode(name string, data []byte) (*Catalog, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return nil, fmt.Errorf("unsupported catalog format: %s", name)
	}

	var c Catalog
	if err := decode(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", name, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", name, err)
	}
	return &c, nil
}

// Validate checks that the subject and every topic and subtopic are named
func (c *Catalog) Validate() error {
	if strings.TrimSpace(c.Subject) == "" {
		return errors.New("missing subject")
	}
	for _, u := range c.Units {
		for _, t := range u.Topics {
			if strings.TrimSpace(t.Topic) == "" {
				return fmt.Errorf("unit %q has a topic without a name", u.Unit)
			}
			for _, s := range t.Subtopics {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("topic %q has an empty subtopic", t.Topic)
				}
			}
		}
	}
	return nil
}

// LoadFile reads and decodes a catalog file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Decode(path, data)
}

// LoadDir lists the catalog files in dir, sorted by title
func LoadDir(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !Supported(f.Name()) {
			continue
		}
		entries = append(entries, Entry{
			Title: Title(f.Name()),
			Path:  filepath.Join(dir, f.Name()),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Title < entries[j].Title })
	return entries, nil
}

// Title turns a catalog file name into a display name
func Title(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" {
		return base
	}
	return strings.ToUpper(base[:1]) + base[1:]
}

// Find resolves a subject title or file name to a catalog file in dir
func Find(dir, subject string) (string, error) {
	entries, err := LoadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if strings.EqualFold(e.Title, subject) || strings.EqualFold(filepath.Base(e.Path), subject) {
			return e.Path, nil
		}
	}
	return "", fmt.Errorf("%w: no catalog for subject %q in %s", ErrUnknownReference, subject, dir)
}

// Select resolves references of the form "topic/subtopic" or "topic" (all
// of its subtopics) into selections, in reference order.
func (c *Catalog) Select(refs []string) ([]models.Selection, error) {
	var out []models.Selection
	for _, ref := range refs {
		topicName, subtopic, hasSub := strings.Cut(ref, "/")
		topicName = strings.TrimSpace(topicName)
		subtopic = strings.TrimSpace(subtopic)

		topic, ok := c.topic(topicName)
		if !ok {
			return nil, fmt.Errorf("%w: topic %q in %s", ErrUnknownReference, topicName, c.Subject)
		}

		if !hasSub {
			for _, s := range topic.Subtopics {
				out = append(out, models.Selection{Subject: c.Subject, Topic: topic.Topic, Subtopic: s})
			}
			continue
		}

		found := false
		for _, s := range topic.Subtopics {
			if strings.EqualFold(s, subtopic) {
				out = append(out, models.Selection{Subject: c.Subject, Topic: topic.Topic, Subtopic: s})
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: subtopic %q under %q", ErrUnknownReference, subtopic, topic.Topic)
		}
	}
	return out, nil
}

func (c *Catalog) topic(name string) (Topic, bool) {
	for _, u := range c.Units {
		for _, t := range u.Topics {
			if strings.EqualFold(t.Topic, name) {
				return t, true
			}
		}
	}
	return Topic{}, false
}
