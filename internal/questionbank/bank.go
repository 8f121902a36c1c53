// Package questionbank loads the interview question bank and seeds it into
// the store.
package questionbank

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tinytelemetry/mockview/internal/model"
)

//go:embed questions.yaml
var defaultBank []byte

const defaultDifficulty = "medium"

// Bank is a set of roles and their questions.
type Bank struct {
	Roles     []model.Role
	Questions []model.Question
}

type bankFile struct {
	Roles []struct {
		Key   string `yaml:"key"`
		Label string `yaml:"label"`
	} `yaml:"roles"`
	Questions []struct {
		Role        string `yaml:"role"`
		Text        string `yaml:"text"`
		ModelAnswer string `yaml:"model_answer"`
		Keywords    string `yaml:"keywords"`
		Difficulty  string `yaml:"difficulty"`
	} `yaml:"questions"`
}

// Default returns the built-in bank.
func Default() *Bank {
	b, err := Load(bytes.NewReader(defaultBank))
	if err != nil {
		panic(fmt.Sprintf("questionbank: embedded bank is invalid: %v", err))
	}
	return b
}

// LoadFile reads a bank from a YAML file. An empty path yields the built-in bank.
func LoadFile(path string) (*Bank, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("questionbank: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a YAML bank.
func Load(r io.Reader) (*Bank, error) {
	var raw bankFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("questionbank: decode: %w", err)
	}

	b := &Bank{}
	known := make(map[string]bool, len(raw.Roles))
	for _, r := range raw.Roles {
		key := strings.TrimSpace(r.Key)
		if key == "" {
			return nil, fmt.Errorf("questionbank: role with empty key")
		}
		if known[key] {
			return nil, fmt.Errorf("questionbank: duplicate role %q", key)
		}
		known[key] = true
		label := strings.TrimSpace(r.Label)
		if label == "" {
			label = key
		}
		b.Roles = append(b.Roles, model.Role{Key: key, Label: label})
	}

	for i, q := range raw.Questions {
		if !known[q.Role] {
			return nil, fmt.Errorf("questionbank: question %d: %w %q", i+1, model.ErrUnknownRole, q.Role)
		}
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("questionbank: question %d: empty text", i+1)
		}
		diff := q.Difficulty
		if diff == "" {
			diff = defaultDifficulty
		}
		b.Questions = append(b.Questions, model.Question{
			Role:        q.Role,
			Text:        strings.TrimSpace(q.Text),
			ModelAnswer: strings.TrimSpace(q.ModelAnswer),
			Keywords:    q.Keywords,
			Difficulty:  diff,
		})
	}
	return b, nil
}

// HasRole reports whether key names a role of the bank.
func (b *Bank) HasRole(key string) bool {
	for _, r := range b.Roles {
		if r.Key == key {
			return true
		}
	}
	return false
}

// Seed inserts the bank's questions when the store holds none. It returns
// the number of questions inserted.
func (b *Bank) Seed(store model.QuestionStore) (int, error) {
	n, err := store.CountQuestions()
	if err != nil {
		return 0, fmt.Errorf("questionbank: count: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	if err := store.InsertQuestions(b.Questions); err != nil {
		return 0, fmt.Errorf("questionbank: seed: %w", err)
	}
	log.Printf("questionbank: seeded %d questions", len(b.Questions))
	return len(b.Questions), nil
}
