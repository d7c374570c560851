package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"property-intake/internal/model"
)

//go:embed questions.json
var questionsJSON []byte

// SetName identifies a question set
type SetName string

const (
	Set3BHKIndiranagar SetName = "3bhk_indiranagar"
	SetVilla           SetName = "villa"
	SetGeneral         SetName = "general"
)

// Catalog holds the static question sets. It is read-only after Load.
type Catalog struct {
	order []SetName
	sets  map[SetName][]model.Question
}

type catalogFile struct {
	Sets []struct {
		Name      SetName          `json:"name"`
		Questions []model.Question `json:"questions"`
	} `json:"sets"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog compiled into the binary
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(questionsJSON)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("catalog: embedded questions are invalid: %v", defaultErr))
	}
	return defaultCatalog
}

// Parse decodes a catalog document and checks that ids are unique within each set
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c := &Catalog{sets: make(map[SetName][]model.Question, len(file.Sets))}
	for _, set := range file.Sets {
		if _, dup := c.sets[set.Name]; dup {
			return nil, fmt.Errorf("duplicate question set %q", set.Name)
		}
		seen := make(map[string]bool, len(set.Questions))
		for _, q := range set.Questions {
			if q.ID == "" {
				return nil, fmt.Errorf("set %q: question without id", set.Name)
			}
			if seen[q.ID] {
				return nil, fmt.Errorf("set %q: duplicate question id %q", set.Name, q.ID)
			}
			seen[q.ID] = true
		}
		c.order = append(c.order, set.Name)
		c.sets[set.Name] = set.Questions
	}
	return c, nil
}

// Set returns a copy of the named question set
func (c *Catalog) Set(name SetName) []model.Question {
	return append([]model.Question(nil), c.sets[name]...)
}

// Sets lists the set names in catalog order
func (c *Catalog) Sets() []SetName {
	return append([]SetName(nil), c.order...)
}

// SetFor picks the question set that fits what is known so far
func SetFor(criteria model.Criteria) SetName {
	if criteria.BHK != nil && *criteria.BHK == 3 &&
		criteria.Location != nil && strings.Contains(strings.ToLower(*criteria.Location), "indiranagar") {
		return Set3BHKIndiranagar
	}
	if criteria.PropertyType != nil && strings.ToLower(*criteria.PropertyType) == "villa" {
		return SetVilla
	}
	return SetGeneral
}

// ForCriteria returns the question set for the criteria
func (c *Catalog) ForCriteria(criteria model.Criteria) []model.Question {
	return c.Set(SetFor(criteria))
}

// Find looks a question up by id, preferring the set selected by criteria
func (c *Catalog) Find(id string, criteria model.Criteria) (*model.Question, bool) {
	if q, ok := findIn(c.sets[SetFor(criteria)], id); ok {
		return q, true
	}
	for _, name := range c.order {
		if q, ok := findIn(c.sets[name], id); ok {
			return q, true
		}
	}
	return nil, false
}

// All returns every distinct question id once, first occurrence wins
func (c *Catalog) All() []model.Question {
	seen := make(map[string]bool)
	var out []model.Question
	for _, name := range c.order {
		for _, q := range c.sets[name] {
			if seen[q.ID] {
				continue
			}
			seen[q.ID] = true
			out = append(out, q)
		}
	}
	return out
}

func findIn(questions []model.Question, id string) (*model.Question, bool) {
	for i := range questions {
		if questions[i].ID == id {
			q := questions[i]
			return &q, true
		}
	}
	return nil, false
}
