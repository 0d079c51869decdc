// Package catalog loads the static problem definitions graded by the service.
//
// The catalog is read once at startup and never mutated afterwards, so a *Catalog can be shared freely
// between request handlers and the grading worker.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// DefaultCourse names the course used when the catalog file is a bare list of problems.
const DefaultCourse = "기본과목"

// UnknownChapter is assigned to problems that do not declare a chapter.
const UnknownChapter = "Unknown"

// Problem is a single exercise students can submit code for.
type Problem struct {
	ID          uint   `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Chapter     string `yaml:"chapter" json:"chapter"`
	CourseName  string `yaml:"-" json:"course_name"`
	Criteria    string `yaml:"ai_prompt" json:"ai_prompt"`
}

// Catalog indexes problems by id and groups them by course and chapter.
type Catalog struct {
	byID     map[uint]Problem
	byCourse map[string][]Problem
	chapters map[string][]string
	courses  []string
}

const problemSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "problem": {
      "type": "object",
      "required": ["id", "title"],
      "properties": {
        "id": {"type": "integer", "minimum": 1},
        "title": {"type": "string", "minLength": 1},
        "description": {"type": "string"},
        "chapter": {"type": "string"},
        "ai_prompt": {"type": "string"}
      }
    },
    "problems": {"type": "array", "items": {"$ref": "#/definitions/problem"}}
  },
  "oneOf": [
    {"$ref": "#/definitions/problems"},
    {"type": "object", "minProperties": 1, "additionalProperties": {"$ref": "#/definitions/problems"}}
  ]
}`

var schema = jsonschema.MustCompileString("problems.schema.json", problemSchema)

// LoadFile reads and validates the catalog at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read problem catalog: %w", err)
	}
	return Parse(data)
}

// Parse validates raw YAML and builds the catalog. A document is either a list of problems or a mapping of
// course name to a list of problems.
func Parse(data []byte) (*Catalog, error) {
	var document interface{}
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("decode problem catalog: %w", err)
	}

	if err := validate(document); err != nil {
		return nil, err
	}

	var byCourse map[string][]Problem
	var list []Problem
	if err := yaml.Unmarshal(data, &list); err == nil {
		byCourse = map[string][]Problem{DefaultCourse: list}
	} else if err := yaml.Unmarshal(data, &byCourse); err != nil {
		return nil, fmt.Errorf("decode problem catalog: %w", err)
	}

	return New(byCourse)
}

func validate(document interface{}) error {
	// Round-trip through encoding/json so the validator sees plain JSON values.
	encoded, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("problem catalog is not a json-compatible document: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()

	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return fmt.Errorf("problem catalog is not a json-compatible document: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("invalid problem catalog: %w", err)
	}
	return nil
}

// New indexes problems grouped by course. Problem ids must be unique across courses.
func New(byCourse map[string][]Problem) (*Catalog, error) {
	catalog := &Catalog{
		byID:     make(map[uint]Problem),
		byCourse: make(map[string][]Problem, len(byCourse)),
		chapters: make(map[string][]string, len(byCourse)),
	}

	for courseName, problems := range byCourse {
		seen := map[string]struct{}{}
		enriched := make([]Problem, 0, len(problems))

		for _, problem := range problems {
			problem.CourseName = courseName
			problem.Chapter = strings.TrimSpace(problem.Chapter)
			if problem.Chapter == "" {
				problem.Chapter = UnknownChapter
			}

			if existing, ok := catalog.byID[problem.ID]; ok {
				return nil, fmt.Errorf("duplicate problem id %d in courses %q and %q", problem.ID, existing.CourseName, courseName)
			}

			catalog.byID[problem.ID] = problem
			enriched = append(enriched, problem)
			seen[problem.Chapter] = struct{}{}
		}

		chapters := make([]string, 0, len(seen))
		for chapter := range seen {
			chapters = append(chapters, chapter)
		}
		sort.Strings(chapters)

		catalog.byCourse[courseName] = enriched
		catalog.chapters[courseName] = chapters
		catalog.courses = append(catalog.courses, courseName)
	}

	sort.Strings(catalog.courses)
	return catalog, nil
}

// Problem looks up a problem by id.
func (c *Catalog) Problem(id uint) (Problem, bool) {
	problem, ok := c.byID[id]
	return problem, ok
}

// Courses returns the course names declared in the catalog, sorted.
func (c *Catalog) Courses() []string {
	return append([]string(nil), c.courses...)
}

// Chapters returns the sorted, de-duplicated chapters of a course.
func (c *Catalog) Chapters(course string) []string {
	return append([]string(nil), c.chapters[course]...)
}

// ChaptersByCourse returns every course's chapter list.
func (c *Catalog) ChaptersByCourse() map[string][]string {
	result := make(map[string][]string, len(c.chapters))
	for course, chapters := range c.chapters {
		result[course] = append([]string(nil), chapters...)
	}
	return result
}

// HasCourse reports whether the catalog declares the course.
func (c *Catalog) HasCourse(course string) bool {
	_, ok := c.byCourse[course]
	return ok
}

// ChapterProblems returns the problems of a course chapter in catalog order.
func (c *Catalog) ChapterProblems(course, chapter string) []Problem {
	problems := make([]Problem, 0)
	for _, problem := range c.byCourse[course] {
		if problem.Chapter == chapter {
			problems = append(problems, problem)
		}
	}
	return problems
}

// IDs extracts the ids of the given problems.
func IDs(problems []Problem) []uint {
	ids := make([]uint, 0, len(problems))
	for _, problem := range problems {
		ids = append(ids, problem.ID)
	}
	return ids
}
