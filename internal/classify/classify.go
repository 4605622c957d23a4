// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify labels study titles along four axes (therapeutic area,
// study phase, treatment type, population) using ordered regular-expression
// tables, and scores how much signal the title carried.
package classify

import (
	_ "embed"
	"math"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trial-engine/pkg/types"
)

//go:embed patterns.yaml
var defaultPatterns []byte

const (
	maxConfidence = 0.9
	matchWeight   = 0.8
	wordsPerMatch = 0.1
)

// PatternSpec is one uncompiled table entry.
type PatternSpec struct {
	Label   string `yaml:"label"`
	Pattern string `yaml:"pattern"`
}

// Tables is the on-disk form of the four classification tables.
type Tables struct {
	TherapeuticAreas []PatternSpec `yaml:"therapeutic_areas"`
	StudyPhases      []PatternSpec `yaml:"study_phases"`
	TreatmentTypes   []PatternSpec `yaml:"treatment_types"`
	Populations      []PatternSpec `yaml:"populations"`
}

type rule struct {
	label string
	re    *regexp.Regexp
}

// Classifier holds compiled pattern tables. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	areas       []rule
	phases      []rule
	treatments  []rule
	populations []rule
}

var (
	defaultOnce       sync.Once
	defaultClassifier *Classifier
)

// Default returns the classifier built from the embedded tables. The tables
// are compiled on first use and shared afterwards.
func Default() *Classifier {
	defaultOnce.Do(func() {
		c, err := Parse(defaultPatterns)
		if err != nil {
			panic(eris.Wrap(err, "classify: embedded patterns"))
		}
		defaultClassifier = c
	})
	return defaultClassifier
}

// Load returns the default classifier when path is empty, otherwise one
// compiled from the YAML tables at path.
func Load(path string) (*Classifier, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "classify: read patterns file %s", path)
	}
	return Parse(data)
}

// Parse compiles YAML pattern tables.
func Parse(data []byte) (*Classifier, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "classify: parse patterns")
	}
	return New(t)
}

// New compiles tables. Every pattern is made case-insensitive.
func New(t Tables) (*Classifier, error) {
	var (
		c   Classifier
		err error
	)
	if c.areas, err = compile("therapeutic_areas", t.TherapeuticAreas); err != nil {
		return nil, err
	}
	if c.phases, err = compile("study_phases", t.StudyPhases); err != nil {
		return nil, err
	}
	if c.treatments, err = compile("treatment_types", t.TreatmentTypes); err != nil {
		return nil, err
	}
	if c.populations, err = compile("populations", t.Populations); err != nil {
		return nil, err
	}
	return &c, nil
}

func compile(axis string, specs []PatternSpec) ([]rule, error) {
	rules := make([]rule, 0, len(specs))
	for _, s := range specs {
		if s.Label == "" {
			return nil, eris.Errorf("classify: %s: entry with empty label", axis)
		}
		re, err := regexp.Compile("(?i)" + s.Pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "classify: %s: compile %q", axis, s.Label)
		}
		rules = append(rules, rule{label: s.Label, re: re})
	}
	return rules, nil
}

// Classify labels a title. Therapeutic areas collect every match; the other
// axes take the first match in table order. A title with no matches yields
// empty labels and zero confidence.
func (c *Classifier) Classify(title, studyID string) types.ClassificationResult {
	cl := types.StudyClassification{
		TherapeuticAreas: []string{},
		Keywords:         []string{},
	}

	for _, r := range c.areas {
		if r.re.MatchString(title) {
			cl.TherapeuticAreas = append(cl.TherapeuticAreas, r.label)
			cl.Keywords = append(cl.Keywords, r.label)
		}
	}
	if l := firstMatch(c.phases, title); l != "" {
		cl.StudyPhase = l
		cl.Keywords = append(cl.Keywords, l)
	}
	if l := firstMatch(c.treatments, title); l != "" {
		cl.TreatmentType = l
		cl.Keywords = append(cl.Keywords, l)
	}
	if l := firstMatch(c.populations, title); l != "" {
		cl.Population = l
		cl.Keywords = append(cl.Keywords, l)
	}

	cl.Confidence = Confidence(len(cl.Keywords), len(strings.Fields(title)))

	return types.ClassificationResult{
		StudyID:        studyID,
		Title:          title,
		Classification: cl,
	}
}

// ClassifyAll classifies each study's title, preserving order.
func (c *Classifier) ClassifyAll(studies []types.StudyRecord) []types.ClassificationResult {
	results := make([]types.ClassificationResult, len(studies))
	for i, s := range studies {
		results[i] = c.Classify(s.Title, s.ID)
	}
	return results
}

// Confidence scores matches against title length:
// min(0.9, matches / max(words*0.1, 1) * 0.8).
func Confidence(matches, words int) float64 {
	denom := math.Max(float64(words)*wordsPerMatch, 1)
	return math.Min(maxConfidence, float64(matches)/denom*matchWeight)
}

func firstMatch(rules []rule, title string) string {
	for _, r := range rules {
		if r.re.MatchString(title) {
			return r.label
		}
	}
	return ""
}

// Labels returns the labels of each axis in table order, for display.
func (c *Classifier) Labels() (areas, phases, treatments, populations []string) {
	return labels(c.areas), labels(c.phases), labels(c.treatments), labels(c.populations)
}

func labels(rules []rule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.label
	}
	return out
}
