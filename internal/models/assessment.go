package models

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidResult = errors.New("invalid assessment result")

type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityMinor, SeverityModerate, SeveritySevere:
		return Severity(s), nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Rank orders severities minor < moderate < severe. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityModerate:
		return 2
	case SeveritySevere:
		return 3
	}
	return 0
}

func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// Class is the css modifier used by the templates.
func (s Severity) Class() string {
	switch s {
	case SeverityMinor:
		return "severity-minor"
	case SeverityModerate:
		return "severity-moderate"
	case SeveritySevere:
		return "severity-severe"
	}
	return "severity-unknown"
}

// MaxSeverity returns the most severe value. An empty input yields SeverityMinor.
func MaxSeverity(values []Severity) Severity {
	max := SeverityMinor
	for _, v := range values {
		if v.Rank() > max.Rank() {
			max = v
		}
	}
	return max
}

type CostRange struct {
	MinCost float64 `json:"min_cost"`
	MaxCost float64 `json:"max_cost"`
}

func (c CostRange) Validate() error {
	if c.MinCost < 0 || c.MaxCost < 0 {
		return fmt.Errorf("%w: negative cost %.2f-%.2f", ErrInvalidResult, c.MinCost, c.MaxCost)
	}
	if c.MinCost > c.MaxCost {
		return fmt.Errorf("%w: min cost %.2f exceeds max cost %.2f", ErrInvalidResult, c.MinCost, c.MaxCost)
	}
	return nil
}

type ImageResult struct {
	OriginalURL  string   `json:"original_url"`
	AnnotatedURL string   `json:"annotated_url,omitempty"`
	CarType      string   `json:"car_type"`
	Severity     Severity `json:"severity"`
	DamagedParts []string `json:"damaged_parts"`
}

// DisplayURL prefers the annotated overlay and falls back to the original photo.
func (r ImageResult) DisplayURL() string {
	if r.AnnotatedURL != "" {
		return r.AnnotatedURL
	}
	return r.OriginalURL
}

type AssessmentResult struct {
	CarType       string        `json:"car_type"`
	Severity      Severity      `json:"severity"`
	DamagedParts  []string      `json:"damaged_parts"`
	EstimatedCost CostRange     `json:"estimated_cost"`
	ImageResults  []ImageResult `json:"image_results"`
}

func (a *AssessmentResult) Severities() []Severity {
	out := make([]Severity, 0, len(a.ImageResults))
	for _, img := range a.ImageResults {
		out = append(out, img.Severity)
	}
	return out
}

// Validate checks the invariants the backend promises. Nothing is recomputed.
func (a *AssessmentResult) Validate() error {
	if !a.Severity.Valid() {
		return fmt.Errorf("%w: aggregate severity %q", ErrInvalidResult, a.Severity)
	}
	if err := a.EstimatedCost.Validate(); err != nil {
		return err
	}
	for i, img := range a.ImageResults {
		if img.OriginalURL == "" {
			return fmt.Errorf("%w: image %d has no original url", ErrInvalidResult, i+1)
		}
		if !img.Severity.Valid() {
			return fmt.Errorf("%w: image %d severity %q", ErrInvalidResult, i+1, img.Severity)
		}
	}
	if len(a.ImageResults) > 0 {
		if want := MaxSeverity(a.Severities()); want != a.Severity {
			return fmt.Errorf("%w: aggregate severity %q, images peak at %q", ErrInvalidResult, a.Severity, want)
		}
	}
	return nil
}

func (a *AssessmentResult) Clone() *AssessmentResult {
	if a == nil {
		return nil
	}
	c := *a
	c.DamagedParts = append([]string(nil), a.DamagedParts...)
	c.ImageResults = make([]ImageResult, len(a.ImageResults))
	for i, img := range a.ImageResults {
		img.DamagedParts = append([]string(nil), img.DamagedParts...)
		c.ImageResults[i] = img
	}
	return &c
}

// IndexedImage keeps the submission position of an image when views reorder them.
type IndexedImage struct {
	Position int
	ImageResult
}

// ImagesBySeverity returns the images worst first; equal severities keep submission order.
func (a *AssessmentResult) ImagesBySeverity() []IndexedImage {
	out := make([]IndexedImage, len(a.ImageResults))
	for i, img := range a.ImageResults {
		out[i] = IndexedImage{Position: i + 1, ImageResult: img}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() > out[j].Severity.Rank()
	})
	return out
}
