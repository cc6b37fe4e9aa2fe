package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleResult() *AssessmentResult {
	return &AssessmentResult{
		CarType:       "sedan",
		Severity:      SeverityModerate,
		DamagedParts:  []string{"bumper"},
		EstimatedCost: CostRange{MinCost: 5000, MaxCost: 9000},
		ImageResults: []ImageResult{
			{OriginalURL: "/img/1.jpg", CarType: "sedan", Severity: SeverityModerate, DamagedParts: []string{"bumper"}},
		},
	}
}

func TestMaxSeverity(t *testing.T) {
	tests := []struct {
		name   string
		values []Severity
		want   Severity
	}{
		{name: "empty defaults to minor", values: nil, want: SeverityMinor},
		{name: "single", values: []Severity{SeverityModerate}, want: SeverityModerate},
		{name: "severe wins", values: []Severity{SeverityMinor, SeveritySevere, SeverityModerate}, want: SeveritySevere},
		{name: "ties", values: []Severity{SeverityModerate, SeverityModerate}, want: SeverityModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, MaxSeverity(tt.values))
		})
	}
}

func TestAssessmentResult_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *AssessmentResult)
		wantErr bool
	}{
		{name: "valid", mutate: func(a *AssessmentResult) {}},
		{name: "aggregate below image peak", mutate: func(a *AssessmentResult) {
			a.ImageResults = append(a.ImageResults, ImageResult{OriginalURL: "/img/2.jpg", Severity: SeveritySevere})
		}, wantErr: true},
		{name: "aggregate above image peak", mutate: func(a *AssessmentResult) {
			a.Severity = SeveritySevere
		}, wantErr: true},
		{name: "min above max", mutate: func(a *AssessmentResult) {
			a.EstimatedCost = CostRange{MinCost: 10, MaxCost: 5}
		}, wantErr: true},
		{name: "negative cost", mutate: func(a *AssessmentResult) {
			a.EstimatedCost = CostRange{MinCost: -1, MaxCost: 5}
		}, wantErr: true},
		{name: "unknown severity", mutate: func(a *AssessmentResult) {
			a.Severity = "unknown"
		}, wantErr: true},
		{name: "missing original url", mutate: func(a *AssessmentResult) {
			a.ImageResults[0].OriginalURL = ""
		}, wantErr: true},
		{name: "no images keeps aggregate as sent", mutate: func(a *AssessmentResult) {
			a.ImageResults = nil
			a.Severity = SeveritySevere
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := sampleResult()
			tt.mutate(a)
			err := a.Validate()
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrInvalidResult))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestImageResult_DisplayURL(t *testing.T) {
	require.Equal(t, "/img/1.jpg", ImageResult{OriginalURL: "/img/1.jpg"}.DisplayURL())
	require.Equal(t, "/img/1_annotated.jpg", ImageResult{OriginalURL: "/img/1.jpg", AnnotatedURL: "/img/1_annotated.jpg"}.DisplayURL())
}

func TestAssessmentResult_DecodeWireFormat(t *testing.T) {
	payload := `{"car_type":"sedan","severity":"moderate","damaged_parts":["bumper"],
		"estimated_cost":{"min_cost":5000,"max_cost":9000},
		"image_results":[{"original_url":"/img/1.jpg","annotated_url":null,"car_type":"sedan","severity":"moderate","damaged_parts":["bumper"]}]}`

	var got AssessmentResult
	require.NoError(t, json.Unmarshal([]byte(payload), &got))
	require.NoError(t, got.Validate())
	require.Equal(t, sampleResult(), &got)
	require.Equal(t, "/img/1.jpg", got.ImageResults[0].DisplayURL())
}

func TestAssessmentResult_CloneIsDeep(t *testing.T) {
	a := sampleResult()
	c := a.Clone()
	c.DamagedParts[0] = "door"
	c.ImageResults[0].DamagedParts[0] = "hood"
	require.Equal(t, "bumper", a.DamagedParts[0])
	require.Equal(t, "bumper", a.ImageResults[0].DamagedParts[0])
}

func TestAssessmentResult_ImagesBySeverity(t *testing.T) {
	a := &AssessmentResult{ImageResults: []ImageResult{
		{OriginalURL: "a", Severity: SeverityMinor},
		{OriginalURL: "b", Severity: SeveritySevere},
		{OriginalURL: "c", Severity: SeverityModerate},
		{OriginalURL: "d", Severity: SeveritySevere},
	}}

	got := a.ImagesBySeverity()
	order := make([]string, 0, len(got))
	for _, img := range got {
		order = append(order, img.OriginalURL)
	}
	require.Equal(t, []string{"b", "d", "c", "a"}, order)
	require.Equal(t, 2, got[0].Position)
}

func TestNewHistoryRecord(t *testing.T) {
	a := sampleResult()
	rec := NewHistoryRecord(a)
	require.Equal(t, "sedan", rec.CarType)
	require.Equal(t, HistoryImages{CarURL: "/img/1.jpg", SeverityURL: "/img/1.jpg", DamageURL: "/img/1.jpg"}, rec.Images)

	a.ImageResults[0].AnnotatedURL = "/img/1_a.jpg"
	rec = NewHistoryRecord(a)
	require.Equal(t, "/img/1.jpg", rec.Images.CarURL)
	require.Equal(t, "/img/1_a.jpg", rec.Images.DamageURL)

	rec = NewHistoryRecord(&AssessmentResult{CarType: "suv", Severity: SeverityMinor})
	require.Equal(t, HistoryImages{}, rec.Images)
}
