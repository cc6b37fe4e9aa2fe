package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kdimtricp/damagecheck/internal/models"
)

func TestStore_EmptyByDefault(t *testing.T) {
	s := NewStore()
	got, ok := s.Read()
	require.False(t, ok)
	require.Nil(t, got)
}

func TestStore_SetOverwritesWholesale(t *testing.T) {
	s := NewStore()
	s.Set(&models.AssessmentResult{
		CarType:      "sedan",
		Severity:     models.SeveritySevere,
		DamagedParts: []string{"bumper", "door"},
		ImageResults: []models.ImageResult{{OriginalURL: "/a.jpg", Severity: models.SeveritySevere}},
	})
	second := &models.AssessmentResult{
		CarType:  "hatchback",
		Severity: models.SeverityMinor,
	}
	s.Set(second)

	got, ok := s.Read()
	require.True(t, ok)
	require.Equal(t, second, got)
	require.Empty(t, got.DamagedParts)
	require.Empty(t, got.ImageResults)
}

func TestStore_ReadersCannotMutate(t *testing.T) {
	s := NewStore()
	s.Set(&models.AssessmentResult{CarType: "sedan", Severity: models.SeverityMinor, DamagedParts: []string{"bumper"}})

	got, _ := s.Read()
	got.CarType = "truck"
	got.DamagedParts[0] = "roof"

	again, _ := s.Read()
	require.Equal(t, "sedan", again.CarType)
	require.Equal(t, []string{"bumper"}, again.DamagedParts)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	s := NewStore()
	s.Set(&models.AssessmentResult{CarType: "sedan", Severity: models.SeverityMinor})
	s.Clear()
	s.Clear()

	_, ok := s.Read()
	require.False(t, ok)
}
