package models

type HistoryImages struct {
	CarURL      string `json:"car_url"`
	SeverityURL string `json:"severity_url"`
	DamageURL   string `json:"damage_url"`
}

// HistoryRecord is what the backend keeps per finished assessment.
type HistoryRecord struct {
	ID            string        `json:"_id,omitempty"`
	Timestamp     string        `json:"timestamp,omitempty"`
	CarType       string        `json:"car_type"`
	Severity      Severity      `json:"severity"`
	DamagedParts  []string      `json:"damaged_parts"`
	EstimatedCost CostRange     `json:"estimated_cost"`
	Images        HistoryImages `json:"images"`
}

// NewHistoryRecord derives the history payload; thumbnails come from the first image.
func NewHistoryRecord(result *AssessmentResult) HistoryRecord {
	rec := HistoryRecord{
		CarType:       result.CarType,
		Severity:      result.Severity,
		DamagedParts:  append([]string(nil), result.DamagedParts...),
		EstimatedCost: result.EstimatedCost,
	}
	if len(result.ImageResults) > 0 {
		first := result.ImageResults[0]
		rec.Images = HistoryImages{
			CarURL:      first.OriginalURL,
			SeverityURL: first.DisplayURL(),
			DamageURL:   first.DisplayURL(),
		}
	}
	return rec
}
