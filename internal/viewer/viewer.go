package viewer

import (
	"fmt"
	"math"
	"net/url"

	"github.com/dustin/go-humanize"

	"github.com/kdimtricp/damagecheck/internal/metrics"
	"github.com/kdimtricp/damagecheck/internal/models"
)

type State int

const (
	StateAwaitingRedirect State = iota
	StateRendering
)

func (s State) String() string {
	switch s {
	case StateAwaitingRedirect:
		return "awaiting-redirect"
	case StateRendering:
		return "rendering"
	}
	return "unknown"
}

// Reader is the read side of the session result store.
type Reader interface {
	Read() (*models.AssessmentResult, bool)
}

type Navigator interface {
	Redirect(path string)
}

type ImageView struct {
	Position      int
	URL           string
	OriginalURL   string
	Annotated     bool
	CarType       string
	Severity      models.Severity
	SeverityClass string
	DamagedParts  []string
}

type View struct {
	Page     Page
	Result   *models.AssessmentResult
	Images   []ImageView
	Ranked   []ImageView
	BackPath string
	Next     *Page

	SeverityClass string
	CostLabel     string
}

type Option func(*Viewer)

// WithMediaBase resolves relative image urls returned by the backend against base.
func WithMediaBase(base *url.URL) Option {
	return func(v *Viewer) {
		v.media = base
	}
}

// Viewer renders one detail page and only ever reads the store.
type Viewer struct {
	page   Page
	reader Reader
	media  *url.URL
}

func New(page Page, reader Reader, opts ...Option) *Viewer {
	v := &Viewer{page: page, reader: reader}
	for _, o := range opts {
		o(v)
	}
	return v
}

func (v *Viewer) Page() Page {
	return v.page
}

// Enter decides what the page shows. With nothing stored it redirects to the
// entry page exactly once and returns no view.
func (v *Viewer) Enter(nav Navigator) (State, *View) {
	result, ok := v.reader.Read()
	if !ok || result == nil {
		metrics.IncreaseGuardRedirectsMetric(string(v.page.Key))
		nav.Redirect(EntryPath)
		return StateAwaitingRedirect, nil
	}
	return StateRendering, v.build(result)
}

func (v *Viewer) build(result *models.AssessmentResult) *View {
	view := &View{
		Page:          v.page,
		Result:        result,
		Images:        make([]ImageView, 0, len(result.ImageResults)),
		BackPath:      EntryPath,
		SeverityClass: result.Severity.Class(),
		CostLabel:     FormatCost(result.EstimatedCost),
	}
	if next, ok := v.page.Next(); ok {
		view.Next = &next
	}

	for i, img := range result.ImageResults {
		view.Images = append(view.Images, v.image(i+1, img))
	}
	if v.page.Key == PageSummary {
		for _, img := range result.ImagesBySeverity() {
			view.Ranked = append(view.Ranked, v.image(img.Position, img.ImageResult))
		}
	}
	return view
}

func (v *Viewer) image(position int, img models.ImageResult) ImageView {
	return ImageView{
		Position:      position,
		URL:           v.resolve(img.DisplayURL()),
		OriginalURL:   v.resolve(img.OriginalURL),
		Annotated:     img.AnnotatedURL != "",
		CarType:       img.CarType,
		Severity:      img.Severity,
		SeverityClass: img.Severity.Class(),
		DamagedParts:  img.DamagedParts,
	}
}

func (v *Viewer) resolve(raw string) string {
	if v.media == nil || raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() {
		return raw
	}
	return v.media.ResolveReference(u).String()
}

// FormatCost renders a range in whole rupees, e.g. "₹5,000 - ₹9,000".
func FormatCost(c models.CostRange) string {
	return fmt.Sprintf("₹%s - ₹%s", rupees(c.MinCost), rupees(c.MaxCost))
}

func rupees(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}
