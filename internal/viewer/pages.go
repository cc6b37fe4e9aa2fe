package viewer

// PageKey names a detail page. The template for a page is "<key>.html".
type PageKey string

const (
	PageVehicleType PageKey = "vehicle-type"
	PageSeverity    PageKey = "severity"
	PageDamage      PageKey = "damage"
	PageCost        PageKey = "cost"
	PageSummary     PageKey = "summary"
)

// EntryPath is where every guarded page sends a session with nothing stored.
const EntryPath = "/dashboard"

type Page struct {
	Key       PageKey
	Path      string
	Title     string
	Subtitle  string
	NextLabel string
}

var sequence = []Page{
	{Key: PageVehicleType, Path: "/detect-car", Title: "Car Type Detection", Subtitle: "Step 1: Identify your vehicle type.", NextLabel: "Next: Analyze Severity"},
	{Key: PageSeverity, Path: "/analyze-severity", Title: "Damage Severity Analysis", Subtitle: "Step 2: Assess how serious the damage is.", NextLabel: "Next: Detect Specific Damage"},
	{Key: PageDamage, Path: "/detect-damage", Title: "Damage Detection", Subtitle: "Step 3: Locate the damaged parts.", NextLabel: "Estimate Cost"},
	{Key: PageCost, Path: "/estimate-cost", Title: "Repair Cost Estimation", Subtitle: "Step 4: Estimated repair costs.", NextLabel: "View Summary"},
	{Key: PageSummary, Path: "/summary", Title: "Vehicle Analysis Summary", Subtitle: "Complete overview and expert AI advice."},
}

// Sequence returns the detail pages in navigation order.
func Sequence() []Page {
	return append([]Page(nil), sequence...)
}

func Lookup(key PageKey) (Page, bool) {
	for _, p := range sequence {
		if p.Key == key {
			return p, true
		}
	}
	return Page{}, false
}

// Next is the page after p, if any.
func (p Page) Next() (Page, bool) {
	for i, s := range sequence {
		if s.Key == p.Key && i+1 < len(sequence) {
			return sequence[i+1], true
		}
	}
	return Page{}, false
}

func (p Page) Template() string {
	return string(p.Key) + ".html"
}
