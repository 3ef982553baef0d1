package pagelist

import (
	"strings"
	"time"
	"unicode"

	"github.com/propkit/client-go/entity"
)

// PropertyView is the presentation shape of a property list row. All
// derived fields are computed once in BuildPropertyView and reused while
// the record's UpdatedAt is unchanged.
type PropertyView struct {
	ID               string
	Name             string
	FormattedAddress string
	Status           string
	StatusLabel      string
	StatusColor      string
	TotalUnits       int
	OccupiedUnits    int
	VacantUnits      int
	OccupancyPercent int
	ThumbnailURL     string
	UpdatedAt        time.Time
}

// BuildPropertyView computes every derived field for one property record.
func BuildPropertyView(p entity.Property) *PropertyView {
	occupancy := 0
	if p.UnitCounts.Total > 0 {
		occupancy = p.UnitCounts.Occupied * 100 / p.UnitCounts.Total
	}

	return &PropertyView{
		ID:               p.ID,
		Name:             p.Name,
		FormattedAddress: FormatAddress(p.AddressLine1, p.AddressLine2, p.City, p.State, p.PostalCode),
		Status:           p.Status,
		StatusLabel:      HumanizeStatus(p.Status),
		StatusColor:      StatusColor(p.Status),
		TotalUnits:       p.UnitCounts.Total,
		OccupiedUnits:    p.UnitCounts.Occupied,
		VacantUnits:      p.UnitCounts.Vacant,
		OccupancyPercent: occupancy,
		ThumbnailURL:     PrimaryImageURL(p.Images),
		UpdatedAt:        p.UpdatedAt,
	}
}

// PropertyMaterializer builds the identity-stable view-model cache for a
// property list, keyed by UpdatedAt as the version marker.
func PropertyMaterializer() *Materializer[entity.Property, PropertyView] {
	return NewMaterializer(
		func(p entity.Property) string { return p.ID },
		func(p entity.Property) string { return versionFromTime(p.UpdatedAt) },
		BuildPropertyView,
	)
}

// UnitView is the presentation shape of a unit list row.
type UnitView struct {
	ID           string
	PropertyID   string
	Label        string
	Status       string
	StatusLabel  string
	StatusColor  string
	Bedrooms     int
	Bathrooms    float64
	RentCents    int64
	ThumbnailURL string
	UpdatedAt    time.Time
}

// BuildUnitView computes every derived field for one unit record.
func BuildUnitView(u entity.Unit) *UnitView {
	return &UnitView{
		ID:           u.ID,
		PropertyID:   u.PropertyID,
		Label:        u.Label,
		Status:       u.Status,
		StatusLabel:  HumanizeStatus(u.Status),
		StatusColor:  StatusColor(u.Status),
		Bedrooms:     u.Bedrooms,
		Bathrooms:    u.Bathrooms,
		RentCents:    u.RentCents,
		ThumbnailURL: PrimaryImageURL(u.Images),
		UpdatedAt:    u.UpdatedAt,
	}
}

// UnitMaterializer builds the identity-stable view-model cache for a unit
// list, keyed by UpdatedAt.
func UnitMaterializer() *Materializer[entity.Unit, UnitView] {
	return NewMaterializer(
		func(u entity.Unit) string { return u.ID },
		func(u entity.Unit) string { return versionFromTime(u.UpdatedAt) },
		BuildUnitView,
	)
}

// versionFromTime renders a version marker from a timestamp. The zero time
// yields "", which the Materializer treats as "always changed" — the
// documented fallback when a record carries no usable marker.
func versionFromTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatAddress joins the non-empty address parts into one display line:
// "12 Oak St, Apt 3, Portland, OR 97201".
func FormatAddress(line1, line2, city, state, postal string) string {
	var parts []string
	for _, p := range []string{line1, line2, city} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	region := strings.TrimSpace(state + " " + postal)
	if region != "" {
		parts = append(parts, region)
	}
	return strings.Join(parts, ", ")
}

// statusColors maps entity statuses to the palette tokens the UI renders
// badges with. Unknown statuses fall back to gray.
var statusColors = map[string]string{
	"active":      "green",
	"occupied":    "green",
	"completed":   "green",
	"passed":      "green",
	"vacant":      "amber",
	"pending":     "amber",
	"in_progress": "blue",
	"scheduled":   "blue",
	"open":        "blue",
	"maintenance": "orange",
	"overdue":     "red",
	"failed":      "red",
	"cancelled":   "gray",
	"archived":    "gray",
}

// StatusColor resolves the badge color token for a status.
func StatusColor(status string) string {
	if color, ok := statusColors[strings.ToLower(status)]; ok {
		return color
	}
	return "gray"
}

// HumanizeStatus renders a machine status for display: "in_progress"
// becomes "In Progress".
func HumanizeStatus(status string) string {
	if status == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(status))

	startOfWord := true
	for _, r := range status {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			b.WriteByte(' ')
			startOfWord = true
		case startOfWord:
			b.WriteRune(unicode.ToUpper(r))
			startOfWord = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
