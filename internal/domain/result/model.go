package result

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// StageKind discriminates the three shapes a stage marker can take: a
// numbered stage (including the prologue, stage 0), the one-day race final
// result, and the synthetic tour-GC pseudo stage.
type StageKind int

const (
	StageNumbered StageKind = iota
	StageFinalResult
	StageTourGC
)

// Stage is a tagged stage identifier. Number is only meaningful when Kind is
// StageNumbered.
type Stage struct {
	Kind   StageKind
	Number int
}

func Numbered(n int) Stage      { return Stage{Kind: StageNumbered, Number: n} }
func FinalResult() Stage        { return Stage{Kind: StageFinalResult} }
func TourGC() Stage             { return Stage{Kind: StageTourGC} }
func (s Stage) IsPrologue() bool { return s.Kind == StageNumbered && s.Number == 0 }

// ParseStage accepts the wire forms of a stage marker: a JSON number, a
// numeric string, "result", or "tour-gc".
func ParseStage(raw any) (Stage, error) {
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) || v < 0 {
			return Stage{}, fmt.Errorf("invalid stage number %v", v)
		}
		return Numbered(int(v)), nil
	case int:
		if v < 0 {
			return Stage{}, fmt.Errorf("invalid stage number %d", v)
		}
		return Numbered(v), nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "result":
			return FinalResult(), nil
		case "tour-gc":
			return TourGC(), nil
		case "":
			return Stage{}, fmt.Errorf("empty stage")
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return Stage{}, fmt.Errorf("invalid stage %q", v)
		}
		return Numbered(n), nil
	default:
		return Stage{}, fmt.Errorf("unsupported stage type %T", raw)
	}
}

// String renders the stage key segment used in document keys and per-stage
// breakdown maps: "prologue", "stage-<n>", "result", or "tour-gc".
func (s Stage) String() string {
	switch s.Kind {
	case StageFinalResult:
		return "result"
	case StageTourGC:
		return "tour-gc"
	default:
		if s.Number == 0 {
			return "prologue"
		}
		return "stage-" + strconv.Itoa(s.Number)
	}
}

var yearSuffixRe = regexp.MustCompile(`_\d{4}$`)

// RaceName strips a trailing _<year> suffix from a scraped race slug, e.g.
// "tour-de-france_2026" becomes "tour-de-france".
func RaceName(raceSlug string) string {
	return yearSuffixRe.ReplaceAllString(strings.TrimSpace(raceSlug), "")
}

// DocKey derives the result-document key for a race, year, and stage marker.
func DocKey(raceSlug string, year int, stage Stage) string {
	return fmt.Sprintf("%s-%d-%s", RaceName(raceSlug), year, stage.String())
}

// FlexInt decodes a rank or place that scraped data may carry as a JSON
// number, a numeric string, or the sentinel "-" (decoded as 0).
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = 0
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" || s == "-" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid numeric value %q: %w", s, err)
		}
		*f = FlexInt(n)
		return nil
	}
	var n float64
	if err := sonic.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexInt(int(n))
	return nil
}

func (f FlexInt) Int() int { return int(f) }

// RiderRow is one entry in a stage-result or classification list. The three
// identity fields are aliases for the same rider and are reconciled by the
// scoring identity matcher.
type RiderRow struct {
	NameID    string  `json:"nameID"`
	ShortName string  `json:"shortName"`
	Rider     string  `json:"rider"`
	Place     FlexInt `json:"place"`
	Points    FlexInt `json:"points"`
}

// RiderList decodes either a native JSON array or a JSON string containing
// serialized array text. Scraper snapshots have stored both shapes.
type RiderList []RiderRow

func (l *RiderList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var text string
		if err := sonic.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			*l = nil
			return nil
		}
		var rows []RiderRow
		if err := sonic.UnmarshalString(text, &rows); err != nil {
			return fmt.Errorf("decode embedded rider list: %w", err)
		}
		*l = rows
		return nil
	}
	var rows []RiderRow
	if err := sonic.Unmarshal(data, &rows); err != nil {
		return err
	}
	*l = rows
	return nil
}

// Document is a persisted race/stage result, written by the scraper and
// read-only here.
type Document struct {
	Key                     string    `json:"key"`
	StageResults            RiderList `json:"stageResults"`
	GeneralClassification   RiderList `json:"generalClassification"`
	PointsClassification    RiderList `json:"pointsClassification"`
	MountainsClassification RiderList `json:"mountainsClassification"`
	YouthClassification     RiderList `json:"youthClassification"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

// UpdatedWithin reports whether the document was refreshed by the scraper
// inside the given window, relative to now.
func (d *Document) UpdatedWithin(window time.Duration, now time.Time) bool {
	if d.UpdatedAt.IsZero() {
		return false
	}
	return now.Sub(d.UpdatedAt) < window
}
