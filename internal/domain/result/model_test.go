package result

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

func TestParseStage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  any
		want Stage
		ok   bool
	}{
		{"number", float64(5), Numbered(5), true},
		{"prologue", float64(0), Numbered(0), true},
		{"numeric string", "12", Numbered(12), true},
		{"result", "result", FinalResult(), true},
		{"tour gc", "tour-gc", TourGC(), true},
		{"mixed case", " Result ", FinalResult(), true},
		{"negative", float64(-1), Stage{}, false},
		{"fraction", 2.5, Stage{}, false},
		{"empty", "", Stage{}, false},
		{"garbage", "stage five", Stage{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseStage(tc.raw)
			if tc.ok != (err == nil) {
				t.Fatalf("ParseStage(%v): err = %v, want ok=%v", tc.raw, err, tc.ok)
			}
			if tc.ok && got != tc.want {
				t.Fatalf("ParseStage(%v) = %+v, want %+v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestDocKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		slug  string
		year  int
		stage Stage
		want  string
	}{
		{"tour-de-france_2026", 2026, Numbered(5), "tour-de-france-2026-stage-5"},
		{"tour-de-france", 2026, Numbered(0), "tour-de-france-2026-prologue"},
		{"paris-roubaix_2026", 2026, FinalResult(), "paris-roubaix-2026-result"},
		{"giro-d-italia", 2026, TourGC(), "giro-d-italia-2026-tour-gc"},
		{"omloop_het_nieuwsblad", 2026, FinalResult(), "omloop_het_nieuwsblad-2026-result"},
	}
	for _, tc := range cases {
		if got := DocKey(tc.slug, tc.year, tc.stage); got != tc.want {
			t.Errorf("DocKey(%q, %d, %s) = %q, want %q", tc.slug, tc.year, tc.stage, got, tc.want)
		}
	}
}

func TestRiderListDecodesBothShapes(t *testing.T) {
	t.Parallel()

	native := `{"stageResults":[{"nameID":"rider-a","place":1,"points":50}]}`
	embedded := `{"stageResults":"[{\"nameID\":\"rider-a\",\"place\":\"1\",\"points\":\"50\"}]"}`

	for _, raw := range []string{native, embedded} {
		var doc Document
		if err := sonic.UnmarshalString(raw, &doc); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if len(doc.StageResults) != 1 {
			t.Fatalf("expected one row, got %d", len(doc.StageResults))
		}
		row := doc.StageResults[0]
		if row.NameID != "rider-a" || row.Place.Int() != 1 || row.Points.Int() != 50 {
			t.Fatalf("unexpected row %+v", row)
		}
	}
}

func TestFlexIntSentinel(t *testing.T) {
	t.Parallel()

	var doc Document
	raw := `{"stageResults":[{"nameID":"rider-a","place":3,"points":"-"}]}`
	if err := sonic.UnmarshalString(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := doc.StageResults[0].Points.Int(); got != 0 {
		t.Fatalf("sentinel points = %d, want 0", got)
	}
}

func TestUpdatedWithin(t *testing.T) {
	t.Parallel()

	now := time.Now()
	doc := &Document{UpdatedAt: now.Add(-2 * time.Minute)}
	if !doc.UpdatedWithin(5*time.Minute, now) {
		t.Fatal("expected recently updated doc inside window")
	}
	if doc.UpdatedWithin(time.Minute, now) {
		t.Fatal("expected doc outside a one-minute window")
	}
	empty := &Document{}
	if empty.UpdatedWithin(5*time.Minute, now) {
		t.Fatal("zero UpdatedAt must never count as recent")
	}
}
