package scoring

import (
	"testing"

	"github.com/wielerspel/peloton-api/internal/domain/result"
)

func TestNormalizeIdentity(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Tadej Pogacar":     "tadej-pogacar",
		"  Wout  van Aert ": "wout-van-aert",
		"VINGEGAARD Jonas":  "vingegaard-jonas",
		"":                  "",
		"   ":               "",
	}
	for in, want := range cases {
		if got := NormalizeIdentity(in); got != want {
			t.Errorf("NormalizeIdentity(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalIDPriority(t *testing.T) {
	t.Parallel()

	row := result.RiderRow{NameID: "rider-a", ShortName: "Rider Alpha", Rider: "Rider A. Alpha"}
	if got := CanonicalID(row); got != "rider-a" {
		t.Fatalf("CanonicalID = %q, want nameID first", got)
	}

	row = result.RiderRow{ShortName: "Rider Alpha", Rider: "Rider A. Alpha"}
	if got := CanonicalID(row); got != "rider-alpha" {
		t.Fatalf("CanonicalID = %q, want normalized short name", got)
	}

	if got := CanonicalID(result.RiderRow{Rider: "-"}); got != "" {
		t.Fatalf("sentinel identity resolved to %q, want empty", got)
	}
	if got := CanonicalID(result.RiderRow{NameID: "  "}); got != "" {
		t.Fatalf("whitespace identity resolved to %q, want empty", got)
	}
}

func TestMatchesRiderAcceptsAnyCandidate(t *testing.T) {
	t.Parallel()

	row := result.RiderRow{NameID: "pogacar-tadej", ShortName: "POGACAR Tadej", Rider: "Tadej Pogacar"}
	for _, id := range []string{"pogacar-tadej", "tadej-pogacar"} {
		if !MatchesRider(row, id) {
			t.Errorf("expected match for %q", id)
		}
	}
	if MatchesRider(row, "jonas-vingegaard") {
		t.Error("unexpected match for a different rider")
	}
	if MatchesRider(row, "") {
		t.Error("empty target must never match")
	}
}
