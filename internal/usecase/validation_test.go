package usecase

import (
	"testing"
	"time"

	"github.com/wielerspel/peloton-api/internal/domain/result"
)

func TestValidateResultMissingEverything(t *testing.T) {
	t.Parallel()

	report := ValidateResult(&result.Document{}, result.Numbered(5))
	if report.Valid {
		t.Fatal("empty document must not validate")
	}
	if len(report.Errors) == 0 {
		t.Fatal("expected itemized errors")
	}
}

func TestValidateResultWarningsDoNotBlock(t *testing.T) {
	t.Parallel()

	doc := &result.Document{
		StageResults: result.RiderList{
			{NameID: "rider-a", Place: 1},
			{Rider: "-", Place: 2},
		},
		UpdatedAt: time.Now(),
	}
	report := ValidateResult(doc, result.Numbered(5))
	if !report.Valid {
		t.Fatalf("document with warnings must still validate: %+v", report)
	}
	if len(report.Warnings) == 0 {
		t.Fatal("expected warnings for unresolvable identity and missing GC")
	}
}

func TestValidateResultTourGCRequiresClassification(t *testing.T) {
	t.Parallel()

	doc := &result.Document{
		StageResults: result.RiderList{{NameID: "rider-a", Place: 1}},
		UpdatedAt:    time.Now(),
	}
	report := ValidateResult(doc, result.TourGC())
	if report.Valid {
		t.Fatal("tour-gc without generalClassification must not validate")
	}

	doc.GeneralClassification = result.RiderList{{NameID: "rider-a", Place: 1}}
	report = ValidateResult(doc, result.TourGC())
	if !report.Valid {
		t.Fatalf("tour-gc with generalClassification must validate: %+v", report)
	}
}

func TestValidateResultNilDocument(t *testing.T) {
	t.Parallel()

	if report := ValidateResult(nil, result.Numbered(1)); report.Valid {
		t.Fatal("nil document must not validate")
	}
}
