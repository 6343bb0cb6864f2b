package usecase

import (
	"fmt"

	"github.com/wielerspel/peloton-api/internal/domain/result"
	"github.com/wielerspel/peloton-api/internal/domain/scoring"
)

// ValidationReport is the validation gate outcome. Errors block processing,
// warnings are recorded but do not.
type ValidationReport struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// ValidateResult structurally checks a result document before it is allowed
// to drive scoring.
func ValidateResult(doc *result.Document, stage result.Stage) ValidationReport {
	var report ValidationReport

	if doc == nil {
		report.Errors = append(report.Errors, "result document is empty")
		return report
	}

	switch stage.Kind {
	case result.StageTourGC:
		if len(doc.GeneralClassification) == 0 {
			report.Errors = append(report.Errors, "generalClassification is missing or empty")
		}
	default:
		if len(doc.StageResults) == 0 {
			report.Errors = append(report.Errors, "stageResults is missing or empty")
		}
		if len(doc.GeneralClassification) == 0 {
			report.Warnings = append(report.Warnings, "generalClassification is missing or empty")
		}
	}

	report.Warnings = append(report.Warnings, listWarnings("stageResults", doc.StageResults)...)
	report.Warnings = append(report.Warnings, listWarnings("generalClassification", doc.GeneralClassification)...)

	if doc.UpdatedAt.IsZero() {
		report.Warnings = append(report.Warnings, "updatedAt is missing")
	}

	report.Valid = len(report.Errors) == 0
	return report
}

func listWarnings(name string, list result.RiderList) []string {
	var warnings []string
	unresolved := 0
	for _, row := range list {
		if scoring.CanonicalID(row) == "" {
			unresolved++
		}
	}
	if unresolved > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: %d entries have no resolvable rider identity", name, unresolved))
	}
	return warnings
}
