package service

import (
	"fmt"
	"strings"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

type LocationReport struct {
	LocationID               domain.LocationID
	Type                     domain.LocationType
	UsedVolume               float64
	FreeVolume               float64
	HasIssues                bool
	NeedsExpiredRemoval      bool
	NeedsTypeCorrection      bool
	NeedsSortingOptimization bool
	Comment                  string
}

// Analyze reports structural problems per location. Each location is read
// from its own snapshot; no two locations are locked together.
func (e *Engine) Analyze() []LocationReport {
	locations := e.network.Locations()
	reports := make([]LocationReport, 0, len(locations))
	for _, loc := range locations {
		summary, lines := loc.Inspect()
		reports = append(reports, AnalyzeLocation(summary, lines))
	}
	return reports
}

// AnalyzeLocation derives the report for one location snapshot. Any expired
// line needs removal, including one already held by a Disposal location.
func AnalyzeLocation(summary domain.LocationSummary, lines []domain.Line) LocationReport {
	r := LocationReport{
		LocationID: summary.ID,
		Type:       summary.Type,
		UsedVolume: summary.UsedVolume,
		FreeVolume: summary.FreeVolume,
	}

	overCapacity := summary.FreeVolume < -domain.VolumeTolerance
	var expired, mismatched, disposalHoldsFresh bool
	for _, line := range lines {
		switch summary.Type {
		case domain.General:
			if line.Product.ShelfLifeDays < domain.ShortLifeThresholdDays {
				mismatched = true
			}
		case domain.Cold:
			if line.Product.ShelfLifeDays >= domain.ShortLifeThresholdDays {
				mismatched = true
			}
		case domain.Disposal:
			if !line.Product.Expired() {
				disposalHoldsFresh = true
			}
		}
		if line.Product.Expired() {
			expired = true
		}
	}
	sortingBacklog := summary.Type == domain.Sorting && len(lines) > 0

	r.NeedsExpiredRemoval = expired
	r.NeedsTypeCorrection = mismatched || disposalHoldsFresh
	r.NeedsSortingOptimization = sortingBacklog
	r.HasIssues = overCapacity || expired || mismatched || sortingBacklog || disposalHoldsFresh

	var reasons []string
	if overCapacity {
		reasons = append(reasons, fmt.Sprintf("capacity exceeded by %.2f", -summary.FreeVolume))
	}
	if expired {
		reasons = append(reasons, "expired stock present")
	}
	if mismatched {
		reasons = append(reasons, fmt.Sprintf("stock does not match %s storage", summary.Type))
	}
	if sortingBacklog {
		reasons = append(reasons, "sorting location needs redistribution")
	}
	if disposalHoldsFresh {
		reasons = append(reasons, "disposal location holds non-expired stock")
	}
	if len(reasons) == 0 {
		r.Comment = "no issues"
	} else {
		r.Comment = strings.Join(reasons, "; ")
	}
	return r
}
