// Package priority orders test records so that the riskiest tests run first.
package priority

import (
	"cmp"
	"math"

	"github.com/autotestx/prioritizer/internal/model"
	"golang.org/x/exp/slices"
)

// Sort returns a copy of records ordered by RiskScore, highest first.
// Records with equal scores keep their input order. NaN scores are placed
// after all other records.
func Sort(records []model.TestRecord) []model.TestRecord {
	sorted := make([]model.TestRecord, len(records))
	copy(sorted, records)

	slices.SortStableFunc(sorted, byRiskScoreDesc)

	return sorted
}

func byRiskScoreDesc(a, b model.TestRecord) int {
	aNaN, bNaN := math.IsNaN(a.RiskScore), math.IsNaN(b.RiskScore)

	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}

	return cmp.Compare(b.RiskScore, a.RiskScore)
}
