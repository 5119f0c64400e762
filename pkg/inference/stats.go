package inference

import (
	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

// ColumnStatistics reduces column profiles to the uniqueness statistics the
// stats endpoint reports, so callers can pick a primary key by hand.
func ColumnStatistics(profiles []models.ColumnProfile, totalRows int) []models.ColumnStats {
	stats := make([]models.ColumnStats, 0, len(profiles))
	for _, p := range profiles {
		uniqueness := 0.0
		if totalRows > 0 {
			uniqueness = float64(p.DistinctCount) / float64(totalRows) * 100
		}
		stats = append(stats, models.ColumnStats{
			Name:              p.Name,
			TotalRows:         totalRows,
			UniqueCount:       p.DistinctCount,
			NullCount:         p.NullCount,
			NonNullCount:      p.NonNullCount,
			IsUnique:          p.IsUnique,
			HasNulls:          p.Nullable,
			SuitableForPK:     p.IsUnique && !p.Nullable,
			UniquenessPercent: uniqueness,
		})
	}
	return stats
}
