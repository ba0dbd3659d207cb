package trace

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises the trajectory of one entity.
type Stats struct {
	EntityID uint32
	Frames   int
	// Distance is the length of the path through every traced position.
	Distance  float64
	MeanSpeed float64
	MaxSpeed  float64
	// Grounded is the fraction of frames the entity could jump.
	Grounded float64
}

// Summarize returns the stats of every entity in rows, ordered by entity id.
// Rows are expected in frame order, as Writer produces them.
func Summarize(rows []Row) []Stats {
	byEntity := make(map[uint32][]Row)
	for _, row := range rows {
		byEntity[row.EntityID] = append(byEntity[row.EntityID], row)
	}

	stats := make([]Stats, 0, len(byEntity))
	for id, entityRows := range byEntity {
		speeds := make([]float64, len(entityRows))
		grounded := make([]float64, len(entityRows))
		steps := make([]float64, 0, len(entityRows))
		for i, row := range entityRows {
			speeds[i] = math.Hypot(row.VelocityX, row.VelocityY)
			if row.CanJump {
				grounded[i] = 1
			}
			if i > 0 {
				prev := entityRows[i-1]
				steps = append(steps, math.Hypot(row.X-prev.X, row.Y-prev.Y))
			}
		}
		stats = append(stats, Stats{
			EntityID:  id,
			Frames:    len(entityRows),
			Distance:  floats.Sum(steps),
			MeanSpeed: stat.Mean(speeds, nil),
			MaxSpeed:  floats.Max(speeds),
			Grounded:  stat.Mean(grounded, nil),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].EntityID < stats[j].EntityID
	})
	return stats
}
