// Package metrics derives grain statistics from a label map and carbon
// content from raw intensities.
package metrics

import (
	"math"
	"slices"

	"grainscope/internal/models"
)

// ASTM E112 planimetric approximation: G = 3.322*log10(Na) - 2.95.
const (
	astmSlope     = 3.322
	astmIntercept = 2.95
)

// CountAndAreas returns the number of distinct non-zero labels and the pixel
// count of each, in ascending label order. Label 0 is excluded wherever it
// appears; a map without it counts every label.
func CountAndAreas(labels *models.LabelMap) (int, []int, error) {
	if err := labels.Validate("count and areas"); err != nil {
		return 0, nil, err
	}

	counts := make(map[int32]int)
	for _, l := range labels.Labels {
		counts[l]++
	}

	ids := make([]int32, 0, len(counts))
	for id := range counts {
		if id == 0 {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)

	areas := make([]int, len(ids))
	for i, id := range ids {
		areas[i] = counts[id]
	}
	return len(ids), areas, nil
}

// GrainSizeNumber returns the ASTM grain-size number for count grains over
// referenceAreaMM2. It returns 0 when the area is not positive or no grains
// were found; callers that must tell those cases apart use Record.Degenerate.
func GrainSizeNumber(count int, referenceAreaMM2 float64) float64 {
	if referenceAreaMM2 <= 0 || count == 0 {
		return 0
	}
	na := float64(count) / referenceAreaMM2
	return astmSlope*math.Log10(na) - astmIntercept
}
