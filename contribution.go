package main

import (
	"fmt"
	"sort"
	"strings"
)

// CropOffset is how many years a harvest precedes the export year.
type CropOffset int

const (
	CurrentCrop CropOffset = iota
	PrevCrop1
	PrevCrop2
	PrevCrop3
)

// MaxCropOffset is the oldest harvest that still contributes to exports.
const MaxCropOffset = PrevCrop3

var cropOffsetLabels = [...]string{
	CurrentCrop: "Current Crop",
	PrevCrop1:   "Prev-1 Crop",
	PrevCrop2:   "Prev-2 Crop",
	PrevCrop3:   "Prev-3 Crop",
}

func (o CropOffset) Valid() bool {
	return o >= CurrentCrop && o <= MaxCropOffset
}

// String returns the category label used in the trend workbook.
func (o CropOffset) String() string {
	if !o.Valid() {
		return fmt.Sprintf("CropOffset(%d)", int(o))
	}
	return cropOffsetLabels[o]
}

// CropOffsets lists every contributing offset, current crop first.
func CropOffsets() []CropOffset {
	return []CropOffset{CurrentCrop, PrevCrop1, PrevCrop2, PrevCrop3}
}

// ParseCropOffset maps a trend category label to its offset. Matching
// ignores case and surrounding whitespace.
func ParseCropOffset(label string) (CropOffset, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	for i, l := range cropOffsetLabels {
		if strings.ToLower(l) == normalized {
			return CropOffset(i), true
		}
	}
	return 0, false
}

// ContributionTable holds the percentage of a harvest exported in each
// of the following years. It is immutable once built.
// An offset missing from the table has weight 0.
type ContributionTable struct {
	weights map[CropOffset]float64
}

// NewContributionTable copies weights. Offsets outside CropOffsets() are
// dropped.
func NewContributionTable(weights map[CropOffset]float64) ContributionTable {
	t := ContributionTable{weights: make(map[CropOffset]float64, len(weights))}
	for offset, pct := range weights {
		if offset.Valid() {
			t.weights[offset] = pct
		}
	}
	return t
}

// ContributionTableFromCategories builds a table from label/percentage
// pairs as they appear in the trend workbook. Labels are taken in sorted
// order; when two labels name the same offset ("Current Crop" and
// "current crop") the first one wins. Labels that were not used, unknown
// or colliding, are returned sorted so the caller can report them.
func ContributionTableFromCategories(categories map[string]float64) (ContributionTable, []string) {
	labels := make([]string, 0, len(categories))
	for label := range categories {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	weights := make(map[CropOffset]float64, len(categories))
	var ignored []string
	for _, label := range labels {
		offset, ok := ParseCropOffset(label)
		if !ok {
			ignored = append(ignored, label)
			continue
		}
		if _, taken := weights[offset]; taken {
			ignored = append(ignored, label)
			continue
		}
		weights[offset] = categories[label]
	}
	return NewContributionTable(weights), ignored
}

// WeightOf returns the percentage for offset, or 0 when the table has no
// entry for it.
func (t ContributionTable) WeightOf(offset CropOffset) float64 {
	return t.weights[offset]
}

// Has reports whether the table carries an explicit entry for offset.
func (t ContributionTable) Has(offset CropOffset) bool {
	_, ok := t.weights[offset]
	return ok
}

// Weights returns the percentages indexed by offset.
func (t ContributionTable) Weights() []float64 {
	out := make([]float64, MaxCropOffset+1)
	for _, offset := range CropOffsets() {
		out[offset] = t.WeightOf(offset)
	}
	return out
}

// Total is the sum of all percentages. It is informational only; tables
// are not required to sum to 100.
func (t ContributionTable) Total() float64 {
	total := 0.0
	for _, pct := range t.weights {
		total += pct
	}
	return total
}
