package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContributionTable_WeightOf(t *testing.T) {
	table := scenarioTable()

	assert.Equal(t, 50.0, table.WeightOf(CurrentCrop))
	assert.Equal(t, 30.0, table.WeightOf(PrevCrop1))
	assert.Equal(t, 15.0, table.WeightOf(PrevCrop2))
	assert.Equal(t, 5.0, table.WeightOf(PrevCrop3))
	assert.Equal(t, []float64{50, 30, 15, 5}, table.Weights())
	assert.Equal(t, 100.0, table.Total())
}

func TestContributionTable_MissingOffsetIsZero(t *testing.T) {
	table := NewContributionTable(map[CropOffset]float64{CurrentCrop: 70})

	assert.False(t, table.Has(PrevCrop2))
	assert.Equal(t, 0.0, table.WeightOf(PrevCrop2))
	assert.Equal(t, 0.0, table.WeightOf(CropOffset(9)))
	assert.Equal(t, []float64{70, 0, 0, 0}, table.Weights())

	var empty ContributionTable
	assert.Equal(t, 0.0, empty.WeightOf(CurrentCrop))
	assert.Equal(t, []float64{0, 0, 0, 0}, empty.Weights())
}

func TestContributionTable_IsImmutable(t *testing.T) {
	source := map[CropOffset]float64{CurrentCrop: 50}
	table := NewContributionTable(source)

	source[CurrentCrop] = 99
	source[PrevCrop1] = 10

	assert.Equal(t, 50.0, table.WeightOf(CurrentCrop))
	assert.False(t, table.Has(PrevCrop1))
}

func TestNewContributionTable_DropsInvalidOffsets(t *testing.T) {
	table := NewContributionTable(map[CropOffset]float64{
		CurrentCrop:    40,
		CropOffset(4):  20,
		CropOffset(-1): 5,
	})

	assert.Equal(t, 40.0, table.Total())
}

func TestContributionTableFromCategories(t *testing.T) {
	table, unknown := ContributionTableFromCategories(map[string]float64{
		"Current Crop":  45,
		" prev-1 crop ": 35,
		"PREV-3 CROP":   5,
		"Stockpile":     12,
		"Other":         1,
	})

	assert.Equal(t, []string{"Other", "Stockpile"}, unknown)
	assert.Equal(t, 45.0, table.WeightOf(CurrentCrop))
	assert.Equal(t, 35.0, table.WeightOf(PrevCrop1))
	assert.Equal(t, 0.0, table.WeightOf(PrevCrop2))
	assert.Equal(t, 5.0, table.WeightOf(PrevCrop3))
}

func TestContributionTableFromCategories_CaseCollision(t *testing.T) {
	for i := 0; i < 20; i++ {
		table, ignored := ContributionTableFromCategories(map[string]float64{
			"current crop": 10,
			"Current Crop": 50,
			"CURRENT CROP": 70,
			"Prev-1 Crop":  30,
		})

		assert.Equal(t, 70.0, table.WeightOf(CurrentCrop))
		assert.Equal(t, 30.0, table.WeightOf(PrevCrop1))
		assert.Equal(t, []string{"Current Crop", "current crop"}, ignored)
	}
}

func TestCropOffset_String(t *testing.T) {
	tests := []struct {
		offset   CropOffset
		expected string
	}{
		{CurrentCrop, "Current Crop"},
		{PrevCrop1, "Prev-1 Crop"},
		{PrevCrop2, "Prev-2 Crop"},
		{PrevCrop3, "Prev-3 Crop"},
		{CropOffset(7), "CropOffset(7)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.offset.String())
		})
	}
}

func TestParseCropOffset(t *testing.T) {
	offset, ok := ParseCropOffset("Prev-2 Crop")
	assert.True(t, ok)
	assert.Equal(t, PrevCrop2, offset)

	_, ok = ParseCropOffset("Prev-4 Crop")
	assert.False(t, ok)
}
