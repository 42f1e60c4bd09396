package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupCartLines_MergesDuplicates(t *testing.T) {
	lines := []CartLine{
		{ProductID: "prod_a", Quantity: 2},
		{ProductID: "prod_b", Quantity: 1},
		{ProductID: "prod_a", Quantity: 3},
	}

	grouped := GroupCartLines(lines)

	assert.Equal(t, []CartLine{
		{ProductID: "prod_a", Quantity: 5},
		{ProductID: "prod_b", Quantity: 1},
	}, grouped)
}

func TestGroupCartLines_PreservesFirstSeenOrder(t *testing.T) {
	lines := []CartLine{
		{ProductID: "prod_c", Quantity: 1},
		{ProductID: "prod_a", Quantity: 1},
		{ProductID: "prod_b", Quantity: 1},
		{ProductID: "prod_a", Quantity: 1},
	}

	grouped := GroupCartLines(lines)

	assert.Len(t, grouped, 3)
	assert.Equal(t, "prod_c", grouped[0].ProductID)
	assert.Equal(t, "prod_a", grouped[1].ProductID)
	assert.Equal(t, "prod_b", grouped[2].ProductID)
}

func TestGroupCartLines_Empty(t *testing.T) {
	assert.Empty(t, GroupCartLines(nil))
}
