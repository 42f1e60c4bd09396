package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortProductsByPrice(t *testing.T) {
	products := []Product{
		{ID: "c", UnitPrice: 3000},
		{ID: "a", UnitPrice: 500},
		{ID: "b", UnitPrice: 1500},
	}

	SortProductsByPrice(products)

	assert.Equal(t, "a", products[0].ID)
	assert.Equal(t, "b", products[1].ID)
	assert.Equal(t, "c", products[2].ID)
}

func TestSortProductsByPrice_StableOnTies(t *testing.T) {
	products := []Product{
		{ID: "first", UnitPrice: 1000},
		{ID: "second", UnitPrice: 1000},
	}

	SortProductsByPrice(products)

	assert.Equal(t, "first", products[0].ID)
	assert.Equal(t, "second", products[1].ID)
}
