package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"recipebox/internal/repository"
)

func TestRenderShoppingList(t *testing.T) {
	items := []repository.ShoppingItem{
		{Name: "flour", MeasurementUnit: "g", Amount: 300},
		{Name: "sugar", MeasurementUnit: "g", Amount: 150},
	}

	out := RenderShoppingList(items)

	assert.Contains(t, out, "Shopping list:")
	assert.Contains(t, out, "- flour (g): 300")
	assert.Contains(t, out, "- sugar (g): 150")
	assert.True(t, out[len(out)-1] == '\n')
}

func TestRenderShoppingList_SummedLineAppearsOnce(t *testing.T) {
	// Aggregation already merged duplicate ingredients upstream; the
	// renderer must print exactly one line per item.
	items := []repository.ShoppingItem{
		{Name: "sugar", MeasurementUnit: "g", Amount: 150},
	}

	out := RenderShoppingList(items)

	assert.Equal(t, "Shopping list:\n\n- sugar (g): 150\n", out)
}
