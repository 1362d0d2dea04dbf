package recipe

import (
	"fmt"
	"strings"

	"recipebox/internal/repository"
)

// RenderShoppingList formats aggregated items as the plain-text file
// served by the download endpoint.
func RenderShoppingList(items []repository.ShoppingItem) string {
	var b strings.Builder
	b.WriteString("Shopping list:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "\n- %s (%s): %d", item.Name, item.MeasurementUnit, item.Amount)
	}
	b.WriteString("\n")
	return b.String()
}
