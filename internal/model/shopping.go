package model

import "fmt"

// CartLine is one ingredient line of a recipe in a user's cart.
type CartLine struct {
	RecipeID        int64
	IngredientID    int64
	Name            string
	MeasurementUnit string
	Amount          int
}

// ShoppingItem is an ingredient with its amount summed across the cart.
type ShoppingItem struct {
	IngredientID    int64  `json:"id"`
	Name            string `json:"name"`
	Amount          int64  `json:"amount"`
	MeasurementUnit string `json:"measurement_unit"`
}

// String renders the item as a shopping list line.
func (i ShoppingItem) String() string {
	return fmt.Sprintf("%s - %d %s.", i.Name, i.Amount, i.MeasurementUnit)
}
