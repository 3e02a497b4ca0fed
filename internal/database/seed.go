package database

import (
	"context"
	"fmt"
)

// SeedMenu is the café's starting menu. Prices are in minor currency units.
var SeedMenu = []CreateMenuItemParams{
	{
		Name:        "Classic croissant",
		Description: "Flaky butter pastry made to a French recipe. Per 100g: 280 kcal, protein 5g, fat 14g, carbs 32g",
		Price:       250,
		Category:    "Pastry",
		ImageURL:    "https://images.unsplash.com/photo-1485963631004-f2f00b1d6606",
		Available:   true,
	},
	{
		Name:        "Avocado toast",
		Description: "Sourdough bread with ripe avocado mash. Per 100g: 220 kcal, protein 6g, fat 12g, carbs 25g",
		Price:       290,
		Category:    "Breakfast",
		ImageURL:    "https://images.unsplash.com/photo-1494390248081-4e521a5940db",
		Available:   true,
	},
	{
		Name:        "Cappuccino",
		Description: "Espresso with soft milk foam. Per 100ml: 65 kcal, protein 3g, fat 3.5g, carbs 6g",
		Price:       220,
		Category:    "Drinks",
		ImageURL:    "https://images.unsplash.com/photo-1447078806655-40579c2520d6",
		Available:   true,
	},
	{
		Name:        "Greek salad",
		Description: "Fresh vegetables, olives and feta with olive oil. Per 100g: 160 kcal, protein 4g, fat 14g, carbs 7g",
		Price:       280,
		Category:    "Salads",
		ImageURL:    "https://images.unsplash.com/photo-1540189549336-e6e99c3679fe",
		Available:   true,
	},
	{
		Name:        "Mushroom cream soup",
		Description: "Smooth champignon soup with cream. Per 100g: 95 kcal, protein 3g, fat 6g, carbs 8g",
		Price:       260,
		Category:    "Soups",
		ImageURL:    "https://images.unsplash.com/photo-1547592166-23ac45744acd",
		Available:   true,
	},
	{
		Name:        "Chicken Caesar",
		Description: "Classic salad with chicken fillet and Caesar dressing. Per 100g: 210 kcal, protein 14g, fat 16g, carbs 8g",
		Price:       310,
		Category:    "Salads",
		ImageURL:    "https://images.unsplash.com/photo-1550304943-4f24f54ddde9",
		Available:   true,
	},
	{
		Name:        "Borscht",
		Description: "Traditional beet soup with sour cream and herbs. Per 100g: 85 kcal, protein 4g, fat 3.5g, carbs 11g",
		Price:       270,
		Category:    "Soups",
		ImageURL:    "https://images.unsplash.com/photo-1594756202469-9ff9799b2e4e",
		Available:   true,
	},
	{
		Name:        "Americano",
		Description: "Classic black coffee. Per 100ml: 10 kcal, protein 0.1g, fat 0.1g, carbs 0g",
		Price:       180,
		Category:    "Drinks",
		ImageURL:    "https://images.unsplash.com/photo-1514432324607-a09d9b4aefdd",
		Available:   true,
	},
	{
		Name:        "Pancakes",
		Description: "Fluffy pancakes with maple syrup and berries. Per 100g: 250 kcal, protein 6g, fat 9g, carbs 38g",
		Price:       240,
		Category:    "Breakfast",
		ImageURL:    "https://images.unsplash.com/photo-1528207776546-365bb710ee93",
		Available:   true,
	},
	{
		Name:        "Cheesecake",
		Description: "Cream cheese dessert with berry sauce. Per 100g: 320 kcal, protein 7g, fat 23g, carbs 26g",
		Price:       230,
		Category:    "Desserts",
		ImageURL:    "https://images.unsplash.com/photo-1524351199678-941a58a3df50",
		Available:   true,
	},
}

// Seed inserts SeedMenu when the menu is empty. It returns the number of
// items created.
func Seed(ctx context.Context, q Querier) (int, error) {
	existing, err := q.ListMenuItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("list menu items: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, item := range SeedMenu {
		if _, err := q.CreateMenuItem(ctx, item); err != nil {
			return i, fmt.Errorf("create menu item %q: %w", item.Name, err)
		}
	}
	return len(SeedMenu), nil
}
