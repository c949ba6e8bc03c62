package domain

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryAppetizers Category = "appetizers"
	CategoryMain       Category = "main"
	CategoryGrill      Category = "grill"
	CategorySides      Category = "sides"
	CategoryDrinks     Category = "drinks"

	// CategoryAll is a filter value, never assigned to an item.
	CategoryAll Category = "all"
)

func Categories() []Category {
	return []Category{CategoryAppetizers, CategoryMain, CategoryGrill, CategorySides, CategoryDrinks}
}

func (c Category) IsValid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory accepts any known category or "all". An empty string means "all".
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" || c == CategoryAll {
		return CategoryAll, nil
	}
	if !c.IsValid() {
		return "", fmt.Errorf("category[%s] is not valid", s)
	}
	return c, nil
}

type MenuItem struct {
	ID          int64
	Name        string
	Category    Category
	Price       Money
	Description string
	Rating      float64
	PrepTime    string
	ImageURL    string
}
