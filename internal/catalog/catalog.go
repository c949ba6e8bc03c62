package catalog

import (
	"fmt"
	"strings"

	"github.com/nikolayk812/foodie/internal/domain"
	"golang.org/x/text/cases"
)

// Catalog is an immutable, ordered snapshot of the menu.
type Catalog struct {
	items []domain.MenuItem
	byID  map[int64]int
}

func New(items []domain.MenuItem) (*Catalog, error) {
	c := &Catalog{
		items: make([]domain.MenuItem, 0, len(items)),
		byID:  make(map[int64]int, len(items)),
	}

	for _, item := range items {
		if _, dup := c.byID[item.ID]; dup {
			return nil, fmt.Errorf("item[%d] is duplicated", item.ID)
		}
		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}

	return c, nil
}

func Empty() *Catalog {
	c, _ := New(nil)
	return c
}

func (c *Catalog) Item(id int64) (domain.MenuItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.MenuItem{}, false
	}
	return c.items[i], true
}

func (c *Catalog) Items() []domain.MenuItem {
	out := make([]domain.MenuItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Len() int {
	return len(c.items)
}

// Filter returns items of the category (CategoryAll matches everything) whose name,
// description or category contains query, ignoring case. Menu order is preserved.
func (c *Catalog) Filter(category domain.Category, query string) []domain.MenuItem {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(query))

	out := make([]domain.MenuItem, 0, len(c.items))
	for _, item := range c.items {
		if category != domain.CategoryAll && item.Category != category {
			continue
		}
		if needle != "" && !matches(fold, item, needle) {
			continue
		}
		out = append(out, item)
	}

	return out
}

func matches(fold cases.Caser, item domain.MenuItem, needle string) bool {
	for _, field := range []string{item.Name, item.Description, string(item.Category)} {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}
