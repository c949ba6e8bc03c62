package domain

// CartLine is one (item, quantity) pairing. Quantity is always >= 1 while the line exists.
type CartLine struct {
	ItemID   int64
	Quantity int
}

// SnapshotLine is a cart line resolved against the catalog.
type SnapshotLine struct {
	Item     MenuItem
	Quantity int
}

func (l SnapshotLine) LineTotal() Money {
	return l.Item.Price.Mul(l.Quantity)
}

// CartSnapshot is a read-only ordered view of a cart.
type CartSnapshot struct {
	Lines []SnapshotLine
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// ItemCount is the sum of all quantities.
func (s CartSnapshot) ItemCount() int {
	var n int
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

func (s CartSnapshot) Quantity(itemID int64) int {
	for _, l := range s.Lines {
		if l.Item.ID == itemID {
			return l.Quantity
		}
	}
	return 0
}
