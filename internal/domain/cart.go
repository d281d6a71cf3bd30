package domain

const (
	// MaxQuantityPerLine caps the quantity a single cart line may hold.
	MaxQuantityPerLine = 100
	// MaxLinesPerCart caps the number of distinct lines in one cart.
	MaxLinesPerCart = 50
)

// CartItem is one line of a cart. Line identity is the pair
// (Product.ID, Size): the same product in two sizes occupies two lines.
type CartItem struct {
	Product  Product  `json:"product"`
	Quantity int      `json:"quantity"`
	Size     *float64 `json:"size,omitempty"`
}

// LineTotal returns the raw price times quantity for this line, ignoring
// product discounts.
func (i *CartItem) LineTotal() int64 {
	return i.Product.Price * int64(i.Quantity)
}

// DiscountedLineTotal returns the discount-adjusted price times quantity.
func (i *CartItem) DiscountedLineTotal() int64 {
	return i.Product.DiscountedPrice() * int64(i.Quantity)
}

// Cart is a session's shopping cart. Ordering of Items is insertion order
// and is preserved across persistence round trips.
type Cart struct {
	SessionID string     `json:"session_id"`
	Currency  string     `json:"currency"`
	Items     []CartItem `json:"items"`
}

// NewCart returns an empty cart for the given session.
func NewCart(sessionID, currency string) *Cart {
	return &Cart{SessionID: sessionID, Currency: currency, Items: []CartItem{}}
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount returns the sum of quantities across all lines. This is the
// number shown on the cart badge.
func (c *Cart) ItemCount() int {
	var n int
	for i := range c.Items {
		n += c.Items[i].Quantity
	}
	return n
}

// TotalAmount returns the sum of raw line totals, before product discounts.
// The cart view shows this figure; checkout uses DiscountedSubtotal, so the
// two can legitimately differ for carts holding discounted products.
func (c *Cart) TotalAmount() int64 {
	var total int64
	for i := range c.Items {
		total += c.Items[i].LineTotal()
	}
	return total
}

// DiscountedSubtotal returns the sum of discount-adjusted line totals. This
// is the subtotal checkout quoting starts from.
func (c *Cart) DiscountedSubtotal() int64 {
	var total int64
	for i := range c.Items {
		total += c.Items[i].DiscountedLineTotal()
	}
	return total
}

// FindItemIndex returns the index of the line matching (productID, size),
// or -1 when no such line exists.
func (c *Cart) FindItemIndex(productID int64, size *float64) int {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID && sameSize(c.Items[i].Size, size) {
			return i
		}
	}
	return -1
}

// RemoveItemAt deletes the line at index i, preserving the order of the
// remaining lines.
func (c *Cart) RemoveItemAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

func sameSize(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
