package domain

// Product is the storefront's view of a catalog product, as returned by the
// commerce backend. Prices are integer bani (hundredths of a RON).
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"imageUrl,omitempty"`
	CategoryID  int64  `json:"categoryId,omitempty"`
	Stock       int    `json:"stock,omitempty"`
}

// Category is a product category from the commerce backend.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CartItem is a single line in a shopping cart, keyed by product ID.
type CartItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Cart holds the line items for one storefront session.
type Cart struct {
	Items []CartItem `json:"items"`
}

// TotalItems returns the sum of quantities across all lines.
func (c *Cart) TotalItems() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// TotalPrice returns the sum of price times quantity across all lines, in bani.
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// FindItemIndex returns the index of the line with the given product ID,
// or -1 if the product is not in the cart.
func (c *Cart) FindItemIndex(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ID == productID {
			return i
		}
	}
	return -1
}
