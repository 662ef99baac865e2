package shopify

// Raw catalog shapes decoded from the search_shop_catalog tool payload.

type catalogPayload struct {
	Products   []Record `json:"products"`
	Pagination struct {
		CurrentPage int  `json:"current_page"`
		HasNextPage bool `json:"has_next_page"`
	} `json:"pagination"`
}

// PriceRange is Shopify's min/max price block; values are decimal strings.
type PriceRange struct {
	Min      string `json:"min"`
	Max      string `json:"max"`
	Currency string `json:"currency"`
}

// Record is one raw global-catalog product.
type Record struct {
	ProductID   string     `json:"product_id"`
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PriceRange  PriceRange `json:"price_range"`
	Price       string     `json:"price"`
	URL         string     `json:"url"`
	ImageURL    string     `json:"image_url"`
	Vendor      string     `json:"vendor"`
	StoreName   string     `json:"store_name"`
	Rating      float64    `json:"rating"`
	ReviewCount int        `json:"review_count"`
}
