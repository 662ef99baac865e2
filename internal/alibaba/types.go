package alibaba

// Raw shapes of the Alibaba open-platform product search API. Field coverage
// is intentionally loose: records frequently omit or rename fields, and the
// mapper resolves the aliases.

type searchResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TotalCount int      `json:"totalCount"`
		Products   []Record `json:"products"`
	} `json:"data"`
}

// PriceInfo carries Alibaba's price block; Price is free-form text and may
// be a range like "US $1.20-3.40".
type PriceInfo struct {
	Price    string `json:"price"`
	Currency string `json:"currency"`
}

// Record is one raw Alibaba product listing.
type Record struct {
	ProductID        string    `json:"productId"`
	Subject          string    `json:"subject"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	PriceInfo        PriceInfo `json:"priceInfo"`
	Price            string    `json:"price"`
	ImageURL         string    `json:"imageUrl"`
	MainImage        string    `json:"mainImage"`
	MOQ              string    `json:"moq"`
	MinOrderQuantity string    `json:"minOrderQuantity"`
	CompanyName      string    `json:"companyName"`
	SupplierName     string    `json:"supplierName"`
	DetailURL        string    `json:"detailUrl"`
	Evaluation       float64   `json:"evaluation"`
	ReviewCount      int       `json:"reviewCount"`
}
