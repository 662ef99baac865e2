package madeinchina

// Raw shapes of the Made-in-China open API product search.

type searchResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Result  struct {
		Total int      `json:"total"`
		Items []Record `json:"items"`
	} `json:"result"`
}

// Record is one raw Made-in-China listing. Prices arrive numeric, MOQ as
// free-form text ("100 Pieces"), supplier under either company or vendor.
type Record struct {
	ItemID      string  `json:"itemId"`
	ProductName string  `json:"productName"`
	Brief       string  `json:"brief"`
	UnitPrice   float64 `json:"unitPrice"`
	Currency    string  `json:"currency"`
	PicURL      string  `json:"picUrl"`
	MinOrder    string  `json:"minOrder"`
	Company     string  `json:"company"`
	Vendor      string  `json:"vendor"`
	ProductURL  string  `json:"productUrl"`
	StarRating  float64 `json:"starRating"`
	ReviewNum   int     `json:"reviewNum"`
}
