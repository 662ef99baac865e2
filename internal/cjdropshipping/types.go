package cjdropshipping

// Raw shapes of the CJ Dropshipping API (api2.0). Auth is a custom
// email/apiKey exchange; search responses wrap a paged list.

type authResponse struct {
	Code    int    `json:"code"`
	Result  bool   `json:"result"`
	Message string `json:"message"`
	Data    struct {
		AccessToken           string `json:"accessToken"`
		AccessTokenExpiryDate string `json:"accessTokenExpiryDate"`
		RefreshToken          string `json:"refreshToken"`
	} `json:"data"`
}

type searchResponse struct {
	Code    int    `json:"code"`
	Result  bool   `json:"result"`
	Message string `json:"message"`
	Data    struct {
		PageNum  int      `json:"pageNum"`
		PageSize int      `json:"pageSize"`
		Total    int      `json:"total"`
		List     []Record `json:"list"`
	} `json:"data"`
}

// Record is one raw CJ product listing. SellPrice can be a plain number or
// a range string ("2.99 -- 5.43"), so it stays textual here.
type Record struct {
	Pid           string  `json:"pid"`
	ProductName   string  `json:"productName"`
	ProductNameEn string  `json:"productNameEn"`
	ProductSku    string  `json:"productSku"`
	SellPrice     string  `json:"sellPrice"`
	ProductImage  string  `json:"productImage"`
	ProductUnit   string  `json:"productUnit"`
	CategoryName  string  `json:"categoryName"`
	SupplierName  string  `json:"supplierName"`
	SourceFrom    int     `json:"sourceFrom"`
	ListedNum     int     `json:"listedNum"`
	ProductWeight float64 `json:"productWeight"`
	Remark        string  `json:"remark"`
}
