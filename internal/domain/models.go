package domain

// Domain contains the product list wire models shared across packages.

const (
	DefaultCurrentPage = 1
	DefaultPageSize    = 10
)

// QueryParameters selects the page requested from the product list endpoint.
type QueryParameters struct {
	CurrentPage int `json:"currentPage" validate:"gte=1"`
	PageSize    int `json:"pageSize" validate:"gte=1"`
}

// DefaultQueryParameters returns the first page with the default page size.
func DefaultQueryParameters() QueryParameters {
	return QueryParameters{
		CurrentPage: DefaultCurrentPage,
		PageSize:    DefaultPageSize,
	}
}

// ProductListRequest is the body posted to the product list endpoint.
type ProductListRequest struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}

// NewProductListRequest maps query parameters onto the request body as-is.
func NewProductListRequest(q QueryParameters) ProductListRequest {
	return ProductListRequest{
		CurrentPage: q.CurrentPage,
		PageSize:    q.PageSize,
	}
}

// ProductRecord is one product entry. The fields are opaque text.
// "heightlight" is the spelling used on the wire.
type ProductRecord struct {
	UserID          string `json:"user_id"`
	RequestID       string `json:"request_id"`
	Name            string `json:"name"`
	Highlight       string `json:"heightlight"`
	ImagePath       string `json:"image_path"`
	InstructionPath string `json:"instruction_path"`
	DeparturePlace  string `json:"departure_place"`
	DeliveryCompany string `json:"delivery_company"`
}

// ProductPage is one page of products in server order.
type ProductPage struct {
	Items       []ProductRecord `json:"product"`
	CurrentPage int             `json:"current"`
	PageSize    int             `json:"pageSize"`
	TotalSize   int             `json:"totalSize"`
}

// TotalPages returns how many pages TotalSize spans at PageSize.
func (p ProductPage) TotalPages() int {
	if p.PageSize <= 0 || p.TotalSize <= 0 {
		return 0
	}
	return (p.TotalSize + p.PageSize - 1) / p.PageSize
}

// Envelope wraps every backend response. Only an explicit state of 0 is a success;
// the client rejects envelopes whose state is missing or null before building one.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	State   int    `json:"state"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ProductListResponse is the envelope returned by the product list endpoint.
type ProductListResponse = Envelope[ProductPage]
