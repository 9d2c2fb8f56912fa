package types

// InvoiceFilter scopes invoice listings. CompanyID is set by the service from
// the caller's authorization context and is never bound from the request.
type InvoiceFilter struct {
	*QueryFilter
	CompanyID string `json:"-" form:"-"`
	DeviceID  string `json:"device_id,omitempty" form:"device_id"`

	// InvoiceNumber looks up the invoice printed with this number
	InvoiceNumber string `json:"invoice_number,omitempty" form:"invoice_number"`
}

// NewInvoiceFilter creates a new invoice filter with default options
func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func (f *InvoiceFilter) Validate() error {
	if f == nil || f.QueryFilter == nil {
		return nil
	}
	return f.QueryFilter.Validate()
}

func (f *InvoiceFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_LIMIT
	}
	return f.QueryFilter.GetLimit()
}

func (f *InvoiceFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return 0
	}
	return f.QueryFilter.GetOffset()
}
