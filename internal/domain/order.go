package domain

// OrderRequest is the inbound payload for placing a COD order.
// It is transient: built per HTTP call, never persisted.
type OrderRequest struct {
	Shop      string `json:"shop"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address"`
	Landmark  string `json:"landmark,omitempty"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
	VariantID int64  `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// MissingFields returns the names of required fields that are empty.
func (r *OrderRequest) MissingFields() []string {
	var missing []string
	required := []struct {
		name  string
		empty bool
	}{
		{"shop", r.Shop == ""},
		{"name", r.Name == ""},
		{"phone", r.Phone == ""},
		{"address", r.Address == ""},
		{"city", r.City == ""},
		{"province", r.Province == ""},
		{"zip", r.Zip == ""},
		{"variantId", r.VariantID == 0},
		{"quantity", r.Quantity == 0},
	}
	for _, f := range required {
		if f.empty {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// LineItem is a single variant/quantity entry on a draft or order.
type LineItem struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

// Address mirrors the Shopify mailing address shape used for both
// shipping and billing.
type Address struct {
	FirstName string `json:"first_name"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone,omitempty"`
}

// Customer is the subset of the Shopify customer resource this app touches.
type Customer struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Tags      string `json:"tags,omitempty"`
}

// DraftOrderInput is the payload sent to the draft-order creation endpoint.
type DraftOrderInput struct {
	LineItems                 []LineItem `json:"line_items"`
	Email                     string     `json:"email,omitempty"`
	Phone                     string     `json:"phone,omitempty"`
	Customer                  *Customer  `json:"customer,omitempty"`
	ShippingAddress           *Address   `json:"shipping_address,omitempty"`
	BillingAddress            *Address   `json:"billing_address,omitempty"`
	Tags                      string     `json:"tags,omitempty"`
	Note                      string     `json:"note,omitempty"`
	UseCustomerDefaultAddress bool       `json:"use_customer_default_address"`
}

// DraftOrder is the provisional order the platform assigns before completion.
// It only lives for the duration of one workflow invocation.
type DraftOrder struct {
	ID         int64  `json:"id"`
	InvoiceURL string `json:"invoice_url,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Order is the terminal artifact the workflow must locate and return.
type Order struct {
	ID             int64      `json:"id"`
	OrderNumber    int64      `json:"order_number,omitempty"`
	OrderStatusURL string     `json:"order_status_url,omitempty"`
	Tags           string     `json:"tags,omitempty"`
	Note           string     `json:"note,omitempty"`
	Email          string     `json:"email,omitempty"`
	LineItems      []LineItem `json:"line_items,omitempty"`
}

// CompletionState distinguishes the outcomes of the draft completion call.
type CompletionState int

const (
	// Completed means the platform returned the finalized order.
	Completed CompletionState = iota
	// UnknownOrAlreadyCompleted means the call was rejected or returned no
	// order payload; the draft may or may not have become an order.
	UnknownOrAlreadyCompleted
)

// Completion is the typed result of attempting to finalize a draft order.
// A rejected completion call is a state transition, not an error.
type Completion struct {
	State CompletionState
	Order *Order
}

// Placement is the terminal result of the COD order workflow. Confirmed
// distinguishes a resolved order from the draft-reference fallback; the two
// are never collapsed into each other.
type Placement struct {
	Confirmed   bool
	OrderID     int64
	OrderNumber int64
	StatusURL   string
	DraftID     int64
	InvoiceURL  string
}
