package ports

import (
	"context"

	"trazoo-cod-gateway/internal/domain"
)

// AdminAPI is the authenticated surface of the commerce platform's Admin API
// used by the COD workflow. Implementations carry the shop-scoped access
// token in request headers and fail with *domain.UpstreamError on any
// non-2xx response or transport failure. No call retries; retry policy, if
// any, belongs to the caller.
type AdminAPI interface {
	// CreateDraftOrder submits a provisional order.
	CreateDraftOrder(ctx context.Context, shop, token string, draft *domain.DraftOrderInput) (*domain.DraftOrder, error)

	// CompleteDraftOrder finalizes a draft into a payable-on-delivery order
	// with payment marked pending. The platform may accept the completion
	// and still respond without an embedded order payload, in which case
	// both return values are nil.
	CompleteDraftOrder(ctx context.Context, shop, token string, draftID int64) (*domain.Order, error)

	// ListRecentOrders returns the most recently created orders, any status,
	// newest first, bounded by limit.
	ListRecentOrders(ctx context.Context, shop, token string, limit int) ([]domain.Order, error)

	// GetOrder fetches a single order by id with the fields the workflow
	// needs to build a customer-facing reference.
	GetOrder(ctx context.Context, shop, token string, orderID int64) (*domain.Order, error)

	// SearchCustomersByEmail looks up customers whose email matches exactly.
	SearchCustomersByEmail(ctx context.Context, shop, token, email string) ([]domain.Customer, error)

	// CreateCustomer creates a customer record.
	CreateCustomer(ctx context.Context, shop, token string, customer *domain.Customer) (*domain.Customer, error)

	// CustomerOrders lists a customer's orders, newest first.
	CustomerOrders(ctx context.Context, shop, token string, customerID int64) ([]domain.Order, error)

	// CreateOrderGraphQL creates an order directly through the GraphQL
	// orderCreate mutation, the alternative path to draft-and-complete.
	CreateOrderGraphQL(ctx context.Context, shop, token string, input *domain.DraftOrderInput) (*domain.Order, error)

	// FindCustomerGraphQL looks up a customer by email through the GraphQL
	// customers query.
	FindCustomerGraphQL(ctx context.Context, shop, token, email string) (*domain.Customer, error)
}

// Geocoder provides address autocomplete suggestions from a third-party
// geocoding API. The raw upstream payload is forwarded to the caller.
type Geocoder interface {
	Autocomplete(ctx context.Context, query string) ([]byte, error)
}
