package application

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"trazoo-cod-gateway/internal/config"
	"trazoo-cod-gateway/internal/domain"
	"trazoo-cod-gateway/internal/ports"

	"github.com/rs/zerolog"
)

const (
	// codTag and codNote mark orders created through this gateway so the
	// reconciliation search can recognize them.
	codTag  = "COD"
	codNote = "COD Draft Order"

	// recentOrdersLimit bounds the reconciliation listing.
	recentOrdersLimit = 20
)

// OrderService orchestrates the COD order placement workflow: draft
// creation, completion, and the fallback search that guarantees the caller
// gets a usable order reference or an explicit typed failure.
type OrderService struct {
	credentials ports.CredentialStore
	admin       ports.AdminAPI
	logger      zerolog.Logger
	country     string
	emailDomain string
	mode        string
}

// NewOrderService creates the COD order service.
func NewOrderService(
	credentials ports.CredentialStore,
	admin ports.AdminAPI,
	logger zerolog.Logger,
	country string,
	emailDomain string,
	mode string,
) *OrderService {
	return &OrderService{
		credentials: credentials,
		admin:       admin,
		logger:      logger,
		country:     country,
		emailDomain: emailDomain,
		mode:        mode,
	}
}

// NormalizePhone strips a phone number down to its digits. Normalizing an
// already-normalized number yields the same digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PlaceholderEmail derives a deterministic synthetic email from normalized
// phone digits. It is never a real contact channel; upstream customer and
// order creation require an email, this guarantees one exists.
func PlaceholderEmail(phoneDigits, domain string) string {
	return fmt.Sprintf("cod-%s@%s", phoneDigits, domain)
}

// PlaceOrder runs one single-attempt invocation of the workflow. Validation
// and authorization fail before any network call; after a draft exists,
// completion, reconciliation and the status-URL lookup are each best effort.
// A partial failure can leave an orphaned draft upstream; nothing is
// retried automatically.
func (s *OrderService) PlaceOrder(ctx context.Context, req *domain.OrderRequest) (*domain.Placement, error) {
	if missing := req.MissingFields(); len(missing) > 0 {
		return nil, &domain.ValidationError{Fields: missing}
	}

	token, err := s.credentials.Get(ctx, req.Shop)
	if err != nil {
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}
	if token == "" {
		return nil, &domain.AuthorizationError{Shop: req.Shop}
	}

	phoneDigits := NormalizePhone(req.Phone)
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = PlaceholderEmail(phoneDigits, s.emailDomain)
	}

	// The normalized digits go on the customer record for matching; the
	// address keeps the phone as the customer typed it.
	address := &domain.Address{
		FirstName: req.Name,
		Address1:  req.Address,
		Address2:  req.Landmark,
		City:      req.City,
		Province:  req.Province,
		Zip:       req.Zip,
		Country:   s.country,
		Phone:     req.Phone,
	}
	draft := &domain.DraftOrderInput{
		LineItems: []domain.LineItem{{VariantID: req.VariantID, Quantity: req.Quantity}},
		Email:     email,
		Phone:     phoneDigits,
		Customer: &domain.Customer{
			FirstName: req.Name,
			Phone:     phoneDigits,
			Email:     email,
		},
		ShippingAddress:           address,
		BillingAddress:            address,
		Tags:                      codTag,
		Note:                      codNote,
		UseCustomerDefaultAddress: false,
	}

	if s.mode == config.OrderModeGraphQL {
		return s.placeDirect(ctx, req, token, draft)
	}
	return s.placeViaDraft(ctx, req, token, email, draft)
}

// placeViaDraft is the canonical REST path: draft create, complete,
// reconcile, resolve status URL.
func (s *OrderService) placeViaDraft(ctx context.Context, req *domain.OrderRequest, token, email string, input *domain.DraftOrderInput) (*domain.Placement, error) {
	draft, err := s.admin.CreateDraftOrder(ctx, req.Shop, token, input)
	if err != nil {
		return nil, &domain.OrderCreationError{Err: err}
	}
	if draft == nil || draft.ID == 0 {
		return nil, &domain.OrderCreationError{Err: fmt.Errorf("upstream returned no draft id")}
	}

	completion := s.completeDraft(ctx, req.Shop, token, draft.ID)

	var order *domain.Order
	switch completion.State {
	case domain.Completed:
		order = completion.Order
	case domain.UnknownOrAlreadyCompleted:
		order = s.reconcile(ctx, req, token, email)
	}

	if order == nil {
		s.logger.Warn().
			Str("shop", req.Shop).
			Int64("draft_id", draft.ID).
			Msg("No order located after completion; returning draft reference")
		return &domain.Placement{
			Confirmed:  false,
			DraftID:    draft.ID,
			InvoiceURL: draft.InvoiceURL,
		}, nil
	}

	order = s.resolveStatusURL(ctx, req.Shop, token, order)

	statusURL := order.OrderStatusURL
	if statusURL == "" {
		statusURL = draft.InvoiceURL
	}
	return &domain.Placement{
		Confirmed:   true,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		StatusURL:   statusURL,
		DraftID:     draft.ID,
		InvoiceURL:  draft.InvoiceURL,
	}, nil
}

// completeDraft finalizes the draft with payment pending. The upstream may
// reject the call (draft already completed by a duplicate invocation) or
// accept it without returning an order reference; both collapse into the
// UnknownOrAlreadyCompleted state and the workflow proceeds to
// reconciliation.
func (s *OrderService) completeDraft(ctx context.Context, shop, token string, draftID int64) domain.Completion {
	order, err := s.admin.CompleteDraftOrder(ctx, shop, token, draftID)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("shop", shop).
			Int64("draft_id", draftID).
			Msg("Draft completion did not return a definitive result")
		return domain.Completion{State: domain.UnknownOrAlreadyCompleted}
	}
	if order == nil {
		return domain.Completion{State: domain.UnknownOrAlreadyCompleted}
	}
	return domain.Completion{State: domain.Completed, Order: order}
}

// reconcile locates the order the completed draft should have produced:
// first through the customer's own recent orders, then through the shop-wide
// recent-orders listing filtered by the COD markers. Every step is best
// effort.
func (s *OrderService) reconcile(ctx context.Context, req *domain.OrderRequest, token, email string) *domain.Order {
	mctx := MatchContext{
		Tag:       codTag,
		Note:      codNote,
		Email:     email,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	}

	if order := s.searchCustomerOrders(ctx, req.Shop, token, email, mctx); order != nil {
		return order
	}

	candidates, err := s.admin.ListRecentOrders(ctx, req.Shop, token, recentOrdersLimit)
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", req.Shop).Msg("Recent-orders listing failed during reconciliation")
		return nil
	}
	return MatchOrder(candidates, mctx)
}

func (s *OrderService) searchCustomerOrders(ctx context.Context, shop, token, email string, mctx MatchContext) *domain.Order {
	customers, err := s.admin.SearchCustomersByEmail(ctx, shop, token, email)
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Customer search failed during reconciliation")
		return nil
	}
	if len(customers) == 0 || customers[0].ID == 0 {
		return nil
	}

	orders, err := s.admin.CustomerOrders(ctx, shop, token, customers[0].ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Customer order lookup failed during reconciliation")
		return nil
	}
	return MatchOrder(orders, mctx)
}

// resolveStatusURL fills in the customer-facing status URL and order number
// when the order in hand is missing them. A failed lookup keeps the order
// as is; the caller falls back to the draft invoice URL.
func (s *OrderService) resolveStatusURL(ctx context.Context, shop, token string, order *domain.Order) *domain.Order {
	if order.OrderStatusURL != "" && order.OrderNumber != 0 {
		return order
	}
	fetched, err := s.admin.GetOrder(ctx, shop, token, order.ID)
	if err != nil || fetched == nil {
		s.logger.Warn().
			Err(err).
			Str("shop", shop).
			Int64("order_id", order.ID).
			Msg("Order status lookup failed; falling back to invoice URL")
		return order
	}
	return fetched
}

// placeDirect is the GraphQL alternative: find or create the customer,
// attach it to the order, then create the order in one orderCreate mutation
// with payment pending. There is no draft, so the fallback draft reference
// never applies; a failed creation is a hard failure.
func (s *OrderService) placeDirect(ctx context.Context, req *domain.OrderRequest, token string, input *domain.DraftOrderInput) (*domain.Placement, error) {
	customer, err := s.admin.FindCustomerGraphQL(ctx, req.Shop, token, input.Email)
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", req.Shop).Msg("Customer lookup failed; placing order without a customer reference")
	}
	if customer == nil && err == nil {
		created, err := s.admin.CreateCustomer(ctx, req.Shop, token, &domain.Customer{
			FirstName: req.Name,
			Email:     input.Email,
			Tags:      "COD-Customer",
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("shop", req.Shop).Msg("Customer creation failed; placing order without a customer reference")
		} else {
			customer = created
		}
	}
	if customer != nil && customer.ID != 0 {
		input.Customer.ID = customer.ID
	}

	order, err := s.admin.CreateOrderGraphQL(ctx, req.Shop, token, input)
	if err != nil {
		return nil, &domain.OrderCreationError{Err: err}
	}

	return &domain.Placement{
		Confirmed:   true,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		StatusURL:   order.OrderStatusURL,
	}, nil
}
