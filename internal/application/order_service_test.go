package application

import (
	"context"
	"testing"

	"trazoo-cod-gateway/internal/config"
	"trazoo-cod-gateway/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCredentialStore is an in-memory CredentialStore that counts lookups.
type mockCredentialStore struct {
	tokens   map[string]string
	getCalls int
}

func (m *mockCredentialStore) Get(ctx context.Context, shop string) (string, error) {
	m.getCalls++
	return m.tokens[shop], nil
}

func (m *mockCredentialStore) Put(ctx context.Context, shop, accessToken string) error {
	if m.tokens == nil {
		m.tokens = map[string]string{}
	}
	m.tokens[shop] = accessToken
	return nil
}

// mockAdminAPI implements ports.AdminAPI with per-method hooks and a total
// call counter so tests can assert that no upstream call was made.
type mockAdminAPI struct {
	calls int

	createDraft   func(draft *domain.DraftOrderInput) (*domain.DraftOrder, error)
	completeDraft func(draftID int64) (*domain.Order, error)
	listRecent    func(limit int) ([]domain.Order, error)
	getOrder      func(orderID int64) (*domain.Order, error)
	searchCust    func(email string) ([]domain.Customer, error)
	createCust    func(c *domain.Customer) (*domain.Customer, error)
	custOrders    func(customerID int64) ([]domain.Order, error)
	createGQL     func(input *domain.DraftOrderInput) (*domain.Order, error)
	findCustGQL   func(email string) (*domain.Customer, error)
}

func (m *mockAdminAPI) CreateDraftOrder(ctx context.Context, shop, token string, draft *domain.DraftOrderInput) (*domain.DraftOrder, error) {
	m.calls++
	if m.createDraft == nil {
		return nil, nil
	}
	return m.createDraft(draft)
}

func (m *mockAdminAPI) CompleteDraftOrder(ctx context.Context, shop, token string, draftID int64) (*domain.Order, error) {
	m.calls++
	if m.completeDraft == nil {
		return nil, nil
	}
	return m.completeDraft(draftID)
}

func (m *mockAdminAPI) ListRecentOrders(ctx context.Context, shop, token string, limit int) ([]domain.Order, error) {
	m.calls++
	if m.listRecent == nil {
		return nil, nil
	}
	return m.listRecent(limit)
}

func (m *mockAdminAPI) GetOrder(ctx context.Context, shop, token string, orderID int64) (*domain.Order, error) {
	m.calls++
	if m.getOrder == nil {
		return nil, nil
	}
	return m.getOrder(orderID)
}

func (m *mockAdminAPI) SearchCustomersByEmail(ctx context.Context, shop, token, email string) ([]domain.Customer, error) {
	m.calls++
	if m.searchCust == nil {
		return nil, nil
	}
	return m.searchCust(email)
}

func (m *mockAdminAPI) CreateCustomer(ctx context.Context, shop, token string, customer *domain.Customer) (*domain.Customer, error) {
	m.calls++
	if m.createCust == nil {
		return customer, nil
	}
	return m.createCust(customer)
}

func (m *mockAdminAPI) CustomerOrders(ctx context.Context, shop, token string, customerID int64) ([]domain.Order, error) {
	m.calls++
	if m.custOrders == nil {
		return nil, nil
	}
	return m.custOrders(customerID)
}

func (m *mockAdminAPI) CreateOrderGraphQL(ctx context.Context, shop, token string, input *domain.DraftOrderInput) (*domain.Order, error) {
	m.calls++
	if m.createGQL == nil {
		return nil, nil
	}
	return m.createGQL(input)
}

func (m *mockAdminAPI) FindCustomerGraphQL(ctx context.Context, shop, token, email string) (*domain.Customer, error) {
	m.calls++
	if m.findCustGQL == nil {
		return nil, nil
	}
	return m.findCustGQL(email)
}

func newTestService(store *mockCredentialStore, admin *mockAdminAPI, mode string) *OrderService {
	return NewOrderService(store, admin, zerolog.Nop(), "India", "trazoonow.in", mode)
}

func validRequest() *domain.OrderRequest {
	return &domain.OrderRequest{
		Shop:      "teststore.myshopify.com",
		Name:      "Asha",
		Phone:     "+91 98765-43210",
		Address:   "12 MG Road",
		Landmark:  "Near metro",
		City:      "Bengaluru",
		Province:  "Karnataka",
		Zip:       "560001",
		VariantID: 4242,
		Quantity:  2,
	}
}

const syntheticEmail = "cod-919876543210@trazoonow.in"

func TestPlaceOrder_MissingField_NoUpstreamCalls(t *testing.T) {
	mutations := map[string]func(r *domain.OrderRequest){
		"shop":      func(r *domain.OrderRequest) { r.Shop = "" },
		"name":      func(r *domain.OrderRequest) { r.Name = "" },
		"phone":     func(r *domain.OrderRequest) { r.Phone = "" },
		"address":   func(r *domain.OrderRequest) { r.Address = "" },
		"city":      func(r *domain.OrderRequest) { r.City = "" },
		"province":  func(r *domain.OrderRequest) { r.Province = "" },
		"zip":       func(r *domain.OrderRequest) { r.Zip = "" },
		"variantId": func(r *domain.OrderRequest) { r.VariantID = 0 },
		"quantity":  func(r *domain.OrderRequest) { r.Quantity = 0 },
	}

	for field, mutate := range mutations {
		t.Run(field, func(t *testing.T) {
			store := &mockCredentialStore{tokens: map[string]string{"teststore.myshopify.com": "token"}}
			admin := &mockAdminAPI{}
			svc := newTestService(store, admin, config.OrderModeREST)

			req := validRequest()
			mutate(req)

			placement, err := svc.PlaceOrder(context.Background(), req)

			assert.Nil(t, placement)
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields, field)
			assert.Zero(t, admin.calls)
			assert.Zero(t, store.getCalls)
		})
	}
}

func TestPlaceOrder_NoCredential_NoUpstreamCalls(t *testing.T) {
	store := &mockCredentialStore{}
	admin := &mockAdminAPI{}
	svc := newTestService(store, admin, config.OrderModeREST)

	placement, err := svc.PlaceOrder(context.Background(), validRequest())

	assert.Nil(t, placement)
	var authErr *domain.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "teststore.myshopify.com", authErr.Shop)
	assert.Zero(t, admin.calls)
}

func TestPlaceOrder_DraftCreateFails(t *testing.T) {
	store := &mockCredentialStore{tokens: map[string]string{"teststore.myshopify.com": "token"}}
	admin := &mockAdminAPI{
		createDraft: func(draft *domain.DraftOrderInput) (*domain.DraftOrder, error) {
			return nil, &domain.UpstreamError{StatusCode: 422, Body: `{"errors":"invalid variant"}`}
		},
	}
	svc := newTestService(store, admin, config.OrderModeREST)

	placement, err := svc.PlaceOrder(context.Background(), validRequest())

	assert.Nil(t, placement)
	var creationErr *domain.OrderCreationError
	require.ErrorAs(t, err, &creationErr)
	var upstreamErr *domain.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, 422, upstreamErr.StatusCode)
	assert.Equal(t, 1, admin.calls)
}

func TestPlaceOrder_CompleteReturnsOrder_Resolved(t *testing.T) {
	store := &mockCredentialStore{tokens: map[string]string{"teststore.myshopify.com": "token"}}

	var capturedDraft *domain.DraftOrderInput
	admin := &mockAdminAPI{
		createDraft: func(draft *domain.DraftOrderInput) (*domain.DraftOrder, error) {
			capturedDraft = draft
			return &domain.DraftOrder{ID: 101, InvoiceURL: "https://teststore.myshopify.com/invoices/101"}, nil
		},
		completeDraft: func(draftID int64) (*domain.Order, error) {
			return &domain.Order{ID: 9001}, nil
		},
		getOrder: func(orderID int64) (*domain.Order, error) {
			return &domain.Order{
				ID:             9001,
				OrderNumber:    1001,
				OrderStatusURL: "https://teststore.myshopify.com/orders/status/9001",
			}, nil
		},
	}
	svc := newTestService(store, admin, config.OrderModeREST)

	placement, err := svc.PlaceOrder(context.Background(), validRequest())

	require.NoError(t, err)
	assert.True(t, placement.Confirmed)
	assert.Equal(t, int64(9001), placement.OrderID)
	assert.Equal(t, int64(1001), placement.OrderNumber)
	assert.Equal(t, "https://teststore.myshopify.com/orders/status/9001", placement.StatusURL)

	require.NotNil(t, capturedDraft)
	assert.Equal(t, "COD", capturedDraft.Tags)
	assert.Equal(t, "COD Draft Order", capturedDraft.Note)
	assert.Equal(t, syntheticEmail, capturedDraft.Email)
	assert.Equal(t, "919876543210", capturedDraft.Customer.Phone)
	require.Len(t, capturedDraft.LineItems, 1)
	assert.Equal(t, int64(4242), capturedDraft.LineItems[0].VariantID)
	assert.Equal(t, 2, capturedDraft.LineItems[0].Quantity)
	// The address keeps the phone exactly as submitted.
	assert.Equal(t, "+91 98765-43210", capturedDraft.ShippingAddress.Phone)
	assert.Equal(t, "India", capturedDraft.ShippingAddress.Country)
	assert.Equal(t, capturedDraft.ShippingAddress, capturedDraft.BillingAddress)
	assert.False(t, capturedDraft.UseCustomerDefaultAddress)
}

func TestPlaceOrder_ProvidedEmailIsKept(t *testing.T) {
	store := &mockCredentialStore{tokens: map[string]string{"teststore.myshopify.com": "token"}}
	var capturedDraft *domain.DraftOrderInput
	admin := &mockAdminAPI{
		createDraft: func(draft *domain.DraftOrderInput) (*domain.DraftOrder, error) {
			capturedDraft = draft
			return &domain.DraftOrder{ID: 1, InvoiceURL: "https://x/inv"}, nil
		},
		completeDraft: func(draftID int64) (*domain.Order, error) {
			return &domain.Order{ID: 2, OrderNumber: 3, OrderStatusURL: "https://x/status"}, nil
		},
	}
	svc := newTestService(store, admin, config.OrderModeREST)

	req := validRequest()
	req.Email = " asha@example.com "
	_, err := svc.PlaceOrder(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", capturedDraft.Email)
}

func TestPlaceOrder_CompleteFails_MatchedInRecentOrders(t *testing.T) {
	store := &mockCredentialStore{tokens: map[string]string{"teststore.myshopify.com": "token"}}
	admin := &mockAdminAPI{
		createDraft: func(draft *domain.DraftOrderInput) (*domain.DraftOrder, error) {
			return &domain.DraftOrder{ID: 101, InvoiceURL: "https://teststore.myshopify.com/invoices/101"}, nil
		},
		completeDraft: func(draftID int64) (*domain.Order, error) {
			return nil, &domain.UpstreamError{StatusCode: 422, Body: "already completed"}
		},
		listRecent: func(limit int) ([]domain.Order, error) {
			return []domain.Order{
				{ID: 7000, Tags: "wholesale", Note: "manual order"},
				{
					ID:             9002,
					OrderNumber:    1002,
					OrderStatusURL: "https://teststore.myshopify.com/orders/status/9002",
					Tags:           "COD",
					Note:           "COD Draft Order",
					Email:          syntheticEmail,
					LineItems:      []domain.LineItem{{VariantID: 4242, Quantity: 2}},
				},
			}, nil
		},
	}
	svc := newTestService(store, admin, config.OrderModeREST)

	placement, err := svc.PlaceOrder(context.Background(), validRequest())

	require.NoError(t, err)
	assert.True(t, placement.Confirmed)
	assert.Equal(t, int64(9002), placement.OrderID)
	assert.Equal(t, int64(1002), placement.OrderNumber)
	assert.Equal(t, "https://teststore.myshopify.com/orders/status/9002", placement.StatusURL)
}

func TestPlaceOrder_CompleteFails_MatchedViaCustomerOrders(t *testing.T) {
	store := &mockCredentialStore{tokens: map[string]string{"teststore.myshopify.com": "token"}}
	listRecentCalled := false
	admin := &mockAdminAPI{
		createDraft: func(draft *domain.DraftOrderInput) (*domain.DraftOrder, error) {
			return &domain.DraftOrder{ID: 101, InvoiceURL: "https://x/inv"}, nil
		},
		completeDraft: func(draftID int64) (*domain.Order, error) {
			return nil, &domain.UpstreamError{StatusCode: 500, Body: "boom"}
		},
		searchCust: func(email string) ([]domain.Customer, error) {
			assert.Equal(t, syntheticEmail, email)
			return []domain.Customer{{ID: 555, Email: email}}, nil
		},
		custOrders: func(customerID int64) ([]domain.Order, error) {
			assert.Equal(t, int64(555), customerID)
			return []domain.Order{{
				ID:             9003,
				OrderNumber:    1003,
				OrderStatusURL: "https://x/status/9003",
				Tags:           "COD",
				Note:           "COD Draft Order",
				LineItems:      []domain.LineItem{{VariantID: 4242, Quantity: 2}},
			}}, nil
		},
		listRecent: func(limit int) ([]domain.Order, error) {
			listRecentCalled = true
			return nil, nil
		},
	}
	svc := newTestService(store, admin, config.OrderModeREST)

	placement, err := svc.PlaceOrder(context.Background(), validRequest())

	require.NoError(t, err)
	assert.True(t, placement.Confirmed)
	assert.Equal(t, int64(9003), placement.OrderID)
	assert.False(t, listRecentCalled, "recent-orders listing should not run when the customer lookup already matched")
}

func TestPlaceOrder_CompleteFails_NoMatch_Unlocated(t *testing.T) {
	store := &mockCredentialStore{tokens: map[string]string{"teststore.myshopify.com": "token"}}
	admin := &mockAdminAPI{
		createDraft: func(draft *domain.DraftOrderInput) (*domain.DraftOrder, error) {
			return &domain.DraftOrder{ID: 101, InvoiceURL: "https://teststore.myshopify.com/invoices/101"}, nil
		},
		completeDraft: func(draftID int64) (*domain.Order, error) {
			return nil, &domain.UpstreamError{StatusCode: 422, Body: "already completed"}
		},
		listRecent: func(limit int) ([]domain.Order, error) {
			return []domain.Order{{ID: 7000, Tags: "wholesale", Note: "manual order"}}, nil
		},
	}
	svc := newTestService(store, admin, config.OrderModeREST)

	placement, err := svc.PlaceOrder(context.Background(), validRequest())

	require.NoError(t, err)
	assert.False(t, placement.Confirmed)
	assert.Equal(t, int64(101), placement.DraftID)
	assert.Equal(t, "https://teststore.myshopify.com/invoices/101", placement.InvoiceURL)
	assert.Zero(t, placement.OrderID)
}

func TestPlaceOrder_StatusLookupFails_FallsBackToInvoiceURL(t *testing.T) {
	store := &mockCredentialStore{tokens: map[string]string{"teststore.myshopify.com": "token"}}
	admin := &mockAdminAPI{
		createDraft: func(draft *domain.DraftOrderInput) (*domain.DraftOrder, error) {
			return &domain.DraftOrder{ID: 101, InvoiceURL: "https://teststore.myshopify.com/invoices/101"}, nil
		},
		completeDraft: func(draftID int64) (*domain.Order, error) {
			return &domain.Order{ID: 9001}, nil
		},
		getOrder: func(orderID int64) (*domain.Order, error) {
			return nil, &domain.UpstreamError{StatusCode: 404, Body: "not found"}
		},
	}
	svc := newTestService(store, admin, config.OrderModeREST)

	placement, err := svc.PlaceOrder(context.Background(), validRequest())

	require.NoError(t, err)
	assert.True(t, placement.Confirmed)
	assert.Equal(t, int64(9001), placement.OrderID)
	assert.Equal(t, "https://teststore.myshopify.com/invoices/101", placement.StatusURL)
}

func TestPlaceOrder_GraphQLMode(t *testing.T) {
	store := &mockCredentialStore{tokens: map[string]string{"teststore.myshopify.com": "token"}}
	createdCustomer := false
	var capturedInput *domain.DraftOrderInput
	admin := &mockAdminAPI{
		findCustGQL: func(email string) (*domain.Customer, error) {
			assert.Equal(t, syntheticEmail, email)
			return nil, nil
		},
		createCust: func(c *domain.Customer) (*domain.Customer, error) {
			createdCustomer = true
			assert.Equal(t, syntheticEmail, c.Email)
			return &domain.Customer{ID: 777, Email: c.Email}, nil
		},
		createGQL: func(input *domain.DraftOrderInput) (*domain.Order, error) {
			capturedInput = input
			return &domain.Order{
				ID:             9005,
				OrderNumber:    1005,
				OrderStatusURL: "https://teststore.myshopify.com/orders/status/9005",
			}, nil
		},
		createDraft: func(draft *domain.DraftOrderInput) (*domain.DraftOrder, error) {
			t.Fatal("draft path must not run in graphql mode")
			return nil, nil
		},
	}
	svc := newTestService(store, admin, config.OrderModeGraphQL)

	placement, err := svc.PlaceOrder(context.Background(), validRequest())

	require.NoError(t, err)
	assert.True(t, createdCustomer)
	assert.True(t, placement.Confirmed)
	assert.Equal(t, int64(9005), placement.OrderID)
	assert.Equal(t, int64(1005), placement.OrderNumber)

	// The freshly created customer is attached to the order input.
	require.NotNil(t, capturedInput)
	require.NotNil(t, capturedInput.Customer)
	assert.Equal(t, int64(777), capturedInput.Customer.ID)
}

func TestPlaceOrder_GraphQLMode_ExistingCustomerAttached(t *testing.T) {
	store := &mockCredentialStore{tokens: map[string]string{"teststore.myshopify.com": "token"}}
	var capturedInput *domain.DraftOrderInput
	admin := &mockAdminAPI{
		findCustGQL: func(email string) (*domain.Customer, error) {
			return &domain.Customer{ID: 555, Email: email}, nil
		},
		createCust: func(c *domain.Customer) (*domain.Customer, error) {
			t.Fatal("customer creation must not run when the lookup matched")
			return nil, nil
		},
		createGQL: func(input *domain.DraftOrderInput) (*domain.Order, error) {
			capturedInput = input
			return &domain.Order{ID: 9006, OrderNumber: 1006}, nil
		},
	}
	svc := newTestService(store, admin, config.OrderModeGraphQL)

	_, err := svc.PlaceOrder(context.Background(), validRequest())

	require.NoError(t, err)
	require.NotNil(t, capturedInput)
	require.NotNil(t, capturedInput.Customer)
	assert.Equal(t, int64(555), capturedInput.Customer.ID)
}

func TestPlaceOrder_GraphQLMode_CustomerStepFailuresDoNotBlock(t *testing.T) {
	store := &mockCredentialStore{tokens: map[string]string{"teststore.myshopify.com": "token"}}
	var capturedInput *domain.DraftOrderInput
	admin := &mockAdminAPI{
		findCustGQL: func(email string) (*domain.Customer, error) {
			return nil, &domain.UpstreamError{StatusCode: 500, Body: "boom"}
		},
		createGQL: func(input *domain.DraftOrderInput) (*domain.Order, error) {
			capturedInput = input
			return &domain.Order{ID: 9007, OrderNumber: 1007}, nil
		},
	}
	svc := newTestService(store, admin, config.OrderModeGraphQL)

	placement, err := svc.PlaceOrder(context.Background(), validRequest())

	require.NoError(t, err)
	assert.True(t, placement.Confirmed)
	require.NotNil(t, capturedInput)
	assert.Zero(t, capturedInput.Customer.ID)
}

func TestCompleteDraft_States(t *testing.T) {
	store := &mockCredentialStore{}

	t.Run("order returned", func(t *testing.T) {
		admin := &mockAdminAPI{
			completeDraft: func(draftID int64) (*domain.Order, error) {
				return &domain.Order{ID: 9001}, nil
			},
		}
		svc := newTestService(store, admin, config.OrderModeREST)

		completion := svc.completeDraft(context.Background(), "teststore.myshopify.com", "token", 101)

		assert.Equal(t, domain.Completed, completion.State)
		require.NotNil(t, completion.Order)
		assert.Equal(t, int64(9001), completion.Order.ID)
	})

	t.Run("rejected call", func(t *testing.T) {
		admin := &mockAdminAPI{
			completeDraft: func(draftID int64) (*domain.Order, error) {
				return nil, &domain.UpstreamError{StatusCode: 422, Body: "already completed"}
			},
		}
		svc := newTestService(store, admin, config.OrderModeREST)

		completion := svc.completeDraft(context.Background(), "teststore.myshopify.com", "token", 101)

		assert.Equal(t, domain.UnknownOrAlreadyCompleted, completion.State)
		assert.Nil(t, completion.Order)
	})

	t.Run("accepted without order payload", func(t *testing.T) {
		admin := &mockAdminAPI{}
		svc := newTestService(store, admin, config.OrderModeREST)

		completion := svc.completeDraft(context.Background(), "teststore.myshopify.com", "token", 101)

		assert.Equal(t, domain.UnknownOrAlreadyCompleted, completion.State)
		assert.Nil(t, completion.Order)
	})
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "919876543210", NormalizePhone("+91 98765-43210"))
	assert.Equal(t, "", NormalizePhone("no digits"))

	// Idempotent: normalizing normalized digits yields the same digits.
	once := NormalizePhone("+91 (98765) 43210")
	assert.Equal(t, once, NormalizePhone(once))
}

func TestPlaceholderEmail_Deterministic(t *testing.T) {
	a := PlaceholderEmail(NormalizePhone("+91 98765-43210"), "trazoonow.in")
	b := PlaceholderEmail(NormalizePhone("919876543210"), "trazoonow.in")

	assert.Equal(t, syntheticEmail, a)
	assert.Equal(t, a, b)
}
