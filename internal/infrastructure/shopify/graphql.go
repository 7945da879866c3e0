package shopify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"trazoo-cod-gateway/internal/domain"
)

// orderCreateMutation creates an order directly, without a draft.
const orderCreateMutation = `
mutation orderCreate($order: OrderCreateOrderInput!) {
  orderCreate(order: $order) {
    order {
      id
      name
      statusPageUrl
      email
    }
    userErrors {
      field
      message
    }
  }
}
`

// customersByEmailQuery looks up a customer by exact email.
const customersByEmailQuery = `
query customersByEmail($query: String!) {
  customers(first: 1, query: $query) {
    edges {
      node {
        id
        email
        firstName
      }
    }
  }
}
`

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// execGraphQL posts one GraphQL document to the Admin API and decodes the
// data envelope into out. Top-level GraphQL errors are collapsed into a
// single error, the way the REST side collapses non-2xx responses.
func (c *AdminClient) execGraphQL(ctx context.Context, shop, token, query string, variables map[string]interface{}, out interface{}) error {
	endpoint := fmt.Sprintf("https://%s/admin/api/%s/graphql.json", NormalizeShopDomain(shop), c.apiVersion)

	var envelope struct {
		Data   interface{}    `json:"data"`
		Errors []graphQLError `json:"errors,omitempty"`
	}
	envelope.Data = out

	req := graphQLRequest{Query: query, Variables: variables}
	if err := c.do(ctx, http.MethodPost, endpoint, token, req, &envelope); err != nil {
		return err
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			messages[i] = e.Message
		}
		return fmt.Errorf("graphql errors: %s", strings.Join(messages, "; "))
	}
	return nil
}

// gidToID extracts the trailing numeric id from a Shopify GID such as
// gid://shopify/Order/123456789.
func gidToID(gid string) int64 {
	idx := strings.LastIndex(gid, "/")
	if idx < 0 {
		return 0
	}
	id, _ := strconv.ParseInt(gid[idx+1:], 10, 64)
	return id
}

// orderNumberFromName parses the numeric part of an order name like "#1001".
func orderNumberFromName(name string) int64 {
	n, _ := strconv.ParseInt(strings.TrimLeft(name, "#"), 10, 64)
	return n
}

// CreateOrderGraphQL implements ports.AdminAPI using the orderCreate
// mutation. Payment stays pending, matching the REST draft completion.
func (c *AdminClient) CreateOrderGraphQL(ctx context.Context, shop, token string, input *domain.DraftOrderInput) (*domain.Order, error) {
	lineItems := make([]map[string]interface{}, 0, len(input.LineItems))
	for _, li := range input.LineItems {
		lineItems = append(lineItems, map[string]interface{}{
			"variantId": fmt.Sprintf("gid://shopify/ProductVariant/%d", li.VariantID),
			"quantity":  li.Quantity,
		})
	}

	order := map[string]interface{}{
		"lineItems":       lineItems,
		"email":           input.Email,
		"tags":            strings.Split(input.Tags, ","),
		"note":            input.Note,
		"financialStatus": "PENDING",
	}
	// Email alone does not associate a customer; orderCreate needs the
	// explicit reference.
	if input.Customer != nil && input.Customer.ID != 0 {
		order["customer"] = map[string]interface{}{
			"toAssociate": map[string]interface{}{
				"id": fmt.Sprintf("gid://shopify/Customer/%d", input.Customer.ID),
			},
		}
	}
	if input.ShippingAddress != nil {
		order["shippingAddress"] = gqlAddress(input.ShippingAddress)
	}
	if input.BillingAddress != nil {
		order["billingAddress"] = gqlAddress(input.BillingAddress)
	}

	var data struct {
		OrderCreate struct {
			Order *struct {
				ID            string `json:"id"`
				Name          string `json:"name"`
				StatusPageURL string `json:"statusPageUrl"`
				Email         string `json:"email"`
			} `json:"order"`
			UserErrors []userError `json:"userErrors"`
		} `json:"orderCreate"`
	}

	vars := map[string]interface{}{"order": order}
	if err := c.execGraphQL(ctx, shop, token, orderCreateMutation, vars, &data); err != nil {
		return nil, err
	}
	if len(data.OrderCreate.UserErrors) > 0 {
		return nil, fmt.Errorf("orderCreate rejected: %s", data.OrderCreate.UserErrors[0].Message)
	}
	if data.OrderCreate.Order == nil {
		return nil, fmt.Errorf("orderCreate returned no order")
	}

	return &domain.Order{
		ID:             gidToID(data.OrderCreate.Order.ID),
		OrderNumber:    orderNumberFromName(data.OrderCreate.Order.Name),
		OrderStatusURL: data.OrderCreate.Order.StatusPageURL,
		Email:          data.OrderCreate.Order.Email,
		Tags:           input.Tags,
		Note:           input.Note,
	}, nil
}

// FindCustomerGraphQL implements ports.AdminAPI. Returns (nil, nil) when no
// customer matches.
func (c *AdminClient) FindCustomerGraphQL(ctx context.Context, shop, token, email string) (*domain.Customer, error) {
	var data struct {
		Customers struct {
			Edges []struct {
				Node struct {
					ID        string `json:"id"`
					Email     string `json:"email"`
					FirstName string `json:"firstName"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"customers"`
	}

	vars := map[string]interface{}{"query": "email:" + email}
	if err := c.execGraphQL(ctx, shop, token, customersByEmailQuery, vars, &data); err != nil {
		return nil, err
	}
	if len(data.Customers.Edges) == 0 {
		return nil, nil
	}

	node := data.Customers.Edges[0].Node
	return &domain.Customer{
		ID:        gidToID(node.ID),
		Email:     node.Email,
		FirstName: node.FirstName,
	}, nil
}

func gqlAddress(a *domain.Address) map[string]interface{} {
	return map[string]interface{}{
		"firstName": a.FirstName,
		"address1":  a.Address1,
		"address2":  a.Address2,
		"city":      a.City,
		"province":  a.Province,
		"zip":       a.Zip,
		"country":   a.Country,
		"phone":     a.Phone,
	}
}
