package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode/utf8"

	"trazoo-cod-gateway/internal/application"
	"trazoo-cod-gateway/internal/domain"
	"trazoo-cod-gateway/internal/ports"

	"github.com/rs/zerolog"
)

// Handler serves the COD order and address-autocomplete endpoints.
type Handler struct {
	orders   *application.OrderService
	geocoder ports.Geocoder
	logger   zerolog.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(orders *application.OrderService, geocoder ports.Geocoder, logger zerolog.Logger) *Handler {
	return &Handler{
		orders:   orders,
		geocoder: geocoder,
		logger:   logger,
	}
}

// placeOrderRequest is the inbound JSON body. Numeric fields arrive as
// either numbers or strings depending on the storefront form, so they are
// decoded through json.Number.
type placeOrderRequest struct {
	Shop      string      `json:"shop"`
	Name      string      `json:"name"`
	Phone     string      `json:"phone"`
	Email     string      `json:"email"`
	Address   string      `json:"address"`
	Landmark  string      `json:"landmark"`
	City      string      `json:"city"`
	Province  string      `json:"province"`
	Zip       string      `json:"zip"`
	VariantID json.Number `json:"variantId"`
	Quantity  json.Number `json:"quantity"`
}

type codOrderResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Confirmed   bool   `json:"confirmed"`
	OrderID     *int64 `json:"order_id"`
	OrderNumber *int64 `json:"order_number"`
	ThankYouURL string `json:"thank_you_url,omitempty"`
	DraftID     *int64 `json:"draft_order_id,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// PlaceCodOrder handles POST /api/cod/place.
func (h *Handler) PlaceCodOrder(w http.ResponseWriter, r *http.Request) {
	var body placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return
	}

	variantID, _ := body.VariantID.Int64()
	quantity, _ := body.Quantity.Int64()
	req := &domain.OrderRequest{
		Shop:      body.Shop,
		Name:      body.Name,
		Phone:     body.Phone,
		Email:     body.Email,
		Address:   body.Address,
		Landmark:  body.Landmark,
		City:      body.City,
		Province:  body.Province,
		Zip:       body.Zip,
		VariantID: variantID,
		Quantity:  int(quantity),
	}

	placement, err := h.orders.PlaceOrder(r.Context(), req)
	if err != nil {
		h.writeOrderError(w, req.Shop, err)
		return
	}

	resp := codOrderResponse{
		Success:   true,
		Message:   "COD Order placed successfully",
		Confirmed: placement.Confirmed,
	}
	if placement.Confirmed {
		resp.OrderID = &placement.OrderID
		resp.OrderNumber = &placement.OrderNumber
		resp.ThankYouURL = placement.StatusURL
	} else {
		resp.Message = "COD order submitted; confirmation pending"
		resp.DraftID = &placement.DraftID
		resp.ThankYouURL = placement.InvoiceURL
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeOrderError(w http.ResponseWriter, shop string, err error) {
	var validationErr *domain.ValidationError
	var authErr *domain.AuthorizationError
	var creationErr *domain.OrderCreationError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Missing required fields.", Error: validationErr.Error()})
	case errors.As(err, &authErr):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Invalid shop token"})
	case errors.As(err, &creationErr):
		h.logger.Error().Err(err).Str("shop", shop).Msg("COD order creation failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Message: "Failed to create COD order", Error: creationErr.Error()})
	default:
		h.logger.Error().Err(err).Str("shop", shop).Msg("COD order placement failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Failed to create COD order"})
	}
}

// AddressSuggestions handles GET /api/address?q=.
func (h *Handler) AddressSuggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if utf8.RuneCountInString(query) < 3 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Query must be at least 3 characters long."})
		return
	}

	suggestions, err := h.geocoder.Autocomplete(r.Context(), query)
	if err != nil {
		h.logger.Error().Err(err).Msg("Address autocomplete failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Message: "Failed to fetch address suggestions."})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success":true,"suggestions":`))
	w.Write(suggestions)
	w.Write([]byte(`}`))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
