package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
	"github.com/Cheertaboi/Billing-system-promo-engine/internal/service"
)

type PromotionService interface {
	Allocate(ctx context.Context, req service.AllocateRequest) (*models.AllocationResult, error)
	Validate(ctx context.Context, selections []models.PromoSelection, cart []models.CartLine) ([]models.ValidationResult, error)
	GetPromotion(ctx context.Context, id string) (*models.Promotion, error)
	CountRedemptions(ctx context.Context, id string) (int, error)
	CreatePromotion(ctx context.Context, p *models.Promotion) error
}

// --- Request / Response DTOs ---

type CreatePromotionRequest struct {
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name"`
	PromoType models.PromoType `json:"promo_type"`
	Active    *bool            `json:"active,omitempty"`

	// bundling
	Items       []models.BundleItem `json:"items,omitempty"`
	BundlePrice decimal.Decimal     `json:"bundle_price"`

	// buy_x_get_y
	BuyProductID      string `json:"buy_product_id,omitempty"`
	GetProductID      string `json:"get_product_id,omitempty"`
	MinQuantityPerSet int    `json:"min_quantity_per_set,omitempty"`

	// product_specific and the automatic discounts
	EligibleProductIDs []string            `json:"eligible_product_ids,omitempty"`
	DiscountKind       models.DiscountKind `json:"discount_kind,omitempty"`
	DiscountValue      decimal.Decimal     `json:"discount_value"`
	MinQuantity        int                 `json:"min_quantity,omitempty"`
	MinOrderValue      decimal.Decimal     `json:"min_order_value"`
}

type ValidateResponse struct {
	Results []models.ValidationResult `json:"results"`
}

type PromotionResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	PromoType   models.PromoType `json:"promo_type"`
	Active      bool             `json:"active"`
	Selectable  bool             `json:"selectable"`
	Rule        models.Rule      `json:"rule"`
	Redemptions int              `json:"redemptions"`
}

// --- Handler struct & constructor ---

type PromotionHandler struct {
	service PromotionService
	logger  *zap.Logger
}

func NewPromotionHandler(svc PromotionService, logger *zap.Logger) *PromotionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionHandler{service: svc, logger: logger}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (req CreatePromotionRequest) toPromotion() (*models.Promotion, error) {
	p := &models.Promotion{
		ID:     strings.TrimSpace(req.ID),
		Name:   strings.TrimSpace(req.Name),
		Active: req.Active == nil || *req.Active,
	}
	switch req.PromoType {
	case models.PromoTypeBundling:
		p.Rule = models.BundleRule{Items: req.Items, BundlePrice: req.BundlePrice}
	case models.PromoTypeBuyXGetY:
		p.Rule = models.BuyXGetYRule{
			BuyProductID:      req.BuyProductID,
			GetProductID:      req.GetProductID,
			MinQuantityPerSet: req.MinQuantityPerSet,
		}
	case models.PromoTypeProductSpecific:
		p.Rule = models.ProductSpecificRule{
			EligibleProductIDs: req.EligibleProductIDs,
			Kind:               req.DiscountKind,
			Value:              req.DiscountValue,
		}
	case models.PromoTypeDiscountOnQuantity:
		p.Rule = models.QuantityDiscountRule{MinQuantity: req.MinQuantity, Kind: req.DiscountKind, Value: req.DiscountValue}
	case models.PromoTypeDiscountOnTotal:
		p.Rule = models.TotalDiscountRule{MinOrderValue: req.MinOrderValue, Kind: req.DiscountKind, Value: req.DiscountValue}
	default:
		return nil, errors.New("unknown promo_type")
	}
	return p, nil
}

// --- Handlers ---

// Allocate handles POST /promotions/allocate
func (h *PromotionHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req models.CartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body"})
		return
	}

	res, err := h.service.Allocate(r.Context(), service.AllocateRequest{
		OrderID:    req.OrderID,
		Selections: req.Selections,
		CartLines:  req.CartLines,
	})
	if err != nil {
		h.logger.Error("allocate promotions", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Validate handles POST /promotions/validate
func (h *PromotionHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req models.CartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body"})
		return
	}

	results, err := h.service.Validate(r.Context(), req.Selections, req.CartLines)
	if err != nil {
		h.logger.Error("validate promotions", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	writeJSON(w, http.StatusOK, ValidateResponse{Results: results})
}

// GetPromotion handles GET /promotions/{id}
func (h *PromotionHandler) GetPromotion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.service.GetPromotion(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrPromotionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "promotion_not_found"})
			return
		}
		h.logger.Error("get promotion", zap.String("promo_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	n, err := h.service.CountRedemptions(r.Context(), id)
	if err != nil {
		// the count is informational; still serve the definition
		h.logger.Warn("count redemptions", zap.String("promo_id", id), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, PromotionResponse{
		ID:          p.ID,
		Name:        p.Name,
		PromoType:   p.Type(),
		Active:      p.Active,
		Selectable:  p.Type().Selectable(),
		Rule:        p.Rule,
		Redemptions: n,
	})
}

// CreatePromotion handles POST /admin/promotions
func (h *PromotionHandler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req CreatePromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body"})
		return
	}

	p, err := req.toPromotion()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.service.CreatePromotion(r.Context(), p); err != nil {
		if errors.Is(err, models.ErrInvalidPromotion) || errors.Is(err, models.ErrProductNotFound) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Error("create promotion", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed_create_promotion"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "promotion_created",
		"promo_id": p.ID,
	})
}
