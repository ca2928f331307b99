package transport

import (
	"net/http"

	"marketplace/internal/domain"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest lists a new product
type CreateProductRequest struct {
	OwnerID      string           `json:"owner_id" validate:"required,uuid"`
	CategoryID   string           `json:"category_id" validate:"required,uuid"`
	Description  string           `json:"description" validate:"required,max=300"`
	Size         string           `json:"size" validate:"max=50"`
	Brand        string           `json:"brand" validate:"max=50"`
	Composition  string           `json:"composition" validate:"max=255"`
	Gender       string           `json:"gender" validate:"required,oneof=MAN WOMAN UNISEX"`
	CurrentPrice *decimal.Decimal `json:"current_price"`
}

// UpdateProductRequest is the partial update payload: absent fields are left
// untouched, which is why everything is a pointer.
type UpdateProductRequest struct {
	Description  *string          `json:"description" validate:"omitempty,max=300"`
	Size         *string          `json:"size" validate:"omitempty,max=50"`
	Brand        *string          `json:"brand" validate:"omitempty,max=50"`
	Composition  *string          `json:"composition" validate:"omitempty,max=255"`
	Gender       *string          `json:"gender" validate:"omitempty,oneof=MAN WOMAN UNISEX"`
	CurrentPrice *decimal.Decimal `json:"current_price"`
	OwnerID      *string          `json:"owner_id" validate:"omitempty,uuid"`
	CategoryID   *string          `json:"category_id" validate:"omitempty,uuid"`
	Sold         *bool            `json:"sold"`
}

// MarkSoldRequest carries the seller for a sale transition
type MarkSoldRequest struct {
	SellerID string `json:"seller_id" validate:"required,uuid"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers the product routes; every route requires an
// authenticated actor, any role.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/filter", h.Filter)
		r.Get("/statistics", h.Statistics)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
		r.Put("/{id}/assign-owner", h.AssignOwner)
		r.Put("/{id}/mark-sold", h.MarkSold)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/price-history", h.PriceHistory)
	})
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeAndRespond(w, r, h.logger, &req) {
		return
	}

	if req.CurrentPrice != nil && req.CurrentPrice.IsNegative() {
		middleware.RespondWithError(w, http.StatusBadRequest, "price cannot be negative")
		return
	}

	ownerID, _ := uuid.Parse(req.OwnerID)
	categoryID, _ := uuid.Parse(req.CategoryID)

	product, err := h.productService.Create(r.Context(), service.ProductCreateInput{
		OwnerID:      ownerID,
		CategoryID:   categoryID,
		Description:  req.Description,
		Size:         req.Size,
		Brand:        req.Brand,
		Composition:  req.Composition,
		Gender:       domain.Gender(req.Gender),
		CurrentPrice: req.CurrentPrice,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// GetByID handles fetching one product
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// List handles fetching all products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Filter handles multi-criteria product queries. Absent query parameters
// are simply absent criteria; no parameters at all returns the full set.
func (h *ProductHandler) Filter(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repository.ProductFilter{}

	if description := query.Get("description"); description != "" {
		filter.Description = &description
	}
	if raw := query.Get("ownerId"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid ownerId")
			return
		}
		filter.OwnerID = &ownerID
	}
	if raw := query.Get("categoryId"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid categoryId")
			return
		}
		filter.CategoryID = &categoryID
	}
	filter.Sold = repository.SoldFromStatus(query.Get("status"))

	products, err := h.productService.Filter(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Update handles partial product updates
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !decodeAndRespond(w, r, h.logger, &req) {
		return
	}

	if req.CurrentPrice != nil && req.CurrentPrice.IsNegative() {
		middleware.RespondWithError(w, http.StatusBadRequest, "price cannot be negative")
		return
	}

	input := service.ProductUpdateInput{
		Description:  req.Description,
		Size:         req.Size,
		Brand:        req.Brand,
		Composition:  req.Composition,
		CurrentPrice: req.CurrentPrice,
		Sold:         req.Sold,
	}
	if req.Gender != nil {
		gender := domain.Gender(*req.Gender)
		input.Gender = &gender
	}
	if req.OwnerID != nil {
		ownerID, _ := uuid.Parse(*req.OwnerID)
		input.OwnerID = &ownerID
	}
	if req.CategoryID != nil {
		categoryID, _ := uuid.Parse(*req.CategoryID)
		input.CategoryID = &categoryID
	}

	product, err := h.productService.Update(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// AssignOwner handles ownership reassignment via the newOwnerId query
// parameter.
func (h *ProductHandler) AssignOwner(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	newOwnerID, err := uuid.Parse(r.URL.Query().Get("newOwnerId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid newOwnerId")
		return
	}

	product, err := h.productService.AssignOwner(r.Context(), id, newOwnerID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product owner reassigned",
		zap.String("product_id", id.String()),
		zap.String("new_owner_id", newOwnerID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// MarkSold handles the available→sold transition
func (h *ProductHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req MarkSoldRequest
	if !decodeAndRespond(w, r, h.logger, &req) {
		return
	}

	sellerID, _ := uuid.Parse(req.SellerID)

	product, err := h.productService.MarkSold(r.Context(), id, sellerID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product sold",
		zap.String("product_id", id.String()),
		zap.String("seller_id", sellerID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete handles product deletion, cascading to the price ledger
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// PriceHistory handles reading a product's price ledger, newest first
func (h *ProductHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	history, err := h.productService.PriceHistory(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, history)
}

// Statistics handles the aggregate endpoint; the optional userId query
// parameter scopes the numbers to one owner.
func (h *ProductHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	var ownerID *uuid.UUID
	if raw := r.URL.Query().Get("userId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid userId")
			return
		}
		ownerID = &parsed
	}

	stats, err := h.productService.Statistics(r.Context(), ownerID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}
