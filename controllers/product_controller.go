package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/restaurant-oms/oms-api/models"
	"github.com/restaurant-oms/oms-api/services"
)

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	ProductName   string                `json:"productName" binding:"required"`
	Category      models.Category       `json:"category" binding:"required"`
	Price         *decimal.Decimal      `json:"price" binding:"required"`
	Ingredients   models.IngredientList `json:"ingredients"`
	StockQuantity int                   `json:"stockQuantity"`
}

// UpdateProductRequest represents the request body for a partial product update
type UpdateProductRequest struct {
	ProductName   *string                `json:"productName"`
	Category      *models.Category       `json:"category"`
	Price         *decimal.Decimal       `json:"price"`
	Ingredients   *models.IngredientList `json:"ingredients"`
	StockQuantity *int                   `json:"stockQuantity"`
}

// ProductController serves the menu catalog.
type ProductController struct {
	catalog *services.CatalogService
	lg      *zap.Logger
}

// NewProductController creates a product controller.
func NewProductController(catalog *services.CatalogService, lg *zap.Logger) *ProductController {
	return &ProductController{catalog: catalog, lg: lg}
}

// CreateProduct handles POST /api/v1/products
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := pc.catalog.CreateProduct(c.Request.Context(), services.CreateProductInput{
		ProductName:   req.ProductName,
		Category:      req.Category,
		Price:         *req.Price,
		Ingredients:   req.Ingredients,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		respondError(c, pc.lg, err)
		return
	}

	respondOK(c, http.StatusCreated, product)
}

// ListProducts handles GET /api/v1/products?category=
func (pc *ProductController) ListProducts(c *gin.Context) {
	products, err := pc.catalog.ListProducts(c.Request.Context(), services.ProductFilter{
		Category: c.Query("category"),
	})
	if err != nil {
		respondError(c, pc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/:id
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := pc.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, pc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, product)
}

// UpdateProduct handles PATCH /api/v1/products/:id
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := pc.catalog.UpdateProduct(c.Request.Context(), id, services.UpdateProductInput{
		ProductName:   req.ProductName,
		Category:      req.Category,
		Price:         req.Price,
		Ingredients:   req.Ingredients,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		respondError(c, pc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := pc.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, pc.lg, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product deleted",
	})
}

// UploadProductImage handles POST /api/v1/products/:id/image (multipart field "image")
func (pc *ProductController) UploadProductImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondFail(c, http.StatusBadRequest, "NO_FILE", "An image file is required in the \"image\" field")
		return
	}

	product, err := pc.catalog.AttachImage(c.Request.Context(), id, fileHeader)
	if err != nil {
		respondError(c, pc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, product)
}
