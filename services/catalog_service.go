package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/restaurant-oms/oms-api/models"
	"github.com/restaurant-oms/oms-api/utils"
)

// CreateProductInput holds the fields of a new catalog product.
type CreateProductInput struct {
	ProductName   string
	Category      models.Category
	Price         decimal.Decimal
	Ingredients   models.IngredientList
	StockQuantity int
}

// UpdateProductInput holds a partial product update; nil fields are left unchanged.
type UpdateProductInput struct {
	ProductName   *string
	Category      *models.Category
	Price         *decimal.Decimal
	Ingredients   *models.IngredientList
	StockQuantity *int
}

// ProductFilter narrows ListProducts.
type ProductFilter struct {
	Category string
}

// CatalogService manages menu products and their stock counters.
type CatalogService struct {
	db     *gorm.DB
	images ImageService
	lg     *zap.Logger
}

// NewCatalogService creates a catalog service. images may be nil, in which
// case image upload is unavailable.
func NewCatalogService(db *gorm.DB, images ImageService, lg *zap.Logger) *CatalogService {
	return &CatalogService{db: db, images: images, lg: lg.Named("catalog")}
}

func validateProductFields(name string, category models.Category, price decimal.Decimal, ingredients models.IngredientList, stock int) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("VALIDATION_ERROR", "Product name is required")
	}
	if !category.IsValid() {
		return NewValidationError("INVALID_CATEGORY", "Category must be one of Starters, Pasta, Mains, Dessert")
	}
	if price.IsNegative() {
		return NewValidationError("INVALID_PRICE", "Price must not be negative")
	}
	if len(ingredients) == 0 {
		return NewValidationError("INVALID_INGREDIENTS", "At least one ingredient is required")
	}
	if stock < 0 {
		return NewValidationError("INVALID_STOCK", "Stock quantity must not be negative")
	}
	return nil
}

// CreateProduct adds a product to the catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	in.Ingredients = models.ParseIngredients(strings.Join(in.Ingredients, ","))
	if err := validateProductFields(in.ProductName, in.Category, in.Price, in.Ingredients, in.StockQuantity); err != nil {
		return nil, err
	}

	product := models.Product{
		ProductName:   strings.TrimSpace(in.ProductName),
		Category:      in.Category,
		Price:         in.Price,
		Ingredients:   in.Ingredients,
		StockQuantity: in.StockQuantity,
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, internal(err, "Failed to create product")
	}

	s.lg.Info("Product created", zap.Uint("product_id", product.ID), zap.String("name", product.ProductName))
	return s.withImageURL(ctx, &product), nil
}

// GetProduct returns a single product.
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return s.withImageURL(ctx, product), nil
}

// ListProducts returns products ordered by name, optionally restricted to a category.
func (s *CatalogService) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Order("product_name ASC").Order("id ASC")
	if filter.Category != "" {
		category := models.Category(filter.Category)
		if !category.IsValid() {
			return nil, NewValidationError("INVALID_CATEGORY", "Category must be one of Starters, Pasta, Mains, Dessert")
		}
		q = q.Where("category = ?", category)
	}

	products := []models.Product{}
	if err := q.Find(&products).Error; err != nil {
		return nil, internal(err, "Failed to list products")
	}
	for i := range products {
		s.withImageURL(ctx, &products[i])
	}
	return products, nil
}

// UpdateProduct replaces the supplied fields of a product.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in UpdateProductInput) (*models.Product, error) {
	product, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	// Only supplied columns are written. Stock moves concurrently through
	// AdjustInventory, so writing back a value read here would lose deltas.
	var cols []string
	if in.ProductName != nil {
		product.ProductName = strings.TrimSpace(*in.ProductName)
		cols = append(cols, "product_name")
	}
	if in.Category != nil {
		product.Category = *in.Category
		cols = append(cols, "category")
	}
	if in.Price != nil {
		product.Price = *in.Price
		cols = append(cols, "price")
	}
	if in.Ingredients != nil {
		product.Ingredients = models.ParseIngredients(strings.Join(*in.Ingredients, ","))
		cols = append(cols, "ingredients")
	}
	if in.StockQuantity != nil {
		product.StockQuantity = *in.StockQuantity
		cols = append(cols, "stock_quantity")
	}
	if err := validateProductFields(product.ProductName, product.Category, product.Price, product.Ingredients, product.StockQuantity); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return s.withImageURL(ctx, product), nil
	}

	if err := s.db.WithContext(ctx).Model(product).Select(cols).Updates(product).Error; err != nil {
		return nil, internal(err, "Failed to update product")
	}

	return s.GetProduct(ctx, id)
}

// DeleteProduct soft-deletes a product. Orders that reference it keep
// rendering from their line snapshots.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.find(ctx, s.db, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(product).Error; err != nil {
		return internal(err, "Failed to delete product")
	}

	if product.Image != nil && s.images != nil {
		if err := s.images.DeleteImage(ctx, *product.Image); err != nil {
			s.lg.Warn("Failed to delete product image", zap.Uint("product_id", id), zap.Error(err))
		}
	}

	s.lg.Info("Product deleted", zap.Uint("product_id", id))
	return nil
}

// AdjustInventory applies relative stock and sold deltas in a single UPDATE
// so concurrent adjustments never lose each other. It runs on db, which is
// the caller's transaction when called from the fulfillment workflow.
func (s *CatalogService) AdjustInventory(ctx context.Context, db *gorm.DB, id uint, stockDelta, soldDelta int) (*models.Product, error) {
	if db == nil {
		db = s.db
	}

	res := db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(map[string]any{
		"stock_quantity": gorm.Expr("stock_quantity + ?", stockDelta),
		"sold_quantity":  gorm.Expr("sold_quantity + ?", soldDelta),
	})
	if res.Error != nil {
		return nil, internal(res.Error, "Failed to adjust inventory")
	}
	if res.RowsAffected == 0 {
		return nil, productNotFound()
	}

	s.lg.Debug("Inventory adjusted",
		zap.Uint("product_id", id),
		zap.Int("stock_delta", stockDelta),
		zap.Int("sold_delta", soldDelta),
	)
	return s.find(ctx, db, id)
}

// AttachImage stores an uploaded image and points the product at it,
// replacing any previous image.
func (s *CatalogService) AttachImage(ctx context.Context, id uint, fileHeader *multipart.FileHeader) (*models.Product, error) {
	if s.images == nil {
		return nil, NewValidationError("IMAGES_DISABLED", "Image upload is not configured")
	}

	product, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	key, err := s.images.UploadImage(ctx, fileHeader)
	if err != nil {
		var fe *utils.FileUploadError
		if errors.As(err, &fe) {
			return nil, NewValidationError(fe.Code, fe.Message)
		}
		return nil, internal(err, "Failed to store product image")
	}

	var previous string
	if product.Image != nil {
		previous = *product.Image
	}
	if err := s.db.WithContext(ctx).Model(product).Update("image", key).Error; err != nil {
		_ = s.images.DeleteImage(ctx, key)
		return nil, internal(err, "Failed to save product image")
	}

	if previous != "" && previous != key {
		if err := s.images.DeleteImage(ctx, previous); err != nil {
			s.lg.Warn("Failed to delete replaced image", zap.Uint("product_id", id), zap.Error(err))
		}
	}

	return s.GetProduct(ctx, id)
}

// ProductsByID loads the live products among ids, keyed by id.
func (s *CatalogService) ProductsByID(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]models.Product, error) {
	if db == nil {
		db = s.db
	}
	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var products []models.Product
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, internal(err, "Failed to load products")
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (s *CatalogService) find(ctx context.Context, db *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	if err := db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, productNotFound()
		}
		return nil, internal(err, "Failed to load product")
	}
	return &product, nil
}

func (s *CatalogService) withImageURL(ctx context.Context, product *models.Product) *models.Product {
	if product.Image == nil || s.images == nil {
		return product
	}
	url, err := s.images.GetImageURL(ctx, *product.Image)
	if err != nil {
		s.lg.Warn("Failed to resolve image URL", zap.Uint("product_id", product.ID), zap.Error(err))
		return product
	}
	product.ImageURL = &url
	return product
}

func productNotFound() *Error {
	return NewNotFoundError("PRODUCT_NOT_FOUND", "Product not found")
}
