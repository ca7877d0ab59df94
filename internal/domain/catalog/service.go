// internal/domain/catalog/service.go
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Image       string `json:"image" binding:"required"`
	Price       int64  `json:"price" binding:"min=0"`
}

// UpdateProductRequest represents product update data
type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Price       *int64  `json:"price"`
}

// GetProducts returns all products, optionally filtered by a substring of
// the product name (case-insensitive).
func (s *Service) GetProducts(search string) ([]Product, error) {
	var products []Product
	query := s.db.Order("id")
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, apperror.Store(err)
	}
	return products, nil
}

// GetProduct returns a single product with its attributes and prices.
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	err := s.db.Preload("Attributes").Preload("Prices").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product_not_found", "product not found")
		}
		return nil, apperror.Store(err)
	}
	return &product, nil
}

// CreateProduct creates a new product.
func (s *Service) CreateProduct(req *CreateProductRequest) (*Product, error) {
	if req.Price < 0 {
		return nil, apperror.Validation("invalid_price", "price must not be negative")
	}
	product := Product{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
	}
	if err := s.db.Create(&product).Error; err != nil {
		return nil, apperror.Store(err)
	}
	return &product, nil
}

// UpdateProduct applies a partial update to a product.
func (s *Service) UpdateProduct(id uint, req *UpdateProductRequest) (*Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, apperror.Validation("invalid_price", "price must not be negative")
		}
		product.Price = *req.Price
	}

	if err := s.db.Save(product).Error; err != nil {
		return nil, apperror.Store(err)
	}
	return product, nil
}

// DeleteProduct removes a product together with its attributes, prices and
// category memberships.
func (s *Service) DeleteProduct(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&Product{}, id)
		if result.Error != nil {
			return apperror.Store(result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("product_not_found", "product not found")
		}
		if err := tx.Where("product_id = ?", id).Delete(&VariantAttribute{}).Error; err != nil {
			return apperror.Store(err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&VariantPrice{}).Error; err != nil {
			return apperror.Store(err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&CategoryProduct{}).Error; err != nil {
			return apperror.Store(err)
		}
		return nil
	})
}

// CreateCategory creates a new category with a unique name.
func (s *Service) CreateCategory(name, description string) (*Category, error) {
	if name == "" {
		return nil, apperror.Validation("invalid_category", "category name is required")
	}

	var count int64
	if err := s.db.Model(&Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, apperror.Store(err)
	}
	if count > 0 {
		return nil, apperror.Validation("duplicate_category", fmt.Sprintf("category %q already exists", name))
	}

	category := Category{Name: name, Description: description}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, apperror.Store(err)
	}
	return &category, nil
}

// AssignProduct adds a product to a category. Assigning an already-present
// product is a no-op success.
func (s *Service) AssignProduct(categoryID, productID uint) error {
	var count int64
	if err := s.db.Model(&Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return apperror.Store(err)
	}
	if count == 0 {
		return apperror.NotFound("category_not_found", "category not found")
	}
	if err := s.db.Model(&Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return apperror.Store(err)
	}
	if count == 0 {
		return apperror.NotFound("product_not_found", "product not found")
	}

	membership := CategoryProduct{CategoryID: categoryID, ProductID: productID}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&membership).Error
	if err != nil {
		return apperror.Store(err)
	}
	return nil
}

// UpdateCategoryRequest represents category update data
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// UpdateCategory applies a partial update to a category.
func (s *Service) UpdateCategory(id uint, req *UpdateCategoryRequest) (*Category, error) {
	var category Category
	err := s.db.First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("category_not_found", "category not found")
		}
		return nil, apperror.Store(err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperror.Validation("invalid_category", "category name is required")
		}
		var count int64
		err := s.db.Model(&Category{}).Where("name = ? AND id <> ?", *req.Name, id).Count(&count).Error
		if err != nil {
			return nil, apperror.Store(err)
		}
		if count > 0 {
			return nil, apperror.Validation("duplicate_category", fmt.Sprintf("category %q already exists", *req.Name))
		}
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}

	if err := s.db.Save(&category).Error; err != nil {
		return nil, apperror.Store(err)
	}
	return &category, nil
}

// DeleteCategory removes a category together with its product memberships.
// Products themselves are untouched.
func (s *Service) DeleteCategory(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&Category{}, id)
		if result.Error != nil {
			return apperror.Store(result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("category_not_found", "category not found")
		}
		if err := tx.Where("category_id = ?", id).Delete(&CategoryProduct{}).Error; err != nil {
			return apperror.Store(err)
		}
		return nil
	})
}

// UnassignProduct removes a product from a category.
func (s *Service) UnassignProduct(categoryID, productID uint) error {
	result := s.db.Where("category_id = ? AND product_id = ?", categoryID, productID).
		Delete(&CategoryProduct{})
	if result.Error != nil {
		return apperror.Store(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("membership_not_found", "product is not in this category")
	}
	return nil
}

// GetCategories returns all categories.
func (s *Service) GetCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Order("id").Find(&categories).Error; err != nil {
		return nil, apperror.Store(err)
	}
	return categories, nil
}

// GetCategoryProducts returns the products that belong to the named
// category.
func (s *Service) GetCategoryProducts(categoryName string) ([]Product, error) {
	var category Category
	err := s.db.Where("name = ?", categoryName).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("category_not_found", "category not found")
		}
		return nil, apperror.Store(err)
	}

	var memberships []CategoryProduct
	if err := s.db.Where("category_id = ?", category.ID).Find(&memberships).Error; err != nil {
		return nil, apperror.Store(err)
	}

	productIDs := make([]uint, len(memberships))
	for i, m := range memberships {
		productIDs[i] = m.ProductID
	}

	products := []Product{}
	if len(productIDs) > 0 {
		if err := s.db.Where("id IN ?", productIDs).Order("id").Find(&products).Error; err != nil {
			return nil, apperror.Store(err)
		}
	}
	return products, nil
}

// AddVariant declares a new attribute value for a product together with
// its price, in one transaction.
func (s *Service) AddVariant(productID uint, attributeName, attributeValue string, price int64) (*VariantPrice, error) {
	if attributeName == "" || attributeValue == "" {
		return nil, apperror.Validation("invalid_attribute", "attribute name and value are required")
	}
	if price < 0 {
		return nil, apperror.Validation("invalid_price", "price must not be negative")
	}

	var count int64
	if err := s.db.Model(&Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return nil, apperror.Store(err)
	}
	if count == 0 {
		return nil, apperror.NotFound("product_not_found", "product not found")
	}

	var vp VariantPrice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		attr := VariantAttribute{
			ProductID:      productID,
			AttributeName:  attributeName,
			AttributeValue: attributeValue,
		}
		if err := tx.Create(&attr).Error; err != nil {
			return apperror.Validation("duplicate_attribute",
				fmt.Sprintf("product already declares %s=%s", attributeName, attributeValue))
		}
		vp = VariantPrice{
			ProductID:   productID,
			AttributeID: attr.ID,
			Price:       price,
		}
		if err := tx.Create(&vp).Error; err != nil {
			return apperror.Store(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vp, nil
}
