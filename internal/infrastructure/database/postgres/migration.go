// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// Models returns all models to migrate, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},

		&catalog.Category{},
		&catalog.Product{},
		&catalog.VariantAttribute{},
		&catalog.VariantPrice{},
		&catalog.CategoryProduct{},

		&cart.Cart{},
		&cart.CartItem{},

		&order.Order{},
		&order.OrderLine{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("Running database auto-migrations...")

	for _, model := range Models() {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_name ON products(name)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_customer_email ON orders(customer_email)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// SeedInitialData populates reference data for development. Best Sellers
// is filled by copying one product per existing category; seed-time only,
// with no ongoing maintenance.
func (m *Migration) SeedInitialData() error {
	var count int64
	if err := m.db.Model(&catalog.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // Already seeded
	}

	log.Println("Seeding initial catalog data...")

	type seedVariant struct {
		value string
		price int64
	}
	type seedProduct struct {
		name        string
		description string
		image       string
		price       int64
		category    string
		attribute   string
		variants    []seedVariant
	}

	seeds := []seedProduct{
		{
			name:        "Classic Cotton Tee",
			description: "Soft everyday t-shirt in heavyweight cotton.",
			image:       "classic-cotton-tee.jpg",
			price:       1999,
			category:    "Shirts",
			attribute:   "Size",
			variants:    []seedVariant{{"S", 1999}, {"M", 1999}, {"L", 2199}, {"XL", 2399}},
		},
		{
			name:        "Slim Denim Jeans",
			description: "Stretch denim with a tapered leg.",
			image:       "slim-denim-jeans.jpg",
			price:       5999,
			category:    "Pants",
			attribute:   "Size",
			variants:    []seedVariant{{"30", 5999}, {"32", 5999}, {"34", 6299}},
		},
		{
			name:        "Canvas Sneakers",
			description: "Low-top sneakers with a vulcanized sole.",
			image:       "canvas-sneakers.jpg",
			price:       4499,
			category:    "Shoes",
			attribute:   "Size",
			variants:    []seedVariant{{"8", 4499}, {"9", 4499}, {"10", 4499}, {"11", 4699}},
		},
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		categories := map[string]uint{}
		for _, seed := range seeds {
			if _, ok := categories[seed.category]; ok {
				continue
			}
			cat := catalog.Category{Name: seed.category}
			if err := tx.Create(&cat).Error; err != nil {
				return err
			}
			categories[seed.category] = cat.ID
		}

		bestSellers := catalog.Category{Name: "Best Sellers", Description: "Our most popular picks"}
		if err := tx.Create(&bestSellers).Error; err != nil {
			return err
		}

		for _, seed := range seeds {
			product := catalog.Product{
				Name:        seed.name,
				Description: seed.description,
				Image:       seed.image,
				Price:       seed.price,
			}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}

			for _, v := range seed.variants {
				attr := catalog.VariantAttribute{
					ProductID:      product.ID,
					AttributeName:  seed.attribute,
					AttributeValue: v.value,
				}
				if err := tx.Create(&attr).Error; err != nil {
					return err
				}
				price := catalog.VariantPrice{
					ProductID:   product.ID,
					AttributeID: attr.ID,
					Price:       v.price,
				}
				if err := tx.Create(&price).Error; err != nil {
					return err
				}
			}

			memberships := []catalog.CategoryProduct{
				{CategoryID: categories[seed.category], ProductID: product.ID},
				{CategoryID: bestSellers.ID, ProductID: product.ID},
			}
			for _, membership := range memberships {
				if err := tx.Create(&membership).Error; err != nil {
					return err
				}
			}
		}

		log.Printf("Seeded %d products across %d categories", len(seeds), len(categories)+1)
		return nil
	})
}
