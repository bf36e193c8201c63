// cmd/seed/main.go — populates an empty store with demo accounts and catalog.
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/infra"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedProduct struct {
	name     string
	desc     string
	price    string
	stock    int
	category int
}

var fixedProducts = []seedProduct{
	{"iPhone 13", "Apple smartphone, 128GB", "999.99", 50, 0},
	{"Samsung Galaxy S21", "Android smartphone, 128GB", "899.99", 30, 0},
	{"Nike Air Max", "Running shoes", "129.99", 100, 1},
	{"Python Programming Book", "Learn Python from scratch", "49.99", 200, 2},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx := context.Background()
	var users int64
	if err := db.WithContext(ctx).Model(&model.User{}).Count(&users).Error; err != nil {
		log.Fatal().Err(err).Msg("count users")
	}
	if users > 0 {
		log.Info().Int64("users", users).Msg("store already seeded, nothing to do")
		return
	}

	if err := db.WithContext(ctx).Transaction(seed); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Msg("seed complete: admin@example.com / admin123, customer@example.com / customer123")
}

func seed(tx *gorm.DB) error {
	admin, err := newUser("admin@example.com", "admin123", "Admin", model.RoleAdmin)
	if err != nil {
		return err
	}
	customer, err := newUser("customer@example.com", "customer123", "Demo Customer", model.RoleCustomer)
	if err != nil {
		return err
	}
	if err := tx.Create([]*model.User{admin, customer}).Error; err != nil {
		return fmt.Errorf("create users: %w", err)
	}

	categories := []*model.Category{
		{Name: "Electronics", Description: "Phones, computers and gadgets"},
		{Name: "Clothing", Description: "Apparel and footwear"},
		{Name: "Books", Description: "Printed and digital books"},
	}
	if err := tx.Create(categories).Error; err != nil {
		return fmt.Errorf("create categories: %w", err)
	}

	specs := append([]seedProduct(nil), fixedProducts...)
	for i := 5; i < 55; i++ {
		price := decimal.NewFromFloat(10 + float64(i)*2.5).Round(2)
		specs = append(specs, seedProduct{
			name:     fmt.Sprintf("Demo Product %d", i),
			desc:     fmt.Sprintf("Generated catalog item number %d", i),
			price:    price.StringFixed(2),
			stock:    100 + i,
			category: i % 3,
		})
	}

	products := make([]*model.Product, 0, len(specs))
	for _, s := range specs {
		price := decimal.RequireFromString(s.price)
		original := price
		products = append(products, &model.Product{
			Name:          s.name,
			Description:   s.desc,
			Price:         price,
			OriginalPrice: &original,
			Stock:         s.stock,
			CategoryID:    &categories[s.category].ID,
			PriceHistory:  model.NewPriceHistory(),
		})
	}
	if err := tx.CreateInBatches(products, 50).Error; err != nil {
		return fmt.Errorf("create products: %w", err)
	}

	return seedOrders(tx, customer.ID, products)
}

// seedOrders places two historical orders so the dashboard has data.
// Stock is left untouched; the seeded quantities are already net of these.
func seedOrders(tx *gorm.DB, userID uint, products []*model.Product) error {
	orders := []struct {
		status model.OrderStatus
		lines  map[int]int
	}{
		{model.OrderPaid, map[int]int{0: 1, 3: 2}},
		{model.OrderPending, map[int]int{2: 1}},
	}
	for _, o := range orders {
		order := &model.Order{UserID: userID, Status: o.status}
		for idx, qty := range o.lines {
			p := products[idx]
			order.Items = append(order.Items, model.OrderItem{ProductID: p.ID, Quantity: qty, Price: p.Price})
		}
		total := decimal.Zero
		for _, it := range order.Items {
			total = total.Add(it.Subtotal())
		}
		order.Total = total.Round(2)
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
	}
	return nil
}

func newUser(email, password, name, role string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, fmt.Errorf("bcrypt: %w", err)
	}
	return &model.User{Email: email, PasswordHash: string(hash), Name: name, Role: role}, nil
}
