package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/storefront-pricing/internal/pricing"
	"github.com/angelmondragon/storefront-pricing/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository serves the catalog from the relational store.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// LookupProduct loads the product and its pricing rows by sku.
func (r *Repository) LookupProduct(ctx context.Context, sku string) (*Product, error) {
	var record models.Product
	err := r.db.WithContext(ctx).
		Preload("Prices", func(db *gorm.DB) *gorm.DB {
			return db.Order("tier ASC").Order("position ASC")
		}).
		First(&record, "sku = ?", strings.TrimSpace(sku)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	product := fromModel(record)
	return &product, nil
}

// ListProducts returns every product ordered by sku.
func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	var records []models.Product
	err := r.db.WithContext(ctx).
		Preload("Prices", func(db *gorm.DB) *gorm.DB {
			return db.Order("tier ASC").Order("position ASC")
		}).
		Order("sku ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(records))
	for _, rec := range records {
		out = append(out, fromModel(rec))
	}
	return out, nil
}

// UpsertProducts creates or refreshes products by sku, replacing their pricing rows.
func (r *Repository) UpsertProducts(ctx context.Context, products []Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range products {
			if err := upsertProduct(tx, p); err != nil {
				return fmt.Errorf("upsert %s: %w", p.SKU, err)
			}
		}
		return nil
	})
}

func upsertProduct(tx *gorm.DB, p Product) error {
	incoming := toModel(p)

	var existing models.Product
	err := tx.First(&existing, "sku = ?", incoming.SKU).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		prices := incoming.Prices
		incoming.Prices = nil
		if err := tx.Create(&incoming).Error; err != nil {
			return err
		}
		return replacePrices(tx, incoming.ID, prices)
	case err != nil:
		return err
	}

	existing.Name = incoming.Name
	existing.Description = incoming.Description
	existing.Image = incoming.Image
	if err := tx.Model(&existing).Select("name", "description", "image", "updated_at").Updates(&existing).Error; err != nil {
		return err
	}
	return replacePrices(tx, existing.ID, incoming.Prices)
}

func replacePrices(tx *gorm.DB, productID uuid.UUID, prices []models.ProductPrice) error {
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductPrice{}).Error; err != nil {
		return err
	}
	if len(prices) == 0 {
		return nil
	}
	for i := range prices {
		prices[i].ProductID = productID
	}
	return tx.Create(&prices).Error
}

func toModel(p Product) models.Product {
	record := models.Product{
		SKU:         strings.TrimSpace(p.SKU),
		Name:        p.Name,
		Description: optionalString(p.Description),
		Image:       optionalString(p.Image),
	}
	for _, tier := range p.Pricing.Tiers() {
		table := p.Pricing[tier]
		if price, ok := table.ScalarPrice(); ok {
			record.Prices = append(record.Prices, models.ProductPrice{Tier: tier, Price: decimal.NewNullDecimal(price)})
			continue
		}
		for i, bp := range table.Entries() {
			key := bp.Key
			record.Prices = append(record.Prices, models.ProductPrice{
				Tier:     tier,
				RangeKey: &key,
				Price:    decimal.NullDecimal{Decimal: bp.Price, Valid: bp.Priced},
				Position: i,
			})
		}
	}
	return record
}

func fromModel(record models.Product) Product {
	rows := make([]models.ProductPrice, len(record.Prices))
	copy(rows, record.Prices)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Tier != rows[j].Tier {
			return rows[i].Tier < rows[j].Tier
		}
		return rows[i].Position < rows[j].Position
	})

	scalars := map[string]pricing.Table{}
	entries := map[string][]pricing.Breakpoint{}
	for _, row := range rows {
		if row.RangeKey == nil {
			// The first scalar row wins over any breakpoint rows for the tier.
			if _, seen := scalars[row.Tier]; !seen && row.Price.Valid {
				scalars[row.Tier] = pricing.Scalar(row.Price.Decimal)
			}
			continue
		}
		if !row.Price.Valid {
			entries[row.Tier] = append(entries[row.Tier], pricing.UnpricedBreakpoint(*row.RangeKey))
			continue
		}
		entries[row.Tier] = append(entries[row.Tier], pricing.NewBreakpoint(*row.RangeKey, row.Price.Decimal))
	}

	schedule := pricing.Schedule{}
	for tier, list := range entries {
		schedule[tier] = pricing.Breakpoints(list...)
	}
	for tier, table := range scalars {
		schedule[tier] = table
	}

	return Product{
		SKU:         record.SKU,
		Name:        record.Name,
		Description: derefString(record.Description),
		Image:       derefString(record.Image),
		Pricing:     schedule,
	}
}

func optionalString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	v := value
	return &v
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
