package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductPrice is one pricing row for a tier. A nil RangeKey marks a scalar tier price;
// otherwise the row is a breakpoint and Position keeps declaration order. A NULL price
// is only stored for breakpoints whose price could not be read.
type ProductPrice struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID           `gorm:"column:product_id;type:uuid;not null;index"`
	Tier      string              `gorm:"column:tier;not null"`
	RangeKey  *string             `gorm:"column:range_key"`
	Price     decimal.NullDecimal `gorm:"column:price;type:numeric(12,4)"`
	Position  int                 `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the primary key when the caller has not.
func (p *ProductPrice) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
