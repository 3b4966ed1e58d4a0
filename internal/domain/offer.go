package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Offer is a piece of promotional content shown on the dashboard.
type Offer struct {
	OfferID     uuid.UUID  `gorm:"column:offer_id;type:uuid;primaryKey" json:"offerId"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	ImageURL    *string    `gorm:"column:image_url" json:"imageUrl"`
	ValidFrom   time.Time  `gorm:"column:valid_from;not null" json:"validFrom"`
	ValidTo     *time.Time `gorm:"column:valid_to" json:"validTo"`
	IsActive    bool       `gorm:"column:is_active;not null" json:"isActive"`
	Audit       `gorm:"embedded"`
}

func (Offer) TableName() string {
	return "offers"
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.OfferID == uuid.Nil {
		o.OfferID = uuid.New()
	}
	return nil
}

// LiveAt reports whether the offer is active and inside its validity window.
func (o Offer) LiveAt(t time.Time) bool {
	if !o.IsActive || t.Before(o.ValidFrom) {
		return false
	}
	return o.ValidTo == nil || !t.After(*o.ValidTo)
}
