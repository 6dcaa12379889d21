package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Attribute string

const (
	AttributeStyle           Attribute = "style"
	AttributeOrigin          Attribute = "origin"
	AttributePredictedArtist Attribute = "predicted_artist"
	AttributeMedium          Attribute = "medium"
	AttributeThemes          Attribute = "themes"
	AttributeColors          Attribute = "colors"
)

// ProductAttributes is filled in by classification. Every field is optional
// since each one is written on its own
type ProductAttributes struct {
	ID              uint32  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Style           *string `json:"style,omitempty"`
	Origin          *string `json:"origin,omitempty"`
	PredictedArtist *string `json:"predicted_artist,omitempty"`
	Medium          *string `json:"medium,omitempty"`
	Themes          *string `json:"themes,omitempty"`
	Colors          *string `json:"colors,omitempty"`
	UpdatedAt       int64   `json:"-"`
}

func (a *ProductAttributes) field(attr Attribute) (**string, error) {
	switch attr {
	case AttributeStyle:
		return &a.Style, nil
	case AttributeOrigin:
		return &a.Origin, nil
	case AttributePredictedArtist:
		return &a.PredictedArtist, nil
	case AttributeMedium:
		return &a.Medium, nil
	case AttributeThemes:
		return &a.Themes, nil
	case AttributeColors:
		return &a.Colors, nil
	}
	return nil, fmt.Errorf("unknown attribute %q", attr)
}

// Get returns "" for unset attributes
func (a *ProductAttributes) Get(attr Attribute) string {
	if a == nil {
		return ""
	}
	f, err := a.field(attr)
	if err != nil || *f == nil {
		return ""
	}
	return **f
}

// SetAttribute upserts one attribute, leaving the others untouched
func SetAttribute(tx *gorm.DB, uid uint32, attr Attribute, value string) error {
	rec := ProductAttributes{ID: uid, UpdatedAt: time.Now().Unix()}
	f, err := rec.field(attr)
	if err != nil {
		return err
	}
	*f = &value
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{string(attr), "updated_at"}),
	}).Create(&rec).Error
}

func GetAttributes(tx *gorm.DB, uid uint32) (*ProductAttributes, error) {
	return first[ProductAttributes](tx, "id = ?", uid)
}

type Pricing struct {
	ID        uint32 `gorm:"primaryKey;autoIncrement:false"`
	Price     float64
	UpdatedAt int64
}

func SetPrice(tx *gorm.DB, uid uint32, price float64) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&Pricing{ID: uid, Price: price, UpdatedAt: time.Now().Unix()}).Error
}

func GetPrice(tx *gorm.DB, uid uint32) (*float64, error) {
	p, err := first[Pricing](tx, "id = ?", uid)
	if p == nil || err != nil {
		return nil, err
	}
	return &p.Price, nil
}
