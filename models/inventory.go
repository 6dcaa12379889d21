package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type InventoryRecommendation struct {
	ID        uint32   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ArtForms  string   `json:"art_forms"`
	Holidays  []string `gorm:"serializer:json" json:"holidays"`
	Items     []string `gorm:"serializer:json" json:"items"`
	Reasons   []string `gorm:"serializer:json" json:"reasons"`
	CreatedAt int64    `json:"created_at"`
}

func JoinArtForms(forms []string) string {
	return strings.Join(forms, ", ")
}

// ReplaceInventory deletes any previous recommendation for the product and inserts rec
func ReplaceInventory(tx *gorm.DB, rec *InventoryRecommendation) error {
	rec.CreatedAt = time.Now().Unix()
	return tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", rec.ID).Delete(&InventoryRecommendation{}).Error; err != nil {
			return err
		}
		return tx.Create(rec).Error
	})
}

func GetInventory(tx *gorm.DB, uid uint32) (*InventoryRecommendation, error) {
	return first[InventoryRecommendation](tx, "id = ?", uid)
}
