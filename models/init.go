package models

import (
	"errors"

	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// Migrate applies the schema. Called every time a fresh copy of the database is opened
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ProductAttributes{},
		&Pricing{},
		&ProductImage{},
		&Story{},
		&History{},
		&FAQ{},
		&ProcessingMetadata{},
		&Video{},
		&InventoryRecommendation{},
		&Artifact{},
		&ArtisanInput{},
		&ArtifactTasks{},
	)
}

// first wraps First so a missing row is (nil, nil)
func first[T any](tx *gorm.DB, conds ...any) (*T, error) {
	var result T
	err := tx.Take(&result, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
