package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Story struct {
	ID        uint32 `gorm:"primaryKey;autoIncrement:false"`
	Story     string
	UpdatedAt int64
}

func SetStory(tx *gorm.DB, uid uint32, story string) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&Story{ID: uid, Story: story, UpdatedAt: time.Now().Unix()}).Error
}

func GetStory(tx *gorm.DB, uid uint32) (*string, error) {
	s, err := first[Story](tx, "id = ?", uid)
	if s == nil || err != nil {
		return nil, err
	}
	return &s.Story, nil
}

type History struct {
	ID                   uint32 `gorm:"primaryKey;autoIncrement:false" json:"-"`
	LocationSpecificInfo string `json:"location_specific_info"`
	DescriptiveHistory   string `json:"descriptive_history"`
	UpdatedAt            int64  `json:"-"`
}

func SetHistory(tx *gorm.DB, h *History) error {
	h.UpdatedAt = time.Now().Unix()
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(h).Error
}

func GetHistory(tx *gorm.DB, uid uint32) (*History, error) {
	return first[History](tx, "id = ?", uid)
}

type FAQ struct {
	ID        uint64 `gorm:"primaryKey" json:"-"`
	ProductID uint32 `gorm:"index" json:"-"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

func AppendFAQs(tx *gorm.DB, uid uint32, faqs []FAQ) error {
	if len(faqs) == 0 {
		return nil
	}
	for i := range faqs {
		faqs[i].ID = 0
		faqs[i].ProductID = uid
	}
	return tx.Create(&faqs).Error
}

func GetFAQs(tx *gorm.DB, uid uint32) (result []FAQ, err error) {
	err = tx.Where("product_id = ?", uid).Order("id").Find(&result).Error
	return
}

// ProcessingMetadata is an audit row per generation call, never updated
type ProcessingMetadata struct {
	ID             uint64   `gorm:"primaryKey" json:"-"`
	ProductID      uint32   `gorm:"index" json:"-"`
	Status         string   `gorm:"type:varchar(20)" json:"status"`
	Message        string   `json:"message"`
	Error          *string  `json:"error,omitempty"`
	ProcessingTime *float64 `json:"processing_time,omitempty"`
	CreatedAt      int64    `json:"created_at"`
}

func AddProcessingMetadata(tx *gorm.DB, uid uint32, m ProcessingMetadata) error {
	m.ID = 0
	m.ProductID = uid
	if m.CreatedAt == 0 {
		m.CreatedAt = time.Now().Unix()
	}
	return tx.Create(&m).Error
}

func GetProcessingMetadata(tx *gorm.DB, uid uint32) (result []ProcessingMetadata, err error) {
	err = tx.Where("product_id = ?", uid).Order("id").Find(&result).Error
	return
}

// ArtisanInput is what the artisan submitted, along with the augmented description sent for generation
type ArtisanInput struct {
	ID                   uint32 `gorm:"primaryKey;autoIncrement:false" json:"-"`
	ProductDescription   string `json:"product_description"`
	AugmentedDescription string `json:"augmented_description"`
	TargetAudience       string `json:"target_audience"`
	Tone                 string `json:"tone"`
	Language             string `gorm:"type:varchar(10)" json:"language"`
	Keywords             string `json:"keywords"`
	CreatedAt            int64  `json:"-"`
}

func SetArtisanInput(tx *gorm.DB, in *ArtisanInput) error {
	in.CreatedAt = time.Now().Unix()
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(in).Error
}

func GetArtisanInput(tx *gorm.DB, uid uint32) (*ArtisanInput, error) {
	return first[ArtisanInput](tx, "id = ?", uid)
}
