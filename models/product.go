package models

import (
	"github.com/TwoX-In/GenAI-Hackathon/utils"
	"gorm.io/gorm"
)

type ImageView struct {
	Tag      int    `json:"tag"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Product is everything stored for one uid, binary data base64 encoded
type Product struct {
	ProductAttributes
	Price        *float64                 `json:"price,omitempty"`
	InputImages  []ImageView              `json:"input_images"`
	OutputImages []ImageView              `json:"output_images"`
	Story        *string                  `json:"story,omitempty"`
	History      *History                 `json:"history,omitempty"`
	FAQs         []FAQ                    `json:"faqs"`
	Processing   []ProcessingMetadata     `json:"processing_metadata"`
	Inventory    *InventoryRecommendation `json:"inventory,omitempty"`
	ArtisanInput *ArtisanInput            `json:"artisan_input,omitempty"`
	RawVideo     string                   `json:"raw_video,omitempty"`
	EditedVideo  string                   `json:"edited_video,omitempty"`
	Artifacts    map[ArtifactKind]string  `json:"artifacts"`
}

func imageViews(images []ProductImage) []ImageView {
	result := make([]ImageView, 0, len(images))
	for _, img := range images {
		result = append(result, ImageView{Tag: img.Tag, MimeType: img.MimeType, Data: utils.EncodeBinary(img.Data)})
	}
	return result
}

// LoadProduct reads the full record set of a product. Products are known by their attributes row
func LoadProduct(tx *gorm.DB, uid uint32) (*Product, error) {
	attrs, err := GetAttributes(tx, uid)
	if err != nil {
		return nil, err
	}
	if attrs == nil {
		return nil, ErrProductNotFound
	}
	p := &Product{ProductAttributes: *attrs, Artifacts: map[ArtifactKind]string{}}
	if p.Price, err = GetPrice(tx, uid); err != nil {
		return nil, err
	}
	for kind, dest := range map[ImageKind]*[]ImageView{ImageInput: &p.InputImages, ImageOutput: &p.OutputImages} {
		images, err := GetImages(tx, uid, kind)
		if err != nil {
			return nil, err
		}
		*dest = imageViews(images)
	}
	if p.Story, err = GetStory(tx, uid); err != nil {
		return nil, err
	}
	if p.History, err = GetHistory(tx, uid); err != nil {
		return nil, err
	}
	if p.FAQs, err = GetFAQs(tx, uid); err != nil {
		return nil, err
	}
	if p.Processing, err = GetProcessingMetadata(tx, uid); err != nil {
		return nil, err
	}
	if p.Inventory, err = GetInventory(tx, uid); err != nil {
		return nil, err
	}
	if p.ArtisanInput, err = GetArtisanInput(tx, uid); err != nil {
		return nil, err
	}
	for kind, dest := range map[VideoKind]*string{VideoRaw: &p.RawVideo, VideoEdited: &p.EditedVideo} {
		data, err := GetVideo(tx, uid, kind)
		if err != nil {
			return nil, err
		}
		*dest = utils.EncodeBinary(data)
	}
	artifacts, err := GetArtifacts(tx, uid)
	if err != nil {
		return nil, err
	}
	for _, a := range artifacts {
		p.Artifacts[a.Kind] = utils.EncodeBinary(a.Data)
	}
	return p, nil
}

type ProductSummary struct {
	ID              uint32   `json:"id"`
	Style           *string  `json:"style,omitempty"`
	PredictedArtist *string  `json:"predicted_artist,omitempty"`
	Origin          *string  `json:"origin,omitempty"`
	Price           *float64 `json:"price,omitempty"`
}

func ListProducts(tx *gorm.DB, offset, limit int) (result []ProductSummary, err error) {
	err = tx.Model(&ProductAttributes{}).
		Select("product_attributes.id, product_attributes.style, product_attributes.predicted_artist, product_attributes.origin, pricings.price").
		Joins("LEFT JOIN pricings ON pricings.id = product_attributes.id").
		Order("product_attributes.updated_at DESC").
		Offset(offset).Limit(limit).
		Scan(&result).Error
	return
}
