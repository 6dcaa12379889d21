package models

import (
	"time"

	"github.com/gabriel-vasile/mimetype"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ImageKind string

const (
	ImageInput  ImageKind = "input"
	ImageOutput ImageKind = "output"
)

// ProductImage rows of one kind form an ordered sequence, Tag is the display order
type ProductImage struct {
	ID        uint64    `gorm:"primaryKey"`
	ProductID uint32    `gorm:"index:idx_product_image,priority:1"`
	Kind      ImageKind `gorm:"type:varchar(10);index:idx_product_image,priority:2"`
	Tag       int
	MimeType  string `gorm:"type:varchar(50)"`
	Data      []byte
}

// AppendImages stores images after any existing ones of the same kind
func AppendImages(tx *gorm.DB, uid uint32, kind ImageKind, images ...[]byte) error {
	if len(images) == 0 {
		return nil
	}
	var maxTag int
	err := tx.Model(&ProductImage{}).
		Where("product_id = ? AND kind = ?", uid, kind).
		Select("COALESCE(MAX(tag), 0)").
		Scan(&maxTag).Error
	if err != nil {
		return err
	}
	rows := make([]ProductImage, 0, len(images))
	for i, data := range images {
		rows = append(rows, ProductImage{
			ProductID: uid,
			Kind:      kind,
			Tag:       maxTag + i + 1,
			MimeType:  mimetype.Detect(data).String(),
			Data:      data,
		})
	}
	return tx.Create(&rows).Error
}

func GetImages(tx *gorm.DB, uid uint32, kind ImageKind) (result []ProductImage, err error) {
	err = tx.Where("product_id = ? AND kind = ?", uid, kind).Order("tag").Find(&result).Error
	return
}

type VideoKind string

const (
	VideoRaw    VideoKind = "raw"
	VideoEdited VideoKind = "edited"
)

// Video holds at most one raw (silent source) and one edited (narrated) video per product
type Video struct {
	ProductID uint32    `gorm:"primaryKey;autoIncrement:false"`
	Kind      VideoKind `gorm:"primaryKey;type:varchar(10)"`
	Data      []byte
	UpdatedAt int64
}

func SetVideo(tx *gorm.DB, uid uint32, kind VideoKind, data []byte) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&Video{ProductID: uid, Kind: kind, Data: data, UpdatedAt: time.Now().Unix()}).Error
}

// GetVideo returns nil when there is no video of that kind
func GetVideo(tx *gorm.DB, uid uint32, kind VideoKind) ([]byte, error) {
	v, err := first[Video](tx, "product_id = ? AND kind = ?", uid, kind)
	if v == nil || err != nil {
		return nil, err
	}
	return v.Data, nil
}

type ArtifactKind string

const (
	ArtifactBanner    ArtifactKind = "banner"
	ArtifactThumbnail ArtifactKind = "thumbnail"
	ArtifactComic     ArtifactKind = "comic"
)

var ArtifactKinds = []ArtifactKind{ArtifactBanner, ArtifactThumbnail, ArtifactComic}

// Artifact is a derived image, regenerating one overwrites it
type Artifact struct {
	ProductID uint32       `gorm:"primaryKey;autoIncrement:false"`
	Kind      ArtifactKind `gorm:"primaryKey;type:varchar(20)"`
	MimeType  string       `gorm:"type:varchar(50)"`
	Data      []byte
	UpdatedAt int64
}

func SetArtifact(tx *gorm.DB, uid uint32, kind ArtifactKind, mimeType string, data []byte) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&Artifact{
		ProductID: uid,
		Kind:      kind,
		MimeType:  mimeType,
		Data:      data,
		UpdatedAt: time.Now().Unix(),
	}).Error
}

func GetArtifact(tx *gorm.DB, uid uint32, kind ArtifactKind) (*Artifact, error) {
	return first[Artifact](tx, "product_id = ? AND kind = ?", uid, kind)
}

func GetArtifacts(tx *gorm.DB, uid uint32) (result []Artifact, err error) {
	err = tx.Where("product_id = ?", uid).Order("kind").Find(&result).Error
	return
}
