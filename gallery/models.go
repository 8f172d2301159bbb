package gallery

import (
	"gorm.io/gorm"
)

// ImageMetadata is the stored aggregate for one uploaded image.
type ImageMetadata struct {
	gorm.Model
	Title            string
	Subtitle         string
	Description      string `gorm:"size:2000"`
	FileName         string `gorm:"uniqueIndex"`
	OriginalFileName string
	FilePath         string
	Format           string
	ContentHash      string `gorm:"index"`

	Generation *GenerationRecord
}

// Table names follow the original schema convention.
func (ImageMetadata) TableName() string { return "t_image_metadata" }

// GenerationRecord stores the generation parameters recovered from the image
// file. Immutable after creation.
type GenerationRecord struct {
	gorm.Model
	ImageMetadataID uint   `gorm:"uniqueIndex"`
	Prompt          string `gorm:"size:2000"`
	NegativePrompt  string `gorm:"size:2000"`
	Seed            string
	ModelName       string `gorm:"column:model"`
	Sampler         string
	Scheduler       string
	Steps           int
	CfgScale        float64
	Width           int
	Height          int

	Loras []LoraMetadata `gorm:"many2many:t_generation_loras;"`
}

func (GenerationRecord) TableName() string { return "t_generation_metadata" }

// LoraMetadata is the lora registry, keyed by hash: the same lora referenced
// by many generations is stored once.
type LoraMetadata struct {
	gorm.Model
	Hash      string `gorm:"uniqueIndex"`
	Name      string
	VersionID int64
}

func (LoraMetadata) TableName() string { return "t_lora_metadata" }

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&ImageMetadata{}, &GenerationRecord{}, &LoraMetadata{})
}

// findOrRegisterLora returns the stored lora with the given hash, creating it
// when unseen.
func findOrRegisterLora(db *gorm.DB, hash string, name string, versionID int64) (*LoraMetadata, error) {
	var lora LoraMetadata
	if err := db.Where("hash = ?", hash).First(&lora).Error; err == nil {
		return &lora, nil
	}
	lora = LoraMetadata{Hash: hash, Name: name, VersionID: versionID}
	if err := db.Create(&lora).Error; err != nil {
		return nil, err
	}
	return &lora, nil
}
