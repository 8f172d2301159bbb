package gallery

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/atomic"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/miraveja/miraveja/metadata"
	"github.com/miraveja/miraveja/util"
	"github.com/miraveja/miraveja/util/helper"
	"github.com/miraveja/miraveja/util/stringutil"
)

type Server struct {
	db         *gorm.DB
	extractor  *metadata.Extractor
	storageDir string
}

func NewServer(db *gorm.DB, extractor *metadata.Extractor, storageDir string) *Server {
	return &Server{db: db, extractor: extractor, storageDir: storageDir}
}

type imageSummary struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Format string `json:"format"`
	Prompt string `json:"prompt,omitempty"`
}

func (s *Server) summarize(image ImageMetadata) imageSummary {
	summary := imageSummary{
		ID:     image.ID,
		Title:  image.Title,
		Format: image.Format,
	}
	if image.Generation != nil {
		summary.Prompt = image.Generation.Prompt
	}
	return summary
}

// uploadImage stores the uploaded file, runs metadata extraction on its bytes
// and persists the aggregate. Extraction is best-effort enrichment: it can
// not fail the upload.
func (s *Server) uploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload failed", "details": err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file", "details": err.Error()})
		return
	}

	contentHash := sha256.Sum256(data)
	outputPath, err := helper.GetNewFilePath(s.storageDir, header.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to allocate file path", "details": err.Error()})
		return
	}
	if err := atomic.WriteFile(outputPath, bytes.NewReader(data)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file", "details": err.Error()})
		return
	}

	meta, report := s.extractor.Extract(c.Request.Context(), data)

	image := ImageMetadata{
		Title:            stringutil.CleanTitle(c.PostForm("title")),
		Subtitle:         stringutil.CleanTitle(c.PostForm("subtitle")),
		Description:      c.PostForm("description"),
		FileName:         fmt.Sprintf("%s-%s", hex.EncodeToString(contentHash[:])[:12], header.Filename),
		OriginalFileName: header.Filename,
		FilePath:         outputPath,
		Format:           string(report.Format),
		ContentHash:      hex.EncodeToString(contentHash[:]),
	}

	if !meta.IsEmpty() {
		record := &GenerationRecord{
			Prompt:         meta.Prompt,
			NegativePrompt: meta.NegativePrompt,
			Seed:           meta.Seed,
			ModelName:      meta.Model,
			Sampler:        meta.Sampler,
			Scheduler:      meta.Scheduler,
			Steps:          meta.Steps,
			CfgScale:       meta.CfgScale,
		}
		if size, err := ParseSize(meta.Size); err == nil {
			record.Width = size.Width
			record.Height = size.Height
		}
		for _, ref := range meta.Loras {
			if ref.Hash == "" {
				// Unresolved reference; nothing stable to key the registry by.
				continue
			}
			lora, err := findOrRegisterLora(s.db, ref.Hash, ref.Name, ref.ID)
			if err != nil {
				log.Errorf("failed to register lora %q: %v", ref.Hash, err)
				continue
			}
			record.Loras = append(record.Loras, *lora)
		}
		image.Generation = record
	}

	if err := s.db.Create(&image).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save image metadata", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       image.ID,
		"metadata": meta,
		"report":   report,
	})
}

func (s *Server) listImages(c *gin.Context) {
	limit := util.ParseInt(c.Query("limit"), 50)
	offset := util.ParseInt(c.Query("offset"), 0)

	query := s.db.Model(&ImageMetadata{}).Preload("Generation").
		Limit(limit).Offset(offset).Order("t_image_metadata.id desc")
	if q := c.Query("q"); q != "" {
		query = query.
			Joins("left join t_generation_metadata on t_generation_metadata.image_metadata_id = t_image_metadata.id").
			Where("t_generation_metadata.prompt LIKE ? OR t_image_metadata.title LIKE ?", "%"+q+"%", "%"+q+"%")
	}

	var images []ImageMetadata
	if err := query.Find(&images).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list images", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": util.Map(images, s.summarize)})
}

func (s *Server) getImage(c *gin.Context) {
	var image ImageMetadata
	if err := s.db.Preload("Generation.Loras").First(&image, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "image not found"})
		return
	}
	c.JSON(http.StatusOK, image)
}

func (s *Server) getImageFile(c *gin.Context) {
	var image ImageMetadata
	if err := s.db.First(&image, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "image not found"})
		return
	}
	c.File(image.FilePath)
}

type updateImageRequest struct {
	Title       *string `json:"title"`
	Subtitle    *string `json:"subtitle"`
	Description *string `json:"description"`
}

func (s *Server) updateImage(c *gin.Context) {
	var req updateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	var image ImageMetadata
	if err := s.db.First(&image, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "image not found"})
		return
	}

	if req.Title != nil {
		image.Title = stringutil.CleanTitle(*req.Title)
	}
	if req.Subtitle != nil {
		image.Subtitle = stringutil.CleanTitle(*req.Subtitle)
	}
	if req.Description != nil {
		image.Description = *req.Description
	}
	if err := s.db.Save(&image).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update image", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, image)
}

func (s *Server) getLoraByHash(c *gin.Context) {
	var lora LoraMetadata
	if err := s.db.Where("hash = ?", c.Param("hash")).First(&lora).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "lora not found"})
		return
	}
	c.JSON(http.StatusOK, lora)
}
