package productcontroller

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Adeleye080/DShop/apperr"
	"github.com/Adeleye080/DShop/models"
)

// UploadDir resolves the product-image directory from the environment.
func UploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "./uploads/products"
}

// POST /admin/products/:id/upload-image
func UploadProductImage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("product not found"))
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			apperr.Respond(c, apperr.Validation("image file is required"))
			return
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		switch ext {
		case ".png", ".jpg", ".jpeg", ".webp":
		default:
			apperr.Respond(c, apperr.Validation("unsupported image type"))
			return
		}

		saveDir := UploadDir()
		if err := os.MkdirAll(saveDir, 0o755); err != nil {
			apperr.Respond(c, err)
			return
		}

		filename := fmt.Sprintf("product_%d%s", product.ID, ext)
		if err := c.SaveUploadedFile(file, filepath.Join(saveDir, filename)); err != nil {
			apperr.Respond(c, err)
			return
		}

		// Served by the /uploads static mount over UploadDir.
		imageURL := "/uploads/" + filename
		if err := db.Model(&product).Update("image_url", imageURL).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
