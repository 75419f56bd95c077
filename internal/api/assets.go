package api

import (
	"errors"        // Error inspection
	"mime"          // Content type by extension
	"net/http"      // HTTP status codes
	"os"            // File checks
	"path/filepath" // Path handling

	"artspace/internal/storage" // Asset store

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// AssetHandler streams an uploaded file from the asset store
func AssetHandler(assets storage.AssetStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		folder, name := c.Param("folder"), c.Param("name")
		if !storage.ValidFolder(folder) {
			c.Status(http.StatusNotFound)
			return
		}
		rc, err := assets.Open(c.Request.Context(), folder, name)
		if errors.Is(err, storage.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		} else if err != nil {
			logrus.WithFields(logrus.Fields{
				"folder": folder,      // Asset folder
				"file":   name,        // Asset name
				"error":  err.Error(), // Error message
			}).Error("Asset read failed")
			c.Status(http.StatusInternalServerError)
			return
		}
		defer rc.Close()
		contentType := mime.TypeByExtension(filepath.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
	}
}

// IndexHandler serves the storefront page from templateDir
func IndexHandler(templateDir string) gin.HandlerFunc {
	page := filepath.Join(templateDir, "index.html")
	return func(c *gin.Context) {
		if _, err := os.Stat(page); err != nil {
			c.String(http.StatusNotFound, "index.html not found")
			return
		}
		c.File(page)
	}
}
