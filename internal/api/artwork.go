package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation

	"artspace/internal/db"      // Store operations
	"artspace/internal/domain"  // Importing domain models
	"artspace/internal/storage" // Asset store
	"artspace/internal/utils"   // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// ArtworkResponse is one record of the public listing
type ArtworkResponse struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Price    int    `json:"price"`
	Category string `json:"category"`
	Artist   string `json:"artist"`
	Owner    string `json:"owner"`
	Img      string `json:"img"` // Public image path
	IsSold   bool   `json:"isSold"`
	Sales    int    `json:"sales"`
	Caption  string `json:"caption"`
}

func newArtworkResponse(a *domain.Artwork) ArtworkResponse {
	return ArtworkResponse{
		ID:       a.ID,
		Title:    a.Title,
		Price:    a.Price,
		Category: a.Category,
		Artist:   a.Artist,
		Owner:    a.Owner,
		Img:      a.ImageURL(),
		IsSold:   a.IsSold,
		Sales:    a.Sales,
		Caption:  a.Caption,
	}
}

// ListArtworksHandler returns every artwork, newest first
func ListArtworksHandler(gdb *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var cached []ArtworkResponse
		// If cached data found, return it
		if found, err := utils.GetCache(ctx, rdb, utils.CacheKeyArtworks, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		} else if err != nil {
			logrus.WithField("error", err.Error()).Warn("Artwork cache read failed")
		}
		var arts []domain.Artwork
		if err := gdb.Order("id desc").Find(&arts).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to list artworks")
			fail(c, http.StatusInternalServerError, "")
			return
		}
		resp := make([]ArtworkResponse, len(arts))
		for i := range arts {
			resp[i] = newArtworkResponse(&arts[i])
		}
		if err := utils.SetCache(ctx, rdb, utils.CacheKeyArtworks, resp, utils.CacheTTL); err != nil {
			logrus.WithField("error", err.Error()).Warn("Artwork cache write failed")
		}
		c.JSON(http.StatusOK, resp)
	}
}

// UploadHandler stores the image and lists a new artwork owned by its artist
func UploadHandler(gdb *gorm.DB, assets storage.AssetStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("image")
		if err != nil {
			fail(c, http.StatusBadRequest, "image is required")
			return
		}
		title := strings.TrimSpace(c.PostForm("title"))
		if title == "" {
			fail(c, http.StatusBadRequest, "title is required")
			return
		}
		price, err := strconv.Atoi(strings.TrimSpace(c.PostForm("price")))
		if err != nil {
			fail(c, http.StatusBadRequest, "price must be a whole number")
			return
		}
		ctx := c.Request.Context()
		filename := utils.ArtworkFilename(file.Filename)
		src, err := file.Open()
		if err != nil {
			fail(c, http.StatusBadRequest, "image is unreadable")
			return
		}
		defer src.Close()
		if err := assets.Save(ctx, storage.FolderArtworks, filename, src, file.Size, file.Header.Get("Content-Type")); err != nil {
			logrus.WithFields(logrus.Fields{
				"file":  filename,    // Generated filename
				"error": err.Error(), // Error message
			}).Error("Failed to save artwork image")
			fail(c, http.StatusInternalServerError, "")
			return
		}
		artist := c.PostForm("artist")
		art := domain.Artwork{
			Title:     title,
			Price:     price,
			Category:  c.PostForm("category"),
			Artist:    artist,
			Owner:     artist, // The artist owns the piece until it is bought
			ImageFile: filename,
		}
		if err := gdb.Create(&art).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"file":  filename,    // Generated filename
				"error": err.Error(), // Error message
			}).Error("Failed to create artwork")
			removeAsset(c, assets, storage.FolderArtworks, filename) // No row points at it
			fail(c, http.StatusInternalServerError, "")
			return
		}
		logrus.WithFields(logrus.Fields{
			"artwork_id": art.ID,   // New artwork ID
			"artist":     artist,   // Creator
			"file":       filename, // Stored image
		}).Info("Artwork uploaded")
		invalidate(ctx, rdb, utils.CacheKeyArtworks)
		c.JSON(http.StatusCreated, gin.H{"success": true, "id": art.ID})
	}
}

// BuyHandler records a purchase: saves the slip and transfers ownership to the buyer.
// With allowResale false a sold artwork cannot be bought again.
func BuyHandler(gdb *gorm.DB, assets storage.AssetStore, rdb *redis.Client, allowResale bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(strings.TrimSpace(c.PostForm("id")), 10, 64)
		if err != nil || id == 0 {
			fail(c, http.StatusBadRequest, "id is required")
			return
		}
		buyer := strings.TrimSpace(c.PostForm("buyer"))
		if buyer == "" {
			fail(c, http.StatusBadRequest, "buyer is required")
			return
		}
		slip, err := c.FormFile("slip")
		if err != nil {
			fail(c, http.StatusBadRequest, "slip is required")
			return
		}
		art, err := db.FindArtwork(gdb, uint(id))
		if errors.Is(err, db.ErrNotFound) {
			fail(c, http.StatusNotFound, "")
			return
		} else if err != nil {
			logrus.WithField("error", err.Error()).Error("Artwork lookup failed")
			fail(c, http.StatusInternalServerError, "")
			return
		}
		if art.IsSold && !allowResale {
			fail(c, http.StatusConflict, MsgAlreadySold)
			return
		}
		ctx := c.Request.Context()
		slipName := utils.SlipFilename(art.ID, slip.Filename)
		src, err := slip.Open()
		if err != nil {
			fail(c, http.StatusBadRequest, "slip is unreadable")
			return
		}
		defer src.Close()
		if err := assets.Save(ctx, storage.FolderSlips, slipName, src, slip.Size, slip.Header.Get("Content-Type")); err != nil {
			logrus.WithFields(logrus.Fields{
				"artwork_id": art.ID,      // Artwork ID
				"error":      err.Error(), // Error message
			}).Error("Failed to save slip")
			fail(c, http.StatusInternalServerError, "")
			return
		}
		updated, err := db.Purchase(gdb, art.ID, buyer, slipName, allowResale)
		if err != nil {
			removeAsset(c, assets, storage.FolderSlips, slipName)
			switch {
			case errors.Is(err, db.ErrAlreadySold):
				fail(c, http.StatusConflict, MsgAlreadySold) // Lost a race with another buyer
			case errors.Is(err, db.ErrNotFound):
				fail(c, http.StatusNotFound, "")
			default:
				logrus.WithFields(logrus.Fields{
					"artwork_id": art.ID,      // Artwork ID
					"error":      err.Error(), // Error message
				}).Error("Purchase failed")
				fail(c, http.StatusInternalServerError, "")
			}
			return
		}
		logrus.WithFields(logrus.Fields{
			"artwork_id": updated.ID,    // Artwork ID
			"buyer":      buyer,         // New owner
			"sales":      updated.Sales, // Sales counter after this purchase
			"slip":       slipName,      // Stored slip
		}).Info("Artwork purchased")
		invalidate(ctx, rdb, utils.CacheKeyArtworks)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// EditRequest changes price and caption of an unsold artwork
type EditRequest struct {
	ID      FlexInt  `json:"id" binding:"required"`
	Price   *FlexInt `json:"price" binding:"required"`
	Caption *string  `json:"caption" binding:"required"` // Present but possibly empty
}

// EditHandler updates price and caption while the artwork is unsold
func EditHandler(gdb *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logrus.WithField("error", err.Error()).Warn("Edit request rejected")
			fail(c, http.StatusBadRequest, "")
			return
		}
		id, ok := req.ID.ID()
		if !ok {
			fail(c, http.StatusBadRequest, "")
			return
		}
		err := db.UpdateListing(gdb, id, int(*req.Price), *req.Caption)
		switch {
		case errors.Is(err, db.ErrAlreadySold):
			fail(c, http.StatusConflict, MsgSoldNoEdit)
			return
		case errors.Is(err, db.ErrNotFound):
			fail(c, http.StatusNotFound, "")
			return
		case err != nil:
			logrus.WithFields(logrus.Fields{
				"artwork_id": id,          // Artwork ID
				"error":      err.Error(), // Error message
			}).Error("Edit failed")
			fail(c, http.StatusInternalServerError, "")
			return
		}
		logrus.WithFields(logrus.Fields{
			"artwork_id": id,              // Artwork ID
			"price":      int(*req.Price), // New price
		}).Info("Artwork edited")
		invalidate(c.Request.Context(), rdb, utils.CacheKeyArtworks)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// IDRequest carries a single artwork id
type IDRequest struct {
	ID FlexInt `json:"id" binding:"required"`
}

// DeleteArtworkHandler removes an artwork and, best effort, its image.
// The payment slip is kept.
func DeleteArtworkHandler(gdb *gorm.DB, assets storage.AssetStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IDRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "")
			return
		}
		id, ok := req.ID.ID()
		if !ok {
			fail(c, http.StatusNotFound, "")
			return
		}
		art, err := db.DeleteArtwork(gdb, id)
		if errors.Is(err, db.ErrNotFound) {
			fail(c, http.StatusNotFound, "")
			return
		} else if err != nil {
			logrus.WithFields(logrus.Fields{
				"artwork_id": id,          // Artwork ID
				"error":      err.Error(), // Error message
			}).Error("Delete artwork failed")
			fail(c, http.StatusInternalServerError, "")
			return
		}
		if art.ImageFile != "" {
			removeAsset(c, assets, storage.FolderArtworks, art.ImageFile)
		}
		logrus.WithField("artwork_id", id).Info("Artwork deleted")
		invalidate(c.Request.Context(), rdb, utils.CacheKeyArtworks)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// removeAsset deletes a stored file, logging instead of failing the request
func removeAsset(c *gin.Context, assets storage.AssetStore, folder, name string) {
	if err := assets.Remove(c.Request.Context(), folder, name); err != nil {
		logrus.WithFields(logrus.Fields{
			"folder": folder,      // Asset folder
			"file":   name,        // Asset name
			"error":  err.Error(), // Error message
		}).Warn("Asset removal failed")
	}
}
