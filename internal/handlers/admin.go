package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/cybernetics669/nadlan-website/internal/cleanup"
	"github.com/cybernetics669/nadlan-website/internal/database"
	"github.com/cybernetics669/nadlan-website/internal/forms"
	"github.com/cybernetics669/nadlan-website/internal/slug"
	"github.com/cybernetics669/nadlan-website/internal/upload"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles back-office requests
type AdminHandler struct {
	db           database.Store
	saver        upload.Saver
	sweeper      *cleanup.Service
	password     string
	uploadSubdir string
}

// NewAdminHandler creates a new admin handler. sweeper is nil when the
// remote storage backend is active (there are no local files to sweep).
func NewAdminHandler(db database.Store, saver upload.Saver, sweeper *cleanup.Service, password, uploadSubdir string) *AdminHandler {
	return &AdminHandler{
		db:           db,
		saver:        saver,
		sweeper:      sweeper,
		password:     password,
		uploadSubdir: uploadSubdir,
	}
}

// Login checks the shared secret and sets the session cookie.
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	password := strings.TrimSpace(req.Password)
	if password == "" || password != h.password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AdminCookie, h.password, adminCookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"redirect": "/admin/dashboard",
	})
}

// Upload stores a submitted file and returns its public URL.
func (h *AdminHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("[Admin] Failed to open upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}
	defer file.Close()

	url, err := h.saver.Save(fileHeader.Filename, file, h.uploadSubdir)
	if err != nil {
		log.Printf("[Admin] Upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ListProperties returns every listing regardless of status for the admin
// index, newest first.
func (h *AdminHandler) ListProperties(c *gin.Context) {
	properties, err := h.db.ListAllProperties()
	if err != nil {
		log.Printf("[Admin] Failed to list properties: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"count":      len(properties),
	})
}

// CreateProperty validates the submitted form and inserts a new listing.
// Validation failure stops before any write.
func (h *AdminHandler) CreateProperty(c *gin.Context) {
	var form forms.PropertyForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	property, images, fieldErrs := form.Validate()
	if fieldErrs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldErrs})
		return
	}

	s, err := h.resolveCreateSlug(form.Slug, property.Title, property.City)
	if err != nil {
		log.Printf("[Admin] Slug check failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	property.Slug = s

	if err := h.db.CreateProperty(property, images); err != nil {
		log.Printf("[Admin] Failed to create property: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"redirect": "/admin/properties",
		"property": property,
	})
}

// resolveCreateSlug picks the explicit slug when given, derives one from
// title and city otherwise, and appends a timestamp suffix on collision.
func (h *AdminHandler) resolveCreateSlug(explicit, title, city string) (string, error) {
	s := strings.TrimSpace(explicit)
	if s == "" {
		s = slug.Generate(title, city)
	}
	exists, err := h.db.SlugExists(s)
	if err != nil {
		return "", err
	}
	if exists {
		s = slug.WithTimestamp(s)
	}
	return s, nil
}

// UpdateProperty validates the submitted form and fully replaces the
// listing's scalar fields and image list.
func (h *AdminHandler) UpdateProperty(c *gin.Context) {
	id := c.Param("id")

	var form forms.PropertyForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	property, images, fieldErrs := form.Validate()
	if fieldErrs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldErrs})
		return
	}

	existing, err := h.db.GetPropertyByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		log.Printf("[Admin] Failed to load property %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	// An explicit slug wins; otherwise the stored slug is retained.
	property.ID = id
	property.Slug = existing.Slug
	if s := strings.TrimSpace(form.Slug); s != "" {
		property.Slug = s
	}

	if err := h.db.UpdateProperty(property, images); err != nil {
		log.Printf("[Admin] Failed to update property %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"redirect": "/admin/properties",
		"property": property,
	})
}

// DeleteProperty removes a listing and its images.
func (h *AdminHandler) DeleteProperty(c *gin.Context) {
	id := c.Param("id")

	err := h.db.DeleteProperty(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		log.Printf("[Admin] Failed to delete property %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"redirect": "/admin/properties",
	})
}

// GetStats returns dashboard statistics.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.db.Stats()
	if err != nil {
		log.Printf("[Admin] Failed to collect stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RunSweep manually triggers the orphaned-upload sweep.
func (h *AdminHandler) RunSweep(c *gin.Context) {
	if h.sweeper == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Sweep is not available (local storage backend required)",
		})
		return
	}

	var req struct {
		RetentionDays    int  `json:"retention_days"`
		MaxDeletionCount int  `json:"max_deletion_count"`
		DryRun           bool `json:"dry_run"`
	}
	// A bare trigger with no body runs with defaults.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := cleanup.DefaultSweepConfig()
	if req.RetentionDays > 0 {
		cfg.RetentionDays = req.RetentionDays
	}
	if req.MaxDeletionCount > 0 {
		cfg.MaxDeletionCount = req.MaxDeletionCount
	}
	cfg.DryRun = req.DryRun

	log.Printf("[Admin] Running upload sweep (retention: %d days, max: %d, dry-run: %v)",
		cfg.RetentionDays, cfg.MaxDeletionCount, cfg.DryRun)

	result, err := h.sweeper.Sweep(cfg)
	if err != nil {
		log.Printf("[Admin] Sweep failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
