package api

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"chatview/internal/archive"
	"chatview/internal/filestore"
	"chatview/internal/redis"
	"chatview/internal/service/importer"
)

const (
	uploadField       = "zipfile"
	multipartOverhead = 1 << 20
)

// Handler wires HTTP routes to the import pipeline and the file store.
type Handler struct {
	importer  *importer.Service
	store     *filestore.Store
	fileCache *redis.FileInfoCache
	maxUpload int64
	started   time.Time
}

// NewHandler constructs a Handler instance. fileCache may be nil.
func NewHandler(service *importer.Service, store *filestore.Store, fileCache *redis.FileInfoCache, maxUpload int64) *Handler {
	return &Handler{
		importer:  service,
		store:     store,
		fileCache: fileCache,
		maxUpload: maxUpload,
		started:   time.Now(),
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.health)
	router.POST("/upload", h.upload)
	router.GET("/files", h.listFiles)
	router.GET("/files/:filename", h.serveFile)
	router.GET("/files/:filename/info", h.fileInfo)
	router.GET("/imports", h.listImports)
	router.GET("/imports/:id/files", h.importFiles)
	router.NoRoute(func(c *gin.Context) {
		abortError(c, http.StatusNotFound, "Not found", "Route "+c.Request.Method+" "+c.Request.URL.Path+" not found")
	})
}

func abortError(c *gin.Context, status int, kind, details string) {
	c.AbortWithStatusJSON(status, gin.H{"error": kind, "details": details})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.started).Seconds(),
	})
}

func isZipUpload(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".zip") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "application/zip", "application/x-zip-compressed":
		return true
	}
	return false
}

func (h *Handler) upload(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)
	}
	file, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortError(c, http.StatusRequestEntityTooLarge, "file_too_large", "Maximum file size is "+strconv.FormatInt(h.maxUpload>>20, 10)+"MB")
			return
		}
		abortError(c, http.StatusBadRequest, "no_file", "Please select a ZIP file to upload")
		return
	}
	if h.maxUpload > 0 && file.Size > h.maxUpload {
		abortError(c, http.StatusRequestEntityTooLarge, "file_too_large", "Maximum file size is "+strconv.FormatInt(h.maxUpload>>20, 10)+"MB")
		return
	}
	if !isZipUpload(file.Filename, file.Header.Get("Content-Type")) {
		abortError(c, http.StatusBadRequest, "unsupported_file", "Only ZIP files are allowed")
		return
	}

	uploadPath, err := h.importer.NewUploadPath(file.Filename)
	if err != nil {
		log.Printf("prepare upload: %v", err)
		abortError(c, http.StatusInternalServerError, "internal", "Internal server error")
		return
	}
	defer h.importer.RemoveUpload(uploadPath)
	if err := c.SaveUploadedFile(file, uploadPath); err != nil {
		log.Printf("save upload %s: %v", uploadPath, err)
		abortError(c, http.StatusInternalServerError, "internal", "Internal server error")
		return
	}
	log.Printf("processing ZIP file: %s", uploadPath)

	result, err := h.importer.Import(c.Request.Context(), importer.Upload{
		ArchiveName: filepath.Base(file.Filename),
		Path:        uploadPath,
	})
	if err != nil {
		var aerr *archive.Error
		if errors.As(err, &aerr) {
			log.Printf("reject upload %s: %v", file.Filename, err)
			abortError(c, http.StatusBadRequest, string(aerr.Kind), aerr.Detail)
			return
		}
		log.Printf("import %s: %v", file.Filename, err)
		abortError(c, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	log.Printf("processed %d messages and %d files from %s", result.Stats.TotalMessages, result.Stats.ExtractedFiles, file.Filename)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) listFiles(c *gin.Context) {
	files, err := h.store.List()
	if err != nil {
		log.Printf("list files: %v", err)
		abortError(c, http.StatusInternalServerError, "internal", "Error listing files")
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (h *Handler) serveFile(c *gin.Context) {
	name := c.Param("filename")
	path, err := h.store.Path(name)
	if err != nil {
		abortError(c, http.StatusBadRequest, "invalid_name", "Invalid file name")
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		abortError(c, http.StatusNotFound, "not_found", "File not found")
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}

func (h *Handler) fileInfo(c *gin.Context) {
	name := c.Param("filename")
	ctx := c.Request.Context()
	if info, ok := h.fileCache.Load(ctx, name); ok {
		c.JSON(http.StatusOK, info)
		return
	}
	info, err := h.store.Stat(name)
	if err != nil {
		if errors.Is(err, filestore.ErrInvalidName) {
			abortError(c, http.StatusBadRequest, "invalid_name", "Invalid file name")
			return
		}
		if errors.Is(err, os.ErrNotExist) {
			abortError(c, http.StatusNotFound, "not_found", "File not found")
			return
		}
		abortError(c, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	h.fileCache.Store(ctx, info)
	c.JSON(http.StatusOK, info)
}

func (h *Handler) listImports(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			abortError(c, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	records, err := h.importer.ListImports(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, importer.ErrHistoryDisabled) {
			abortError(c, http.StatusNotFound, "history_disabled", err.Error())
			return
		}
		abortError(c, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"imports": records})
}

func (h *Handler) importFiles(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortError(c, http.StatusBadRequest, "invalid_id", "invalid import id")
		return
	}
	files, err := h.importer.ImportFiles(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, importer.ErrHistoryDisabled) {
			abortError(c, http.StatusNotFound, "history_disabled", err.Error())
			return
		}
		abortError(c, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}
