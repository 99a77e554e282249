package mirrorserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	recorddto "studyhub/internal/modules/record/dto"
	"studyhub/internal/platform/logging"
)

// ListResponse mirrors the body the HTTP document client decodes.
type ListResponse struct {
	Items []json.RawMessage `json:"items"`
}

type handler struct {
	store  *Store
	logger *slog.Logger
}

func NewRouter(store *Store, secret string, logger *slog.Logger) *gin.Engine {
	logger = logging.OrDiscard(logger)
	h := &handler{store: store, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	users := r.Group("/api/v1/users/:uid")
	users.Use(RequireToken([]byte(secret)))
	{
		users.GET("/:collection", h.list)
		users.PUT("/:collection/:id", h.upsert)
		users.DELETE("/:collection/:id", h.remove)
	}
	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.Info("mirror request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(started),
		)
	}
}

func collectionParam(c *gin.Context) (string, bool) {
	name := c.Param("collection")
	parsed, err := recorddto.ParseCollection(name)
	if err != nil || string(parsed) != name {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown collection"})
		return "", false
	}
	return name, true
}

func (h *handler) list(c *gin.Context) {
	collection, ok := collectionParam(c)
	if !ok {
		return
	}
	items, err := h.store.List(c.Request.Context(), c.Param("uid"), collection)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: items})
}

func (h *handler) upsert(c *gin.Context) {
	collection, ok := collectionParam(c)
	if !ok {
		return
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || !json.Valid(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON document"})
		return
	}
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil || head.ID != c.Param("id") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document id must match path"})
		return
	}
	if err := h.store.Upsert(c.Request.Context(), c.Param("uid"), collection, head.ID, raw); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) remove(c *gin.Context) {
	collection, ok := collectionParam(c)
	if !ok {
		return
	}
	removed, err := h.store.Remove(c.Request.Context(), c.Param("uid"), collection, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) fail(c *gin.Context, err error) {
	h.logger.Error("mirror storage failed", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
}
