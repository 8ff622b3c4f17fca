package v1

import (
	"github.com/gin-gonic/gin"

	"family-archive/archive-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	arc := group.Group("/archive")
	arc.GET("/buckets", r.handlers.Archive.ListBuckets)
	arc.GET("/buckets/:key", r.handlers.Archive.GetBucket)

	arc.POST("/views", r.handlers.Archive.CreateView)
	arc.GET("/views/:id", r.handlers.Archive.GetView)
	arc.DELETE("/views/:id", r.handlers.Archive.DeleteView)
	arc.PUT("/views/:id/bucket", r.handlers.Archive.SetBucket)
	arc.POST("/views/:id/selection/all", r.handlers.Archive.SelectAll)
	arc.POST("/views/:id/selection/:photo_id", r.handlers.Archive.Select)
	arc.DELETE("/views/:id/selection/:photo_id", r.handlers.Archive.Deselect)
	arc.DELETE("/views/:id/selection", r.handlers.Archive.ClearSelection)
	arc.POST("/views/:id/export", r.handlers.Archive.ExportView)

	arc.POST("/exports", r.handlers.Archive.Export)
	arc.GET("/downloads/:handle", r.handlers.Downloads.Download)
	arc.DELETE("/downloads/:handle", r.handlers.Downloads.Release)

	arc.POST("/bundles", r.handlers.Bundles.Create)

	if r.handlers.Files != nil {
		group.GET("/files/*key", r.handlers.Files.Get)
	}
}
