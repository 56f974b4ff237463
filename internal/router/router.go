package router

import (
	"net/http"
	"time"

	"familymeal/internal/auth"
	"familymeal/internal/calendar"
	"familymeal/internal/catalog"
	"familymeal/internal/family"
	"familymeal/internal/middleware"
	"familymeal/internal/shopping"
	"familymeal/internal/stock"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the feature handlers mounted by NewRouter.
type Deps struct {
	Auth     *auth.Handler
	Catalog  *catalog.Handler
	Family   *family.Handler
	Stock    *stock.Handler
	Calendar *calendar.Handler
	Shopping *shopping.Handler

	// Metrics is served on /metrics when set.
	Metrics prometheus.Gatherer

	CORSOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()

	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Disposition", "X-Archive-URL"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// ───────────────────────── HEALTH ─────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	// ───────────────────────── AUTH ─────────────────────────
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", d.Auth.Register)
		authGroup.POST("/login", d.Auth.Login)
		authGroup.GET("/me", middleware.AuthMiddleware(), d.Auth.Me)
	}

	// ───────────────────────── CATALOG ─────────────────────────
	if d.Catalog != nil {
		catalogGroup := r.Group("")
		catalogGroup.Use(
			middleware.AuthMiddleware(),
			middleware.RequireRole(auth.RoleParent),
		)
		d.Catalog.Register(catalogGroup)
	}

	// ───────────────────────── FAMILY-SCOPED ─────────────────────────
	protected := r.Group("")
	protected.Use(middleware.AuthMiddleware())

	if d.Family != nil {
		d.Family.Register(protected)
	}
	if d.Stock != nil {
		d.Stock.Register(protected)
	}
	if d.Calendar != nil {
		d.Calendar.Register(protected)
	}
	if d.Shopping != nil {
		d.Shopping.Register(protected)
	}

	return r
}
