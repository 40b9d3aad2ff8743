package api

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/goblin-bookie/internal/api/handlers"
	"github.com/codyseavey/goblin-bookie/internal/logging"
	"github.com/codyseavey/goblin-bookie/internal/metrics"
	"github.com/codyseavey/goblin-bookie/internal/viewmodel"
)

//go:embed web/templates/*.tmpl web/static/*
var webFS embed.FS

// Deps are the services the router is wired to
type Deps struct {
	Cards              handlers.CardStore
	Samples            handlers.SampleSource
	Worker             handlers.RefreshQueue
	CORSAllowedOrigins []string
	RecentCards        int
}

func SetupRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.RequestLogger())
	router.Use(metrics.GinMiddleware())

	// CORS configuration
	config := cors.DefaultConfig()
	if len(deps.CORSAllowedOrigins) > 0 {
		config.AllowOrigins = deps.CORSAllowedOrigins
	} else {
		config.AllowOrigins = []string{"http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", logging.RequestIDHeader}
	config.ExposeHeaders = []string{logging.RequestIDHeader}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	router.SetHTMLTemplate(loadTemplates())

	static, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}
	router.StaticFS("/static", http.FS(static))

	// Initialize handlers
	pageHandler := handlers.NewPageHandler(deps.Cards, deps.RecentCards)
	cardHandler := handlers.NewCardHandler(deps.Cards)
	priceHandler := handlers.NewPriceHandler(deps.Cards, deps.Worker)
	sampleHandler := handlers.NewSampleHandler(deps.Samples)

	// Pages
	router.GET("/", pageHandler.Home)
	router.GET("/search", pageHandler.Search)
	router.GET("/card/:uuid", pageHandler.Card)

	// API routes
	api := router.Group("/api")
	{
		cards := api.Group("/cards")
		{
			cards.GET("", cardHandler.SearchCards)
			cards.GET("/:uuid", cardHandler.GetCard)
			cards.GET("/:uuid/history", cardHandler.GetCardHistory)
			cards.POST("/:uuid/refresh", priceHandler.RefreshCard)
		}

		api.GET("/samples", sampleHandler.GetSamples)

		prices := api.Group("/prices")
		{
			prices.GET("/status", priceHandler.GetPriceStatus)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(pageHandler.NotFound)

	return router
}

func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"noPriceTitle":  func() string { return viewmodel.NoPriceTitle },
		"noPriceDetail": func() string { return viewmodel.NoPriceDetail },
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(webFS, "web/templates/*.tmpl"))
}
