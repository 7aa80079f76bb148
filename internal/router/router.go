package router

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"taskui/internal/config"
	"taskui/internal/handlers"
	"taskui/internal/models"
	"taskui/internal/paradigm"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}
func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(429, "Too many requests. Try again later.")
}

func Setup(log *zap.Logger, registry *paradigm.Registry, presets *models.Presets) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	dbEnabled := config.Conf.Database.Enabled
	presenter := paradigm.NewLogPresenter(log)

	// Handlers and routes
	runsHandler := handlers.NewRunsHandler(log, registry, presenter, presets,
		config.Conf.Output.DataFolder, dbEnabled)
	resultsHandler := handlers.NewResultsHandler(log, dbEnabled)
	chartsHandler := handlers.NewChartsHandler(log, dbEnabled)

	// Run starts are rate limited; a stuck client retrying in a loop must not
	// be able to hammer the registry.
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 10,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		runs := api.Group("/runs")
		{
			runs.POST("/gonogo", limiter, runsHandler.StartGoNoGo)
			runs.POST("/rhythm", limiter, runsHandler.StartRhythm)
			runs.GET("/active", runsHandler.Active)
			runs.POST("/active/response", runsHandler.Respond)
			runs.POST("/active/abort", runsHandler.Abort)
		}

		api.POST("/schedule/preview", runsHandler.PreviewSchedule)
		api.GET("/presets", runsHandler.Presets)

		results := api.Group("/results")
		{
			results.GET("/gonogo", resultsHandler.ListGoNoGo)
			results.GET("/gonogo/:id", resultsHandler.GetGoNoGo)
			results.GET("/rhythm", resultsHandler.ListRhythm)
			results.GET("/rhythm/:id", resultsHandler.GetRhythm)
		}

		charts := api.Group("/charts")
		{
			charts.GET("/timeline", chartsHandler.Timeline)
			charts.GET("/reaction-times/:id", chartsHandler.ReactionTimes)
			charts.GET("/cue-intervals/:id", chartsHandler.CueIntervals)
		}
	}

	return router
}
