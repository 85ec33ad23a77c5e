// README: HTTP router registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"offerstack/internal/http/handlers"
	"offerstack/internal/http/middleware"
	"offerstack/internal/modules/offer"
)

type RouterDeps struct {
	Runner *offer.Runner
	// Ledger may be nil when the outcome ledger is disabled.
	Ledger handlers.OutcomeLister
	Logger *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logging(log))

	offerHandler := handlers.NewOfferHandler(deps.Runner)
	api := r.Group("/api")
	api.GET("/offers", offerHandler.View)
	api.POST("/offers", offerHandler.Push)
	api.POST("/offers/:id/press", offerHandler.Press)
	api.PUT("/offers/:id/fare", offerHandler.SetFare)
	api.POST("/offers/:id/accept", offerHandler.Accept)
	api.POST("/offers/:id/reject", offerHandler.Reject)
	api.DELETE("/offers/:id", offerHandler.Retract)

	driverHandler := handlers.NewDriverHandler(deps.Runner)
	api.PUT("/driver/status", driverHandler.SetStatus)

	outcomeHandler := handlers.NewOutcomeHandler(deps.Ledger)
	api.GET("/outcomes", outcomeHandler.List)

	feedHandler := handlers.NewFeedHandler(deps.Runner, log)
	r.GET("/ws/offers", feedHandler.Serve)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return r
}
