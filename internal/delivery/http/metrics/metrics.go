package http_metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controller exposes the Prometheus registry at the conventional root path.
type Controller struct{}

func New() *Controller {
	return &Controller{}
}

func (c *Controller) RegisterRootRoutes(engine *gin.Engine) {
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
