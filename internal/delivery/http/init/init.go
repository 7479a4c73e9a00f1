package http_init

import (
	"log"

	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

type Controller interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// RootController registers outside the API prefix (metrics, websocket
// upgrades).
type RootController interface {
	RegisterRootRoutes(engine *gin.Engine)
}

type ControllerPool struct {
	pool     []Controller
	rootPool []RootController
	rg       *gin.RouterGroup
	engine   *gin.Engine
}

func NewControllerPool() *ControllerPool {
	engine := gin.Default()
	rg := engine.Group(apiPrefix)
	return &ControllerPool{
		pool:     make([]Controller, 0, 10),
		rootPool: make([]RootController, 0, 4),
		rg:       rg,
		engine:   engine,
	}
}

func (pool *ControllerPool) Register() {
	for _, c := range pool.pool {
		c.RegisterRoutes(pool.rg)
	}
	for _, c := range pool.rootPool {
		c.RegisterRootRoutes(pool.engine)
	}
}

func (pool *ControllerPool) RunAll(port string) {
	if err := pool.engine.Run(":" + port); err != nil {
		log.Fatalf("failed to run HTTP server: %v", err)
	}
}

func (pool *ControllerPool) Add(c Controller) {
	pool.pool = append(pool.pool, c)
}

func (pool *ControllerPool) AddRoot(c RootController) {
	pool.rootPool = append(pool.rootPool, c)
}
