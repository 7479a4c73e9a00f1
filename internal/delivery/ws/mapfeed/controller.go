package ws_mapfeed

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	http_common "github.com/porchrate/core/internal/delivery/http/common"
	"github.com/porchrate/core/internal/model"
)

type Controller struct {
	hub      *Hub
	upgrader websocket.Upgrader

	logger *slog.Logger
}

func NewController(hub *Hub) *Controller {
	return &Controller{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Map clients are served from arbitrary origins during the
			// event; the feed is read-only public data.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: slog.Default(),
	}
}

func (c *Controller) RegisterRootRoutes(engine *gin.Engine) {
	engine.GET("/ws/map", c.serve)
}

func (c *Controller) serve(ctx *gin.Context) {
	theme := model.Theme(ctx.DefaultQuery("theme", string(model.DefaultTheme)))
	if !theme.Valid() {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "unknown theme",
			Field:   "theme",
		})
		return
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := &Client{
		Conn:  conn,
		Send:  make(chan []byte, 16),
		Theme: theme,
	}
	c.hub.RegisterClient(client)

	go c.hub.StartClientWriting(client)
	go c.hub.StartClientReading(client)
}
