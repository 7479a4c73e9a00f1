package http_theme

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/porchrate/core/internal/model"
)

// Controller serves the static theme presentation config clients build
// rating forms from.
type Controller struct{}

func New() *Controller {
	return &Controller{}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("themes", c.list)
}

type ThemesResponseDTO struct {
	Default model.Theme                       `json:"default"`
	Themes  map[model.Theme]model.ThemeConfig `json:"themes"`
}

// @Summary List themes
// @Description Returns the closed theme set with presentation config
// @Tags Themes
// @Success 200 {object} ThemesResponseDTO "Themes"
// @Router /themes [get]
func (c *Controller) list(ctx *gin.Context) {
	themes := make(map[model.Theme]model.ThemeConfig, len(model.Themes()))
	for _, t := range model.Themes() {
		if cfg, ok := model.ConfigFor(t); ok {
			themes[t] = cfg
		}
	}
	ctx.JSON(http.StatusOK, ThemesResponseDTO{
		Default: model.DefaultTheme,
		Themes:  themes,
	})
}
