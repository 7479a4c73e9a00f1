package http_house

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	http_common "github.com/porchrate/core/internal/delivery/http/common"
	"github.com/porchrate/core/internal/model"
	usecase_house "github.com/porchrate/core/internal/usecase/house"
)

type Controller struct {
	uc *usecase_house.Usecase

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(uc *usecase_house.Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		uc:     uc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	houses := router.Group("houses")
	houses.GET("", c.list)
	houses.POST("/find", c.find)
	houses.POST("/find-by-address", c.findByAddress)
}

type ListResponseDTO struct {
	Houses []model.House `json:"houses"`
}

// @Summary List all houses
// @Description Returns every registered house for the map
// @Tags Houses
// @Success 200 {object} ListResponseDTO "Houses"
// @Router /houses [get]
func (c *Controller) list(ctx *gin.Context) {
	houses := c.uc.List(ctx)
	if houses == nil {
		houses = []model.House{}
	}
	ctx.JSON(http.StatusOK, ListResponseDTO{Houses: houses})
}

type FindRequestDTO struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

type FindResponseDTO struct {
	House model.House `json:"house"`
}

// @Summary Resolve a house by proximity
// @Description Returns the closest house within the matching radius, creating one when nothing is close enough
// @Tags Houses
// @Accept json
// @Param request body FindRequestDTO true "Coordinates"
// @Success 200 {object} FindResponseDTO "Resolved house"
// @Failure 400 {object} http_common.ErrorResponse "Missing coordinates"
// @Failure 500 {object} http_common.ErrorResponse "Internal server error"
// @Router /houses/find [post]
func (c *Controller) find(ctx *gin.Context) {
	var req FindRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "latitude and longitude required",
		})
		return
	}

	house, err := c.uc.Resolve(ctx, *req.Latitude, *req.Longitude)
	if err != nil {
		c.logger.Error("failed to resolve house", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}
	ctx.JSON(http.StatusOK, FindResponseDTO{House: house})
}

type FindByAddressRequestDTO struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Address   string   `json:"address" binding:"required"`
}

// @Summary Resolve a house by address
// @Description Case-insensitive exact address match; the stored house's coordinates win over the submitted ones
// @Tags Houses
// @Accept json
// @Param request body FindByAddressRequestDTO true "Coordinates and address"
// @Success 200 {object} FindResponseDTO "Resolved house"
// @Failure 400 {object} http_common.ErrorResponse "Missing fields"
// @Failure 500 {object} http_common.ErrorResponse "Internal server error"
// @Router /houses/find-by-address [post]
func (c *Controller) findByAddress(ctx *gin.Context) {
	var req FindByAddressRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "latitude, longitude and address required",
		})
		return
	}

	house, err := c.uc.ResolveByAddress(ctx, *req.Latitude, *req.Longitude, req.Address)
	if err != nil {
		c.logger.Error("failed to resolve house by address", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}
	ctx.JSON(http.StatusOK, FindResponseDTO{House: house})
}
