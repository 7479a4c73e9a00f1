package http_rating

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	http_common "github.com/porchrate/core/internal/delivery/http/common"
	http_admin_middleware "github.com/porchrate/core/internal/delivery/http/middleware/admin"
	"github.com/porchrate/core/internal/model"
	"github.com/porchrate/core/internal/normalize"
	usecase_rating "github.com/porchrate/core/internal/usecase/rating"
)

type Controller struct {
	uc    *usecase_rating.Usecase
	admin *http_admin_middleware.Middleware

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(
	uc *usecase_rating.Usecase,
	admin *http_admin_middleware.Middleware,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		uc:     uc,
		admin:  admin,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	ratings := router.Group("ratings")
	ratings.POST("", c.submit)
	ratings.GET("", c.list)
	ratings.GET("/mine", c.mine)
	ratings.DELETE("/:rating_id", c.admin.AdminRequired(), c.remove)
}

// SubmitRequestDTO accepts both the current submission shape and the legacy
// one (lat/lng plus 1..10 candy/decorations scores) that old clients still
// send.
type SubmitRequestDTO struct {
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	Rating1           *int     `json:"rating1"`
	Rating2           *int     `json:"rating2"`
	CandyRating       *int     `json:"candy_rating"`
	DecorationsRating *int     `json:"decorations_rating"`
	Notes             string   `json:"notes"`
	Address           string   `json:"address"`
	UserFingerprint   string   `json:"userFingerprint"`
	Theme             string   `json:"theme"`

	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Candy       *int     `json:"candy"`
	Decorations *int     `json:"decorations"`
}

type SubmitResponseDTO struct {
	Rating model.Rating `json:"rating"`
}

// @Summary Submit a rating
// @Description Resolves the house by address, enforces one rating per user per house per theme and appends to the ledger
// @Tags Ratings
// @Accept json
// @Param request body SubmitRequestDTO true "Rating submission"
// @Success 201 {object} SubmitResponseDTO "Rating stored"
// @Failure 400 {object} http_common.ErrorResponse "Invalid submission"
// @Failure 409 {object} http_common.ErrorResponse "User already rated this house"
// @Failure 500 {object} http_common.ErrorResponse "Internal server error"
// @Router /ratings [post]
func (c *Controller) submit(ctx *gin.Context) {
	var req SubmitRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Error("invalid request format", slog.String("error", err.Error()))
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	lat := firstFloat(req.Latitude, req.Lat)
	lng := firstFloat(req.Longitude, req.Lng)
	if (lat == nil) != (lng == nil) {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "latitude and longitude must be provided together",
			Field:   "location",
		})
		return
	}

	params := usecase_rating.SubmitParams{
		Latitude:        deref(lat),
		Longitude:       deref(lng),
		Rating1:         coalesceScore(req.Rating1, req.CandyRating, req.Candy),
		Rating2:         coalesceScore(req.Rating2, req.DecorationsRating, req.Decorations),
		Notes:           req.Notes,
		Address:         req.Address,
		UserFingerprint: req.UserFingerprint,
		Theme:           model.Theme(req.Theme),
	}

	rating, err := c.uc.Submit(ctx, params)
	if err != nil {
		var verr *usecase_rating.ValidationError
		switch {
		case errors.As(err, &verr):
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: verr.Message,
				Field:   verr.Field,
			})
		case errors.Is(err, usecase_rating.ErrAlreadyRated):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message: "You've already rated this house!",
			})
		default:
			c.logger.Error("failed to process rating", slog.String("error", err.Error()))
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	c.logger.Info("new rating saved",
		slog.String("rating_id", rating.ID),
		slog.String("house_id", rating.HouseID),
		slog.String("theme", string(rating.Theme)))

	ctx.JSON(http.StatusCreated, SubmitResponseDTO{Rating: rating})
}

type ListResponseDTO struct {
	Ratings []model.Rating `json:"ratings"`
}

// @Summary List ratings for a theme
// @Description Returns the theme's ledger, normalized, oldest first
// @Tags Ratings
// @Param theme query string false "Theme (defaults to halloween)"
// @Success 200 {object} ListResponseDTO "Ratings"
// @Router /ratings [get]
func (c *Controller) list(ctx *gin.Context) {
	theme := model.Theme(ctx.DefaultQuery("theme", string(model.DefaultTheme)))

	ratings := c.uc.List(ctx, theme)
	if ratings == nil {
		ratings = []model.Rating{}
	}
	ctx.JSON(http.StatusOK, ListResponseDTO{Ratings: ratings})
}

type MineResponseDTO struct {
	Ratings       []model.Rating  `json:"ratings"`
	RatedHouseIDs []model.HouseID `json:"rated_house_ids"`
}

// @Summary List the calling device's ratings
// @Description Returns the fingerprint's own ratings plus a best-effort hint of already-rated house ids
// @Tags Ratings
// @Param fingerprint query string true "Device fingerprint"
// @Param theme query string false "Theme (defaults to halloween)"
// @Success 200 {object} MineResponseDTO "Own ratings"
// @Failure 400 {object} http_common.ErrorResponse "Missing fingerprint"
// @Router /ratings/mine [get]
func (c *Controller) mine(ctx *gin.Context) {
	fingerprint := ctx.Query("fingerprint")
	if fingerprint == "" {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "fingerprint query parameter required",
			Field:   "fingerprint",
		})
		return
	}
	theme := model.Theme(ctx.DefaultQuery("theme", string(model.DefaultTheme)))

	ratings := c.uc.ListForUser(ctx, fingerprint, theme)
	if ratings == nil {
		ratings = []model.Rating{}
	}

	rated := c.uc.RatedHouses(ctx, fingerprint, theme)
	ids := make([]model.HouseID, 0, len(rated))
	for id := range rated {
		ids = append(ids, id)
	}

	ctx.JSON(http.StatusOK, MineResponseDTO{
		Ratings:       ratings,
		RatedHouseIDs: ids,
	})
}

// @Summary Delete a rating
// @Description Removes a rating by id, searching every theme partition
// @Tags Ratings
// @Param rating_id path string true "Rating ID"
// @Success 200 {object} map[string]bool "Deleted"
// @Failure 404 {object} http_common.ErrorResponse "Rating not found"
// @Failure 500 {object} http_common.ErrorResponse "Internal server error"
// @Security AdminCode
// @Router /ratings/{rating_id} [delete]
func (c *Controller) remove(ctx *gin.Context) {
	ratingID := ctx.Param("rating_id")

	removed, err := c.uc.Delete(ctx, ratingID)
	if err != nil {
		c.logger.Error("failed to delete rating",
			slog.String("rating_id", ratingID),
			slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}
	if !removed {
		ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
			Message: "rating not found",
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func firstFloat(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// coalesceScore prefers current-shape 1..5 values; a trailing legacy 1..10
// value is rescaled.
func coalesceScore(current, mid, legacy *int) int {
	if current != nil {
		return *current
	}
	if mid != nil {
		return *mid
	}
	if legacy != nil {
		return normalize.ScaleTo5(*legacy)
	}
	return 0
}
