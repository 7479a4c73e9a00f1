package http_admin

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	http_common "github.com/porchrate/core/internal/delivery/http/common"
	http_admin_middleware "github.com/porchrate/core/internal/delivery/http/middleware/admin"
	"github.com/porchrate/core/internal/model"
	usecase_rating "github.com/porchrate/core/internal/usecase/rating"
)

type Controller struct {
	code  string
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
	code string,
	uc *usecase_rating.Usecase,
	admin *http_admin_middleware.Middleware,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		code:   code,
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
	admin := router.Group("admin")
	admin.POST("/verify", c.verify)
	admin.GET("/export", c.admin.AdminRequired(), c.export)
}

type VerifyRequestDTO struct {
	Code string `json:"code" binding:"required"`
}

// @Summary Verify the admin code
// @Description Checks a submitted code against the shared admin secret
// @Tags Admin
// @Accept json
// @Param request body VerifyRequestDTO true "Admin code"
// @Success 200 {object} map[string]bool "Authenticated"
// @Failure 400 {object} http_common.ErrorResponse "Code required"
// @Failure 401 {object} http_common.ErrorResponse "Invalid code"
// @Router /admin/verify [post]
func (c *Controller) verify(ctx *gin.Context) {
	var req VerifyRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "code required",
		})
		return
	}
	if req.Code != c.code {
		ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
			Message: "invalid code",
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true, "authenticated": true})
}

// @Summary Export all ratings as a workbook
// @Description One sheet per theme, every record normalized
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "Workbook"
// @Failure 500 {object} http_common.ErrorResponse "Internal server error"
// @Security AdminCode
// @Router /admin/export [get]
func (c *Controller) export(ctx *gin.Context) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header := []any{"ID", "House", "Address", "Latitude", "Longitude", "Rating 1", "Rating 2", "Notes", "Fingerprint", "Created"}

	for i, theme := range model.Themes() {
		cfg, _ := model.ConfigFor(theme)
		sheet := cfg.Name
		if i == 0 {
			f.SetSheetName(f.GetSheetName(0), sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				c.exportFailed(ctx, err)
				return
			}
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			c.exportFailed(ctx, err)
			return
		}

		for row, r := range c.uc.List(ctx, theme) {
			cell := fmt.Sprintf("A%d", row+2)
			values := []any{
				r.ID, r.HouseID, r.Address, r.Latitude, r.Longitude,
				r.Rating1, r.Rating2, r.Notes, r.UserFingerprint,
				r.CreatedDate.Format("2006-01-02 15:04:05"),
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				c.exportFailed(ctx, err)
				return
			}
		}
	}

	ctx.Header("Content-Disposition", `attachment; filename="ratings.xlsx"`)
	ctx.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(ctx.Writer); err != nil {
		c.logger.Error("failed to stream export", slog.String("error", err.Error()))
	}
}

func (c *Controller) exportFailed(ctx *gin.Context, err error) {
	c.logger.Error("failed to build export", slog.String("error", err.Error()))
	ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
		Message: "internal error",
	})
}
