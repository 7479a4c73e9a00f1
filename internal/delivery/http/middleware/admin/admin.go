package http_admin_middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	http_common "github.com/porchrate/core/internal/delivery/http/common"
)

// Middleware gates admin-only routes behind the shared admin code. This is
// the whole of the auth story here: fingerprints identify devices, the code
// identifies the operator.
type Middleware struct {
	code   string
	logger *slog.Logger
}

func New(code string) *Middleware {
	return &Middleware{
		code:   code,
		logger: slog.Default(),
	}
}

func (m *Middleware) AdminRequired() gin.HandlerFunc {
	const header = "X-admin-code"
	return func(ctx *gin.Context) {
		code := ctx.GetHeader(header)
		if code == "" {
			m.logger.Error(fmt.Sprintf("no %s header", header))
			ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
				Message: fmt.Sprintf("no %s header", header),
			})
			ctx.Abort()
			return
		}
		if code != m.code {
			m.logger.Error("invalid admin code")
			ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
				Message: "invalid admin code",
			})
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
