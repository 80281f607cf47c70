package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bigplans/backend/core"
)

const healthPingTimeout = 2 * time.Second

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}

func registerHealthAPI(g *echo.Group, db core.DBPinger) {
	g.GET("/health", func(ctx echo.Context) error {
		resp := HealthResponse{Status: "ok", Timestamp: time.Now().UTC(), Database: "ok"}
		code := http.StatusOK

		if db == nil {
			resp.Database = "unavailable"
			code = http.StatusServiceUnavailable
		} else {
			pctx, cancel := context.WithTimeout(ctx.Request().Context(), healthPingTimeout)
			defer cancel()
			if err := db.PingContext(pctx); err != nil {
				ctx.Logger().Errorf("health: pinging database: %v", err)
				resp.Database = "unavailable"
				code = http.StatusServiceUnavailable
			}
		}
		return ctx.JSON(code, resp)
	})
}
