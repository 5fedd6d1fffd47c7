// Package custom is the extension point: register GraphQL extensions,
// CLI commands, cron jobs and HTTP routes from init() here without
// touching the core packages.
package custom

import (
	"context"

	"github.com/labstack/echo/v4"

	"wms.GO/api"
	gqlregistry "wms.GO/graphql/registry"
)

func init() {
	// GraphQL extension
	gqlregistry.Register("ping", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return map[string]string{"pong": "ok"}, nil
	})

	// HTTP route
	api.RegisterGET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
