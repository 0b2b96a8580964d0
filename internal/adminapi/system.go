package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/webserver"
)

func registerSystemRoutes() {
	webserver.ApiGET("/health", health)
	webserver.ApiGET("/jobs", listJobs)
	webserver.ApiPOST("/jobs/:name/run", triggerJob)
}

func health(c echo.Context) error {
	appCtx := GetAppContext(c)
	up := appCtx.Blob().Ping(c.Request().Context())
	v := appCtx.Session().View()
	data := map[string]interface{}{
		"store":          appCtx.Config().Store.Type,
		"storeUp":        up,
		"products":       len(v.Products),
		"catalogVersion": v.CatalogVersion,
		"cartVersion":    v.CartVersion,
	}
	if !up {
		return fail(c, http.StatusServiceUnavailable, "STORE_DOWN", "Blob store unreachable", data)
	}
	return ok(c, data)
}

func listJobs(c echo.Context) error {
	return ok(c, GetAppContext(c).JobNames())
}

// triggerJob runs a background job immediately
func triggerJob(c echo.Context) error {
	if err := GetAppContext(c).RunJobNow(c.Param("name")); err != nil {
		return fail(c, http.StatusNotFound, "UNKNOWN_JOB", "Failed to run job", err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
