package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/app"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/webserver"
)

// Response is the envelope of every API reply.
type Response struct {
	Code string      `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// Init registers all API routes on the web server.
func Init() {
	registerCatalogRoutes()
	registerCartRoutes()
	registerOrderRoutes()
	registerImageRoutes()
	registerSystemRoutes()
}

// GetAppContext returns the application bound to the request.
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Code: "OK", Msg: "success", Data: data})
}

func fail(c echo.Context, status int, code, msg string, detail interface{}) error {
	return c.JSON(status, Response{Code: code, Msg: msg, Data: detail})
}

// mutated reports the outcome of a catalog or cart write. A persistence
// failure still returns the data: the change is live but not durable.
func mutated(c echo.Context, err error, data interface{}) error {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return ok(c, data)
	case errors.As(err, &ve):
		return fail(c, http.StatusBadRequest, "INVALID_PRODUCT", ve.Error(),
			map[string]string{"field": ve.Field, "reason": ve.Reason})
	case domain.IsPersistence(err):
		return c.JSON(http.StatusAccepted, Response{
			Code: "NOT_PERSISTED",
			Msg:  "change applied but not saved: " + err.Error(),
			Data: data,
		})
	default:
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed", err.Error())
	}
}
