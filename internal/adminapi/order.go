package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/order"
	"github.com/talkincode/storefront/internal/webserver"
)

func registerOrderRoutes() {
	webserver.ApiGET("/order", previewOrder)
	webserver.ApiPOST("/order/checkout", checkoutOrder)
}

// previewOrder returns the summary and, for a non-empty cart, the message
// that checkout would send.
func previewOrder(c echo.Context) error {
	appCtx := GetAppContext(c)
	session := appCtx.Session()
	v := session.View()
	msg, err := session.Formatter().Message(appCtx.Config().Shop.Name, v.Lines)
	if err != nil && !errors.Is(err, order.ErrEmptyOrder) {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to format order", err.Error())
	}
	return ok(c, map[string]interface{}{
		"summary":  v.Summary,
		"message":  msg,
		"canOrder": len(v.Lines) > 0,
	})
}

func checkoutOrder(c echo.Context) error {
	out, err := GetAppContext(c).Session().Checkout(c.Request().Context())
	switch {
	case errors.Is(err, order.ErrEmptyOrder):
		return fail(c, http.StatusBadRequest, "EMPTY_ORDER", "The cart is empty", nil)
	case err != nil:
		return fail(c, http.StatusBadGateway, "SEND_FAILED", "Failed to send order", err.Error())
	}
	return ok(c, out)
}
