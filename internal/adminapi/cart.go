package adminapi

import (
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/order"
	"github.com/talkincode/storefront/internal/webserver"
)

type adjustPayload struct {
	LineID string      `json:"lineId"`
	Delta  interface{} `json:"delta"`
}

type cartView struct {
	Quantities domain.Quantities `json:"quantities"`
	Lines      []domain.CartLine `json:"lines"`
	Summary    order.Summary     `json:"summary"`
}

func registerCartRoutes() {
	webserver.ApiGET("/cart", getCart)
	webserver.ApiPOST("/cart/adjust", adjustCart)
	webserver.ApiDELETE("/cart", clearCart)
}

func currentCart(c echo.Context) cartView {
	session := GetAppContext(c).Session()
	v := session.View()
	return cartView{
		Quantities: session.Cart().Snapshot(),
		Lines:      v.Lines,
		Summary:    v.Summary,
	}
}

func getCart(c echo.Context) error {
	return ok(c, currentCart(c))
}

// adjustCart applies a quantity delta. Adding an id the catalog does not
// know is refused; removing one is harmless and allowed.
func adjustCart(c echo.Context) error {
	var payload adjustPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse adjustment", err.Error())
	}
	id := domain.LineID(strings.TrimSpace(payload.LineID))
	if id == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "lineId is required", nil)
	}
	delta, err := parseDelta(payload.Delta)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "delta must be an integer", err.Error())
	}

	session := GetAppContext(c).Session()
	if delta > 0 && !session.Catalog().Resolves(id) {
		return fail(c, http.StatusNotFound, "UNKNOWN_ITEM", "Item is not in the catalog", id)
	}
	qty, err := session.Adjust(c.Request().Context(), id, delta)
	return mutated(c, err, map[string]interface{}{
		"lineId":   id,
		"quantity": qty,
		"cart":     currentCart(c),
	})
}

// parseDelta accepts whole numbers given as JSON numbers or strings.
func parseDelta(v interface{}) (int, error) {
	switch f := v.(type) {
	case float64:
		if f != math.Trunc(f) {
			return 0, errors.Errorf("%v is not a whole number", f)
		}
		if f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, errors.Errorf("%v is out of range", f)
		}
	case float32:
		return parseDelta(float64(f))
	}
	return cast.ToIntE(v)
}

func clearCart(c echo.Context) error {
	err := GetAppContext(c).Session().ClearCart(c.Request().Context())
	return mutated(c, err, currentCart(c))
}
