package adminapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/webserver"
)

const defaultCategory = "Geral"

type variantPayload struct {
	ID    string      `json:"id"`
	Label string      `json:"label"`
	Price interface{} `json:"price"`
}

// productPayload accepts prices as numbers or as text like "12,50".
type productPayload struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       interface{}      `json:"price"`
	Category    string           `json:"category"`
	ImageURL    string           `json:"imageUrl"`
	Variants    []variantPayload `json:"variants"`
}

func (p productPayload) toProduct() (domain.Product, error) {
	out := domain.Product{
		ID:          domain.ProductID(strings.TrimSpace(p.ID)),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
	}
	if strings.TrimSpace(out.Category) == "" {
		out.Category = defaultCategory
	}
	if text := priceText(p.Price); text != "" {
		price, err := domain.ParsePrice(text)
		if err != nil {
			return out, err
		}
		out.Price = decimal.NewNullDecimal(price)
	}
	for _, v := range p.Variants {
		price, err := domain.ParsePrice(priceText(v.Price))
		if err != nil {
			return out, &domain.ValidationError{Field: "variants[" + v.Label + "]", Reason: "needs a non-negative price"}
		}
		out.Variants = append(out.Variants, domain.ProductVariant{
			ID:    domain.LineID(strings.TrimSpace(v.ID)),
			Label: v.Label,
			Price: price,
		})
	}
	return out, nil
}

func priceText(v interface{}) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

func registerCatalogRoutes() {
	webserver.ApiGET("/catalog", listProducts)
	webserver.ApiGET("/catalog/categories", listCategories)
	webserver.ApiGET("/catalog/export.csv", exportCatalog)
	webserver.ApiGET("/catalog/:id", getProduct)
	webserver.ApiPOST("/catalog", createProduct)
	webserver.ApiPOST("/catalog/import", importCatalog)
	webserver.ApiPOST("/catalog/reset", resetCatalog)
	webserver.ApiPUT("/catalog/:id", updateProduct)
	webserver.ApiDELETE("/catalog/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	q := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	category := strings.TrimSpace(c.QueryParam("category"))

	products := GetAppContext(c).Session().View().Products
	rows := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		rows = append(rows, p)
	}
	return ok(c, rows)
}

func listCategories(c echo.Context) error {
	return ok(c, GetAppContext(c).Session().View().Groups)
}

func getProduct(c echo.Context) error {
	p, found := GetAppContext(c).Session().Catalog().Get(domain.ProductID(c.Param("id")))
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	p, err := payload.toProduct()
	if err != nil {
		return mutated(c, err, nil)
	}

	appCtx := GetAppContext(c)
	if p.ID != "" {
		if _, exists := appCtx.Session().Catalog().Get(p.ID); exists {
			return fail(c, http.StatusConflict, "DUPLICATE_ID", "Product already exists", p.ID)
		}
	}
	p = appCtx.IDs().AssignIDs(p)
	err = appCtx.Session().Upsert(c.Request().Context(), p)
	if err == nil || !domain.IsValidation(err) {
		p, _ = appCtx.Session().Catalog().Get(p.ID)
	}
	return mutated(c, err, p)
}

func updateProduct(c echo.Context) error {
	appCtx := GetAppContext(c)
	id := domain.ProductID(c.Param("id"))
	if _, found := appCtx.Session().Catalog().Get(id); !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.ID = string(id)
	p, err := payload.toProduct()
	if err != nil {
		return mutated(c, err, nil)
	}
	p = appCtx.IDs().AssignIDs(p)
	err = appCtx.Session().Upsert(c.Request().Context(), p)
	if err == nil || !domain.IsValidation(err) {
		p, _ = appCtx.Session().Catalog().Get(id)
	}
	return mutated(c, err, p)
}

func deleteProduct(c echo.Context) error {
	id := domain.ProductID(c.Param("id"))
	err := GetAppContext(c).Session().Remove(c.Request().Context(), id)
	return mutated(c, err, map[string]interface{}{"id": id})
}

func resetCatalog(c echo.Context) error {
	appCtx := GetAppContext(c)
	err := appCtx.Session().Reset(c.Request().Context())
	return mutated(c, err, appCtx.Session().View().Products)
}

func exportCatalog(c echo.Context) error {
	data, err := catalog.ExportCSV(GetAppContext(c).Session().View().Products)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export catalog", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="catalog.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// importCatalog upserts every product of an uploaded CSV as one batch.
// The merged catalog is validated before the first write, so a rejected
// file leaves the catalog untouched.
func importCatalog(c echo.Context) error {
	data, err := readUpload(c, "file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read csv", err.Error())
	}
	products, err := catalog.ImportCSV(data)
	if err != nil {
		return mutated(c, err, nil)
	}

	appCtx := GetAppContext(c)
	for i := range products {
		products[i] = appCtx.IDs().AssignIDs(products[i])
		if strings.TrimSpace(products[i].Category) == "" {
			products[i].Category = defaultCategory
		}
	}
	err = appCtx.Session().UpsertAll(c.Request().Context(), products)
	return mutated(c, err, map[string]int{"imported": len(products)})
}

// readUpload returns the multipart file named field, or the raw body when
// the request is not a form upload.
func readUpload(c echo.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return io.ReadAll(c.Request().Body)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
