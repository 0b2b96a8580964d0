package adminapi

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/app"
	"github.com/talkincode/storefront/internal/blobstore"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/webserver"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type fakeEditor struct {
	instruction string
	err         error
}

func (f *fakeEditor) Edit(ctx context.Context, image []byte, mime, instruction string) ([]byte, string, error) {
	f.instruction = instruction
	if f.err != nil {
		return nil, "", f.err
	}
	return pngBytes, "image/png", nil
}

// readOnlyStore serves reads and fails writes once readOnly is set.
type readOnlyStore struct {
	*blobstore.MemoryStore
	readOnly bool
}

func (s *readOnlyStore) Set(ctx context.Context, key string, value []byte) error {
	if s.readOnly {
		return errors.New("disk full")
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func setup(t *testing.T) *app.Application {
	return setupWith(t, blobstore.NewMemoryStore())
}

func setupWith(t *testing.T, blob blobstore.Store) *app.Application {
	t.Helper()
	cfg := *config.DefaultAppConfig
	cfg.Store.Type = "memory"
	a := app.NewApplication(&cfg)
	require.NoError(t, a.Wire(context.Background(), blob))
	t.Cleanup(a.Session().Close)
	webserver.Init(&cfg, a)
	Init()
	return a
}

func call(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	webserver.Handler().ServeHTTP(rec, req)

	var resp Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func decode(t *testing.T, data interface{}, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestCreateProductDefaults(t *testing.T) {
	setup(t)
	rec, resp := call(t, http.MethodPost, "/api/catalog", map[string]interface{}{
		"name":     "  Broa de Milho ",
		"price":    "12,50",
		"imageUrl": "https://img/broa.jpg",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var p domain.Product
	decode(t, resp.Data, &p)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Broa de Milho", p.Name)
	assert.Equal(t, defaultCategory, p.Category)
	assert.Equal(t, "12.5", p.Price.Decimal.String())

	rec, _ = call(t, http.MethodGet, "/api/catalog/"+string(p.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateProductValidation(t *testing.T) {
	setup(t)
	rec, resp := call(t, http.MethodPost, "/api/catalog", map[string]interface{}{
		"name":     "Tempero",
		"price":    8,
		"imageUrl": "https://img/t.jpg",
		"variants": []map[string]interface{}{{"label": "G", "price": "8,00"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PRODUCT", resp.Code)

	rec, resp = call(t, http.MethodPost, "/api/catalog", map[string]interface{}{
		"name": "Sem preço", "imageUrl": "https://img/x.jpg",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PRODUCT", resp.Code)

	rec, resp = call(t, http.MethodPost, "/api/catalog", map[string]interface{}{
		"id": "pao-doce", "name": "Dup", "price": 1, "imageUrl": "https://img/x.jpg",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_ID", resp.Code)
}

func TestCreateProductWithVariants(t *testing.T) {
	setup(t)
	rec, resp := call(t, http.MethodPost, "/api/catalog", map[string]interface{}{
		"id":       "geleia",
		"name":     "Geleia",
		"category": "Outros",
		"imageUrl": "https://img/g.jpg",
		"variants": []map[string]interface{}{
			{"label": "200g", "price": "14,00"},
			{"id": "geleia-400", "label": "400g", "price": 24},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p domain.Product
	decode(t, resp.Data, &p)
	require.Len(t, p.Variants, 2)
	assert.True(t, strings.HasPrefix(string(p.Variants[0].ID), "geleia-"))
	assert.Equal(t, domain.LineID("geleia-400"), p.Variants[1].ID)
	assert.False(t, p.Price.Valid)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	a := setup(t)
	rec, _ := call(t, http.MethodPut, "/api/catalog/ghost", map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp := call(t, http.MethodPut, "/api/catalog/pao-doce", map[string]interface{}{
		"name": "Pão Doce", "price": "13.00", "category": "Pães", "imageUrl": "https://img/p.jpg",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p domain.Product
	decode(t, resp.Data, &p)
	assert.Equal(t, "Pão Doce", p.Name)
	assert.Equal(t, domain.ProductID("pao-doce"), a.Session().View().Products[1].ID, "update keeps position")

	_, err := a.Session().Adjust(context.Background(), "tempero-caseiro-p", 2)
	require.NoError(t, err)
	rec, _ = call(t, http.MethodDelete, "/api/catalog/tempero-caseiro", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, a.Session().Cart().Snapshot())

	rec, _ = call(t, http.MethodDelete, "/api/catalog/tempero-caseiro", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "delete is idempotent")
}

func TestListAndCategories(t *testing.T) {
	setup(t)
	_, resp := call(t, http.MethodGet, "/api/catalog?q=p%C3%A3o", nil)
	var products []domain.Product
	decode(t, resp.Data, &products)
	assert.Len(t, products, 2)

	_, resp = call(t, http.MethodGet, "/api/catalog/categories", nil)
	var groups []struct {
		Category string `json:"category"`
	}
	decode(t, resp.Data, &groups)
	var labels []string
	for _, g := range groups {
		labels = append(labels, g.Category)
	}
	assert.Equal(t, []string{"Pães", "Sobremesas", "Temperos", "Chás"}, labels)
}

func TestResetCatalog(t *testing.T) {
	a := setup(t)
	call(t, http.MethodDelete, "/api/catalog/pao-doce", nil)
	rec, _ := call(t, http.MethodPost, "/api/catalog/reset", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, a.Session().View().Products, len(catalog.Seed()))
}

func TestExportImportCSV(t *testing.T) {
	a := setup(t)
	rec, _ := call(t, http.MethodGet, "/api/catalog/export.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "tempero-caseiro-g")

	csv := "product_id,name,price,image_url,category\n,Rosca,\"9,90\",https://img/r.jpg,\n"
	rec, resp := call(t, http.MethodPost, "/api/catalog/import", []byte(csv))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "OK", resp.Code)

	products := a.Session().View().Products
	last := products[len(products)-1]
	assert.Equal(t, "Rosca", last.Name)
	assert.Equal(t, defaultCategory, last.Category)

	rec, resp = call(t, http.MethodPost, "/api/catalog/import", []byte("product_id,name,price\nx,Bad,abc\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PRODUCT", resp.Code)
}

func TestImportCSVCollisionChangesNothing(t *testing.T) {
	a := setup(t)
	before := a.Session().View().Products
	version := a.Session().Catalog().Version()

	header := "product_id,name,price,image_url,category,variant_id,variant_label,variant_price\n"
	for name, csv := range map[string]string{
		"variant id equals a product id": header +
			"broa,Broa,5,https://img/b.jpg,Pães,,,\n" +
			"mix,Mix,,https://img/m.jpg,Temperos,pao-doce,G,3\n",
		"variant id shared by two rows": header +
			"broa,Broa,5,https://img/b.jpg,Pães,,,\n" +
			"mix,Mix,,https://img/m.jpg,Temperos,mix-g,G,3\n" +
			"sal,Sal,,https://img/s.jpg,Temperos,mix-g,G,2\n",
	} {
		rec, resp := call(t, http.MethodPost, "/api/catalog/import", []byte(csv))
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Equal(t, "INVALID_PRODUCT", resp.Code, name)
		assert.Equal(t, before, a.Session().View().Products, name)
		assert.Equal(t, version, a.Session().Catalog().Version(), name)
	}
}

func TestWriteFailureIsAccepted(t *testing.T) {
	blob := &readOnlyStore{MemoryStore: blobstore.NewMemoryStore()}
	a := setupWith(t, blob)
	blob.readOnly = true

	rec, resp := call(t, http.MethodPost, "/api/cart/adjust", map[string]interface{}{"lineId": "pao-doce", "delta": 2})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, "NOT_PERSISTED", resp.Code)
	var out struct {
		Quantity int `json:"quantity"`
	}
	decode(t, resp.Data, &out)
	assert.Equal(t, 2, out.Quantity)
	assert.Equal(t, 2, a.Session().Cart().Quantity("pao-doce"), "change stays live")

	rec, resp = call(t, http.MethodDelete, "/api/catalog/pao-doce", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "NOT_PERSISTED", resp.Code)
	_, found := a.Session().Catalog().Get("pao-doce")
	assert.False(t, found)
}

func TestCartAndCheckout(t *testing.T) {
	setup(t)
	rec, resp := call(t, http.MethodPost, "/api/order/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMPTY_ORDER", resp.Code)

	rec, _ = call(t, http.MethodPost, "/api/cart/adjust", map[string]interface{}{"lineId": "pao-tradicional", "delta": "2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec, _ = call(t, http.MethodPost, "/api/cart/adjust", map[string]interface{}{"lineId": "tempero-caseiro-g", "delta": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = call(t, http.MethodPost, "/api/cart/adjust", map[string]interface{}{"lineId": "ghost", "delta": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "UNKNOWN_ITEM", resp.Code)

	rec, _ = call(t, http.MethodPost, "/api/cart/adjust", map[string]interface{}{"lineId": "ghost", "delta": -1})
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, bad := range []interface{}{"many", 1.7, "1.5", 1e30} {
		rec, _ = call(t, http.MethodPost, "/api/cart/adjust", map[string]interface{}{"lineId": "pao-doce", "delta": bad})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "delta %v", bad)
	}

	_, resp = call(t, http.MethodGet, "/api/cart", nil)
	var cart cartView
	decode(t, resp.Data, &cart)
	assert.Equal(t, domain.Quantities{"pao-tradicional": 2, "tempero-caseiro-g": 1}, cart.Quantities)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, "Tempero Caseiro (G)", cart.Lines[1].DisplayName)
	assert.Equal(t, "38", cart.Summary.Total.String())
	assert.Equal(t, 3, cart.Summary.ItemCount)

	_, resp = call(t, http.MethodGet, "/api/order", nil)
	var preview struct {
		Message  string `json:"message"`
		CanOrder bool   `json:"canOrder"`
	}
	decode(t, resp.Data, &preview)
	assert.True(t, preview.CanOrder)
	assert.Contains(t, preview.Message, "💰 *Total: R$ 38,00*")

	rec, resp = call(t, http.MethodPost, "/api/order/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Link string `json:"link"`
	}
	decode(t, resp.Data, &out)
	assert.True(t, strings.HasPrefix(out.Link, "https://wa.me/5511989764533?text="), out.Link)

	rec, _ = call(t, http.MethodDelete, "/api/cart", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	_, resp = call(t, http.MethodGet, "/api/cart", nil)
	decode(t, resp.Data, &cart)
	assert.Empty(t, cart.Lines)
}

func TestUploadImage(t *testing.T) {
	setup(t)
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", "pao.png")
	require.NoError(t, err)
	_, _ = fw.Write(pngBytes)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/images/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	webserver.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "data:image/png;base64,")

	rec, resp := call(t, http.MethodPost, "/api/images/upload", []byte("not an image"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_IMAGE", resp.Code)
}

func TestEditImage(t *testing.T) {
	a := setup(t)
	rec, resp := call(t, http.MethodPost, "/api/images/edit", map[string]string{"imageUrl": "x", "instruction": "y"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "EDITOR_DISABLED", resp.Code)

	editor := &fakeEditor{}
	a.OverrideImageEditor(editor)
	src := "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJ"
	rec, resp = call(t, http.MethodPost, "/api/images/edit", map[string]string{"imageUrl": src, "instruction": "fundo rústico"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "fundo rústico", editor.instruction)
	var out map[string]string
	decode(t, resp.Data, &out)
	assert.True(t, strings.HasPrefix(out["imageUrl"], "data:image/png;base64,"))

	editor.err = errors.New("quota")
	rec, resp = call(t, http.MethodPost, "/api/images/edit", map[string]string{"imageUrl": src, "instruction": "x"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "EDIT_FAILED", resp.Code)
}

func TestHealthAndJobs(t *testing.T) {
	setup(t)
	rec, resp := call(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", resp.Code)

	_, resp = call(t, http.MethodGet, "/api/jobs", nil)
	assert.Equal(t, []interface{}{app.JobCompactCart, app.JobStorePing}, resp.Data)

	rec, _ = call(t, http.MethodPost, "/api/jobs/compact_cart/run", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = call(t, http.MethodPost, "/api/jobs/nope/run", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
