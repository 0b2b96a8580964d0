package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/imagesrc"
	"github.com/talkincode/storefront/internal/webserver"
)

type editPayload struct {
	ImageURL    string `json:"imageUrl"`
	Instruction string `json:"instruction"`
}

func registerImageRoutes() {
	webserver.ApiPOST("/images/upload", uploadImage)
	webserver.ApiPOST("/images/edit", editImage)
}

func uploadImage(c echo.Context) error {
	data, err := readUpload(c, "file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read image", err.Error())
	}
	ref, err := imagesrc.DataURL(data)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_IMAGE", "Unsupported image", err.Error())
	}
	return ok(c, map[string]string{"imageUrl": ref})
}

func editImage(c echo.Context) error {
	editor := GetAppContext(c).ImageEditor()
	if editor == nil {
		return fail(c, http.StatusServiceUnavailable, "EDITOR_DISABLED", "Image editing is not configured", nil)
	}

	var payload editPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse edit request", err.Error())
	}
	if strings.TrimSpace(payload.Instruction) == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "instruction is required", nil)
	}

	ctx := c.Request().Context()
	data, mime, err := imagesrc.Load(ctx, payload.ImageURL)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_IMAGE", "Unable to load image", err.Error())
	}
	edited, _, err := editor.Edit(ctx, data, mime, payload.Instruction)
	if err != nil {
		return fail(c, http.StatusBadGateway, "EDIT_FAILED", "Image edit failed", err.Error())
	}
	ref, err := imagesrc.DataURL(edited)
	if err != nil {
		return fail(c, http.StatusBadGateway, "EDIT_FAILED", "Edited image is not usable", err.Error())
	}
	return ok(c, map[string]string{"imageUrl": ref})
}
