package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/mediaforge/mediaforge/internal/services"
	"github.com/mediaforge/mediaforge/internal/types"
)

// AssetHandler handles HTTP requests for asset operations
type AssetHandler struct {
	assetService *services.Asset
}

// NewAssetHandler creates a new asset handler instance
func NewAssetHandler(s *services.Asset) *AssetHandler {
	return &AssetHandler{assetService: s}
}

// UploadAsset handles the request to store a new asset
func (h *AssetHandler) UploadAsset(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgFileRequired))
	}

	data, err := readFormFile(header)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	}

	asset, err := h.assetService.Upload(c.Context(), &types.UploadAssetRequest{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Folder:      c.FormValue("folder"),
		Data:        data,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(types.Success(asset))
}

// GetAsset handles the request to get an asset record
func (h *AssetHandler) GetAsset(c *fiber.Ctx) error {
	assetID := c.Params("id")
	if assetID == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgAssetIDRequired))
	}

	asset, err := h.assetService.Get(c.Context(), assetID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(types.Success(asset))
}

// ListAssets handles the request to list asset records
func (h *AssetHandler) ListAssets(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	assets, err := h.assetService.List(c.Context(), getPaginationOptions(page))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(types.Success(assets))
}

// BrowseAssets handles the request to list the object store under a prefix
func (h *AssetHandler) BrowseAssets(c *fiber.Ctx) error {
	objects, err := h.assetService.Browse(c.Context(), c.Query("prefix"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(types.Success(objects))
}

// CreateFolder handles the request to create an empty folder marker
func (h *AssetHandler) CreateFolder(c *fiber.Ctx) error {
	var body struct {
		Path string `json:"path"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody))
	}
	if body.Path == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgFolderRequired))
	}

	if err := h.assetService.CreateFolder(c.Context(), body.Path); err != nil {
		return respondError(c, err)
	}

	return c.JSON(types.Success(fiber.Map{"path": body.Path}))
}

// DeleteAsset handles the request to delete an asset from both the object
// store and the database. A success may carry a warning when the two
// resources had already diverged.
func (h *AssetHandler) DeleteAsset(c *fiber.Ctx) error {
	assetID := c.Params("id")
	if assetID == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgAssetIDRequired))
	}

	result, err := h.assetService.Delete(c.Context(), assetID)
	if err != nil {
		return respondError(c, err)
	}

	if result.Warning != "" {
		return c.JSON(types.SuccessWithWarning(result, result.Warning))
	}
	return c.JSON(types.Success(result))
}
