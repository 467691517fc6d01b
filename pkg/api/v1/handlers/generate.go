package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strings"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/mediaforge/mediaforge/internal/services"
	"github.com/mediaforge/mediaforge/internal/types"
)

// GenerateHandler handles HTTP requests that dispatch generation jobs
type GenerateHandler struct {
	generation *services.Generation
}

// NewGenerateHandler creates a new generate handler instance
func NewGenerateHandler(s *services.Generation) *GenerateHandler {
	return &GenerateHandler{generation: s}
}

// Generate handles the request to submit a generation job. It accepts either
// a JSON body or a multipart form carrying input files. The response always
// includes the job id; on a synchronous submission failure the job is
// reported as failed rather than left in processing.
func (h *GenerateHandler) Generate(c *fiber.Ctx) error {
	req, err := parseGenerateRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	}
	if req.Type == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgTypeRequired))
	}

	resp, err := h.generation.Submit(c.Context(), req)
	if err != nil {
		if resp != nil {
			// The job exists and is terminal; hand back its id with the error.
			body := types.ErrServer(err.Error())
			body.Data = resp
			body.Retryable = isRetryable(err)
			return c.Status(fiber.StatusInternalServerError).JSON(body)
		}
		return respondError(c, err)
	}

	return c.JSON(types.Success(resp))
}

func parseGenerateRequest(c *fiber.Ctx) (*types.GenerateRequest, error) {
	contentType := c.Get(fiber.HeaderContentType)
	if strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		return parseMultipartGenerate(c)
	}

	var req types.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func parseMultipartGenerate(c *fiber.Ctx) (*types.GenerateRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	req := &types.GenerateRequest{
		Type: formValue(form, "type"),
	}

	if raw := formValue(form, "parameters"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Parameters); err != nil {
			return nil, err
		}
	}

	for _, header := range form.File["files"] {
		data, err := readFormFile(header)
		if err != nil {
			return nil, err
		}
		req.Inputs = append(req.Inputs, types.InputFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return req, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}
