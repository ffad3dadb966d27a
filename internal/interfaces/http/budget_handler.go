package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/application/pulltag"
)

// maxBudgetSize caps an uploaded budget document.
const maxBudgetSize = 20 << 20

// BudgetHandler turns uploaded budgets into pulltags.
type BudgetHandler struct {
	uc *pulltag.UploadUseCase
}

// NewBudgetHandler builds the handler.
func NewBudgetHandler(uc *pulltag.UploadUseCase) *BudgetHandler {
	return &BudgetHandler{uc: uc}
}

// Upload godoc
// @Summary      Upload budget PDF
// @Description  Parses the budget and creates pending pulltags. With dry_run=true nothing is stored.
// @Tags         budgets
// @Accept       multipart/form-data
// @Produce      json
// @Security     Bearer
// @Param        file     formData  file  true   "Budget PDF"
// @Param        dry_run  query     bool  false  "Preview only"
// @Success      201      {object}  dto.UploadResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      409      {object}  dto.ErrorResponse
// @Router       /api/budgets [post]
func (h *BudgetHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "form field 'file' is required"})
	}
	if fh.Size > maxBudgetSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "FILE_TOO_LARGE", Message: "budget exceeds 20MB"})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err, nil)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, err, nil)
	}

	res, err := h.uc.Upload(c.Context(), pulltag.UploadInput{
		Data:   data,
		User:   GetUsername(c),
		DryRun: c.QueryBool("dry_run"),
	})
	if err != nil {
		return writeError(c, err, nil)
	}

	out := dto.UploadResponse{
		DryRun:   res.DryRun,
		Lines:    res.Lines,
		Inserted: res.Inserted,
		Pulltags: make([]dto.PulltagResponse, 0, len(res.Pulltags)),
		Warnings: make([]dto.BudgetWarning, 0, len(res.Warnings)),
	}
	for _, t := range res.Pulltags {
		out.Pulltags = append(out.Pulltags, dto.ToPulltagResponse(t))
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, dto.BudgetWarning(w))
	}
	status := fiber.StatusCreated
	if res.DryRun {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(out)
}
