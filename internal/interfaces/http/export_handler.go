package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/application/export"
)

// ExportHandler produces accounting import files from kitting logs.
type ExportHandler struct {
	uc *export.UseCase
}

// NewExportHandler builds the handler.
func NewExportHandler(uc *export.UseCase) *ExportHandler {
	return &ExportHandler{uc: uc}
}

// Preview godoc
// @Summary      Lines an export would contain
// @Tags         exports
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body  dto.ExportFilter  true  "filter"
// @Success      200   {object}  dto.ListResponse[export.Line]
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/exports/preview [post]
func (h *ExportHandler) Preview(c *fiber.Ctx) error {
	var in dto.ExportFilter
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines, err := h.uc.Preview(c.Context(), toLogFilter(in))
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(dto.NewList(lines))
}

// Export godoc
// @Summary      Build the Sage import file and mark the logs exported
// @Tags         exports
// @Accept       json
// @Produce      application/octet-stream
// @Security     Bearer
// @Param        body  body  dto.ExportRequest  true  "filter and header"
// @Success      200   {file}  binary
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/exports [post]
func (h *ExportHandler) Export(c *fiber.Ctx) error {
	var in dto.ExportRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	hdr := export.Header{Batch: in.Batch}
	if in.KitDate != nil {
		hdr.KitDate = *in.KitDate
	}
	if in.AcctDate != nil {
		hdr.AcctDate = *in.AcctDate
	}
	f, err := h.uc.Export(c.Context(), export.ExportInput{
		Filter:        toLogFilter(in.Filter),
		Header:        hdr,
		ExportBatchID: in.ExportBatchID,
		Format:        in.Format,
		User:          GetUsername(c),
	})
	if err != nil {
		return writeError(c, err, nil)
	}
	return h.send(c, f)
}

// Mark godoc
// @Summary      Mark logs exported without producing a file
// @Tags         exports
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body  dto.MarkExportedRequest  true  "filter"
// @Success      200   {object}  export.MarkResult
// @Router       /api/exports/mark [post]
func (h *ExportHandler) Mark(c *fiber.Ctx) error {
	var in dto.MarkExportedRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.MarkExported(c.Context(), toLogFilter(in.Filter), in.ExportBatchID)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(res)
}

// Reprint godoc
// @Summary      Rebuild a past export file
// @Tags         exports
// @Produce      application/octet-stream
// @Security     Bearer
// @Param        id        path   string  true   "Export batch ID"
// @Param        batch     query  string  false  "Sage batch name; defaults to the export batch id"
// @Param        kit_date  query  string  false  "YYYY-MM-DD"
// @Param        acct_date query  string  false  "YYYY-MM-DD"
// @Param        format    query  string  false  "txt or xlsx"
// @Success      200       {file}  binary
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /api/exports/{id} [get]
func (h *ExportHandler) Reprint(c *fiber.Ctx) error {
	hdr := export.Header{Batch: c.Query("batch")}
	kit, err := queryTime(c, "kit_date")
	if err != nil {
		return writeError(c, err, nil)
	}
	acct, err := queryTime(c, "acct_date")
	if err != nil {
		return writeError(c, err, nil)
	}
	if kit != nil {
		hdr.KitDate = *kit
	}
	if acct != nil {
		hdr.AcctDate = *acct
	}
	f, err := h.uc.Reprint(c.Context(), c.Params("id"), hdr, c.Query("format"))
	if err != nil {
		return writeError(c, err, nil)
	}
	return h.send(c, f)
}

func (h *ExportHandler) send(c *fiber.Ctx, f *export.File) error {
	c.Set("X-Export-Batch-Id", f.ExportBatchID)
	c.Set("X-Export-Lines", strconv.Itoa(f.Lines))
	return sendFile(c, f.Name, f.ContentType, f.Data)
}
