package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/application/kitting"
	"github.com/jhoicas/roofing-ops/internal/application/report"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

// KittingHandler records warehouse fulfillment.
type KittingHandler struct {
	uc      *kitting.UseCase
	reports *report.UseCase
}

// NewKittingHandler builds the handler.
func NewKittingHandler(uc *kitting.UseCase, reports *report.UseCase) *KittingHandler {
	return &KittingHandler{uc: uc, reports: reports}
}

type kittingResponse struct {
	BatchID    string                       `json:"batch_id"`
	Warehouse  string                       `json:"warehouse"`
	KittedOn   time.Time                    `json:"kitted_on"`
	Rows       []kitting.RowAllocation      `json:"rows"`
	Backorders []dto.BatchBackorderResponse `json:"backorders"`
}

func kitBatchResponse(r *kitting.KitBatchResult) interface{} {
	if r == nil {
		return nil
	}
	return kittingResponse{r.BatchID, r.Warehouse, r.KittedOn, r.Rows, dto.ToBatchBackorderResponses(r.Backorders)}
}

func resolveResponse(r *kitting.ResolveResult) interface{} {
	if r == nil {
		return nil
	}
	return kittingResponse{r.BatchID, r.Warehouse, r.KittedOn, r.Rows, dto.ToBatchBackorderResponses(r.Backorders)}
}

// KitBatch godoc
// @Summary      Kit a request batch
// @Description  Spreads each item total over the batch rows; shortfalls become batch backorders.
// @Description  With format=pdf the response is the warehouse kitting summary instead of JSON.
// @Tags         kitting
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id      path   string               true   "Batch ID"
// @Param        format  query  string               false  "pdf"
// @Param        body    body   dto.KitBatchRequest  true   "item totals"
// @Success      201     {object}  kittingResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      500     {object}  dto.PartialWriteResponse
// @Router       /api/kitting/batches/{id} [post]
func (h *KittingHandler) KitBatch(c *fiber.Ctx) error {
	var in dto.KitBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]kitting.KitItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, kitting.KitItem{ItemCode: it.ItemCode, KittedQty: it.KittedQty})
	}
	batchID := c.Params("id")
	res, err := h.uc.KitBatch(c.Context(), kitting.KitBatchInput{
		BatchID:   batchID,
		Warehouse: in.Warehouse,
		User:      GetUsername(c),
		Note:      in.Note,
		Items:     items,
	})
	if err != nil {
		return writeError(c, err, kitBatchResponse(res))
	}
	if c.Query("format") == "pdf" {
		return h.summary(c, repository.KittingLogFilter{BatchIDs: []string{batchID}, KittingTypes: []string{entity.KittingInitial}}, "kitting-"+batchID+".pdf")
	}
	return c.Status(fiber.StatusCreated).JSON(kitBatchResponse(res))
}

// OpenBackorders godoc
// @Summary      Open batch backorders
// @Tags         backorders
// @Produce      json
// @Security     Bearer
// @Param        batch_id  query  string  false  "Batch ID; empty lists every batch"
// @Success      200       {object}  dto.ListResponse[dto.BatchBackorderResponse]
// @Router       /api/backorders [get]
func (h *KittingHandler) OpenBackorders(c *fiber.Ctx) error {
	list, err := h.uc.OpenBackorders(c.Context(), c.Query("batch_id"))
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(dto.NewList(dto.ToBatchBackorderResponses(list)))
}

// Resolve godoc
// @Summary      Fulfill batch backorders
// @Tags         backorders
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path  string                       true  "Batch ID"
// @Param        body  body  dto.ResolveBackorderRequest  true  "fulfilled quantities"
// @Success      201   {object}  kittingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.PartialWriteResponse
// @Router       /api/backorders/{id} [post]
func (h *KittingHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ResolveBackorderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]kitting.ResolveLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, kitting.ResolveLine{ItemCode: l.ItemCode, Qty: l.Qty, Note: l.Note})
	}
	res, err := h.uc.ResolveBackorder(c.Context(), kitting.ResolveInput{
		BatchID:   c.Params("id"),
		Warehouse: in.Warehouse,
		User:      GetUsername(c),
		Lines:     lines,
	})
	if err != nil {
		return writeError(c, err, resolveResponse(res))
	}
	return c.Status(fiber.StatusCreated).JSON(resolveResponse(res))
}

// Addon godoc
// @Summary      Kit add-on material
// @Tags         kitting
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body  dto.AddonRequest  true  "add-on lines"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/addon [post]
func (h *KittingHandler) Addon(c *fiber.Ctx) error {
	var in dto.AddonRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]kitting.AddonLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, kitting.AddonLine(l))
	}
	res, err := h.uc.KitAddon(c.Context(), kitting.AddonInput{
		Warehouse: in.Warehouse,
		User:      GetUsername(c),
		Note:      in.Note,
		Lines:     lines,
	})
	if err != nil {
		var written interface{}
		if res != nil {
			written = dto.ToKittingLogResponses(res.Logs)
		}
		return writeError(c, err, written)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"logs":    dto.ToKittingLogResponses(res.Logs),
		"skipped": res.Skipped,
	})
}

// Summary godoc
// @Summary      Kitting summary PDF
// @Tags         kitting
// @Produce      application/pdf
// @Security     Bearer
// @Param        batch_id      query  string  false  "comma separated"
// @Param        warehouse     query  string  false  "comma separated"
// @Param        kitting_type  query  string  false  "initial, backorder, addon"
// @Param        start         query  string  false  "inclusive"
// @Param        end           query  string  false  "exclusive"
// @Success      200           {file}  binary
// @Router       /api/kitting/summary.pdf [get]
func (h *KittingHandler) Summary(c *fiber.Ctx) error {
	f, err := logFilterFromQuery(c)
	if err != nil {
		return writeError(c, err, nil)
	}
	return h.summary(c, f, "kitting-summary.pdf")
}

func (h *KittingHandler) summary(c *fiber.Ctx, f repository.KittingLogFilter, name string) error {
	data, err := h.reports.KittingSummary(c.Context(), f)
	if err != nil {
		return writeError(c, err, nil)
	}
	return sendFile(c, name, "application/pdf", data)
}
