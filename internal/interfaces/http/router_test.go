package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/roofing-ops/internal/application/auth"
	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/application/export"
	"github.com/jhoicas/roofing-ops/internal/application/kitting"
	"github.com/jhoicas/roofing-ops/internal/application/pulltag"
	"github.com/jhoicas/roofing-ops/internal/application/report"
	"github.com/jhoicas/roofing-ops/internal/application/usecase"
	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	apphttp "github.com/jhoicas/roofing-ops/internal/interfaces/http"
	"github.com/jhoicas/roofing-ops/internal/testutil/memstore"
)

type stubParser struct{}

func (stubParser) Parse(context.Context, []byte) ([]entity.BudgetLine, error) { return nil, nil }

type stubRenderer struct{ docs []report.Document }

func (r *stubRenderer) Render(_ context.Context, doc report.Document) ([]byte, error) {
	r.docs = append(r.docs, doc)
	return []byte("%PDF-stub"), nil
}

type stubWorkbook struct{}

func (stubWorkbook) Write(context.Context, export.Header, []export.Line) ([]byte, error) {
	return []byte("PK"), nil
}

type apiFixture struct {
	app      *fiber.App
	store    *memstore.Store
	renderer *stubRenderer
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{Name: "Main"}))
	require.NoError(t, s.Items().Create(ctx, &entity.Item{ItemCode: "SHINGLE-A", Description: "Architectural shingle", UOM: "BD"}))

	log := zerolog.Nop()
	renderer := &stubRenderer{}
	userUC := usecase.NewUserUseCase(s.Users())
	deps := apphttp.RouterDeps{
		AuthUC:      auth.NewAuthUseCase(s.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		UserUC:      userUC,
		WarehouseUC: usecase.NewWarehouseUseCase(s.Warehouses()),
		ItemUC:      usecase.NewItemUseCase(s.Items()),
		RoofTypeUC:  usecase.NewRoofTypeUseCase(s.RoofTypes()),
		CommunityUC: usecase.NewCommunityUseCase(s.Communities(), s.Items()),
		UploadUC: pulltag.NewUploadUseCase(stubParser{}, s.Pulltags(), s.Items(), s.RoofTypes(), s.Communities(),
			pulltag.GeneratorConfig{JobPrefixLen: 5}, log),
		RequestUC: pulltag.NewRequestUseCase(s.Pulltags(), time.UTC, log),
		KittingUC: kitting.NewUseCase(s.Pulltags(), s.Backorders(), s.Warehouses(), s.Items(), s, time.UTC, log),
		ExportUC:  export.NewUseCase(s.KittingLogs(), s.Pulltags(), s.Items(), stubWorkbook{}, "EA", time.UTC, log),
		ReportUC:  report.NewUseCase(s.KittingLogs(), s.Pulltags(), renderer),
		JWTSecret: testJWTSecret,
	}
	app := fiber.New()
	apphttp.Router(app, deps)
	return &apiFixture{app: app, store: s, renderer: renderer}
}

func pendingTag(uid, lot string, qty int64) *entity.Pulltag {
	return &entity.Pulltag{
		UID: uid, JobNumber: "12345-01", LotNumber: lot, ItemCode: "SHINGLE-A", CostCode: "R100",
		Description: "Architectural shingle", UOM: "BD", Quantity: decimal.NewFromInt(qty),
		BackorderQty: decimal.Zero, BackorderStatus: entity.BackorderNone, Status: entity.PulltagPending,
		UploadedOn: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *apiFixture) call(t *testing.T, method, path, role string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func pairs(lots ...string) dto.RequestBatchRequest {
	var in dto.RequestBatchRequest
	for _, l := range lots {
		in.Pairs = append(in.Pairs, entity.JobLot{JobNumber: "12345-01", LotNumber: l})
	}
	return in
}

// ─── auth ───────────────────────────────────────────────────────────────────

func TestLogin_ReturnsScreensForRole(t *testing.T) {
	f := newAPI(t)
	_, err := usecase.NewUserUseCase(f.store.Users()).Create(context.Background(),
		dto.CreateUserRequest{Username: "wh1", Password: "secret1", Role: entity.RoleWarehouse})
	require.NoError(t, err)

	resp := f.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "wh1", Password: "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, []string{auth.ScreenKitting, auth.ScreenBackorder, auth.ScreenAddon}, out.Screens)

	resp = f.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "wh1", Password: "wrong!"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ─── request -> kit -> backorder -> export ──────────────────────────────────

func TestWorkflow_RequestKitResolveExport(t *testing.T) {
	f := newAPI(t)
	ctx := context.Background()
	require.NoError(t, f.store.Pulltags().InsertMany(ctx, []*entity.Pulltag{
		pendingTag("p1", "1", 10),
		pendingTag("p2", "2", 10),
	}))

	resp := f.call(t, http.MethodPost, "/api/requests", "super", pairs("1", "2"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sub pulltag.SubmitResult
	decode(t, resp, &sub)
	require.NotEmpty(t, sub.BatchID)
	assert.Equal(t, 2, sub.Submitted)

	resp = f.call(t, http.MethodGet, "/api/kitting/batches", "warehouse", nil)
	var kittable dto.ListResponse[string]
	decode(t, resp, &kittable)
	assert.Equal(t, []string{sub.BatchID}, kittable.Items)

	kitReq := dto.KitBatchRequest{Warehouse: "Main"}
	kitReq.Items = append(kitReq.Items, struct {
		ItemCode  string `json:"item_code"`
		KittedQty int64  `json:"kitted_qty"`
	}{ItemCode: "SHINGLE-A", KittedQty: 16})
	resp = f.call(t, http.MethodPost, "/api/kitting/batches/"+sub.BatchID, "warehouse", kitReq)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var kitted struct {
		Rows       []kitting.RowAllocation      `json:"rows"`
		Backorders []dto.BatchBackorderResponse `json:"backorders"`
	}
	decode(t, resp, &kitted)
	require.Len(t, kitted.Rows, 2)
	require.Len(t, kitted.Backorders, 1)
	assert.Equal(t, "4", kitted.Backorders[0].ShortedQty)

	resp = f.call(t, http.MethodGet, "/api/backorders?batch_id="+sub.BatchID, "warehouse", nil)
	var open dto.ListResponse[dto.BatchBackorderResponse]
	decode(t, resp, &open)
	require.Equal(t, 1, open.Total)

	resolve := dto.ResolveBackorderRequest{Warehouse: "Main"}
	resolve.Lines = append(resolve.Lines, struct {
		ItemCode string `json:"item_code"`
		Qty      int64  `json:"qty"`
		Note     string `json:"note"`
	}{ItemCode: "SHINGLE-A", Qty: 4})
	resp = f.call(t, http.MethodPost, "/api/backorders/"+sub.BatchID, "warehouse", resolve)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = f.call(t, http.MethodPost, "/api/exports", "admin", dto.ExportRequest{
		Filter: dto.ExportFilter{BatchIDs: []string{sub.BatchID}},
		Batch:  "MAY-KIT",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Export-Batch-Id"))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "MAY_KIT.txt")

	assert.Equal(t, entity.PulltagExported, f.store.Pulltag("p1").Status)
}

func TestKitBatch_PDFSummary(t *testing.T) {
	f := newAPI(t)
	require.NoError(t, f.store.Pulltags().InsertMany(context.Background(), []*entity.Pulltag{pendingTag("p1", "1", 5)}))

	resp := f.call(t, http.MethodPost, "/api/requests", "super", pairs("1"))
	var sub pulltag.SubmitResult
	decode(t, resp, &sub)

	kitReq := dto.KitBatchRequest{Warehouse: "Main"}
	kitReq.Items = append(kitReq.Items, struct {
		ItemCode  string `json:"item_code"`
		KittedQty int64  `json:"kitted_qty"`
	}{ItemCode: "SHINGLE-A", KittedQty: 5})
	resp = f.call(t, http.MethodPost, "/api/kitting/batches/"+sub.BatchID+"?format=pdf", "warehouse", kitReq)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	require.Len(t, f.renderer.docs, 1)
	assert.Equal(t, sub.BatchID, f.renderer.docs[0].Code)
}

// ─── error mapping ──────────────────────────────────────────────────────────

func TestSubmit_ValidationError(t *testing.T) {
	f := newAPI(t)
	resp := f.call(t, http.MethodPost, "/api/requests", "super", dto.RequestBatchRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out dto.ErrorResponse
	decode(t, resp, &out)
	assert.Equal(t, "VALIDATION", out.Code)
}

func TestSubmit_PartialWrite(t *testing.T) {
	f := newAPI(t)
	require.NoError(t, f.store.Pulltags().InsertMany(context.Background(), []*entity.Pulltag{
		pendingTag("p1", "1", 10),
		pendingTag("p2", "2", 10),
	}))
	f.store.FailOn("pulltags.MarkRequested", 2, errors.New("connection reset"))

	resp := f.call(t, http.MethodPost, "/api/requests", "super", pairs("1", "2"))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var out struct {
		Code      string               `json:"code"`
		FailedRow string               `json:"failed_row"`
		Written   pulltag.SubmitResult `json:"written"`
	}
	decode(t, resp, &out)
	assert.Equal(t, "PARTIAL_WRITE", out.Code)
	assert.Equal(t, "12345-01/2", out.FailedRow)
	assert.Equal(t, 1, out.Written.Submitted)
	assert.NotEmpty(t, out.Written.BatchID)
}

func TestKitBatch_LostRaceIsConflict(t *testing.T) {
	f := newAPI(t)
	require.NoError(t, f.store.Pulltags().InsertMany(context.Background(), []*entity.Pulltag{pendingTag("p1", "1", 5)}))

	resp := f.call(t, http.MethodPost, "/api/requests", "super", pairs("1"))
	var sub pulltag.SubmitResult
	decode(t, resp, &sub)

	f.store.FailOn("pulltags.MarkKitted", 1, domain.ErrConflict)
	kitReq := dto.KitBatchRequest{Warehouse: "Main"}
	kitReq.Items = append(kitReq.Items, struct {
		ItemCode  string `json:"item_code"`
		KittedQty int64  `json:"kitted_qty"`
	}{ItemCode: "SHINGLE-A", KittedQty: 5})
	resp = f.call(t, http.MethodPost, "/api/kitting/batches/"+sub.BatchID, "warehouse", kitReq)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var out dto.PartialWriteResponse
	decode(t, resp, &out)
	assert.Equal(t, "CONFLICT", out.Code)
	assert.Equal(t, "p1", out.FailedRow)
}

func TestFind_NotFound(t *testing.T) {
	f := newAPI(t)
	resp := f.call(t, http.MethodGet, "/api/requests/find?job=99999-01&lot=1", "super", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWarehouseCreate_Duplicate(t *testing.T) {
	f := newAPI(t)
	resp := f.call(t, http.MethodPost, "/api/warehouses", "admin", dto.CreateWarehouseRequest{Name: "Main"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// ─── role gates ─────────────────────────────────────────────────────────────

func TestRoleGates(t *testing.T) {
	f := newAPI(t)
	cases := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"warehouse reads warehouses", http.MethodGet, "/api/warehouses", "warehouse", http.StatusOK},
		{"warehouse cannot add warehouses", http.MethodPost, "/api/warehouses", "warehouse", http.StatusForbidden},
		{"super cannot upload budgets", http.MethodPost, "/api/budgets", "super", http.StatusForbidden},
		{"warehouse cannot request", http.MethodPost, "/api/requests/preview", "warehouse", http.StatusForbidden},
		{"super cannot kit", http.MethodGet, "/api/kitting/batches", "super", http.StatusForbidden},
		{"super cannot export", http.MethodPost, "/api/exports/preview", "super", http.StatusForbidden},
		{"warehouse cannot list users", http.MethodGet, "/api/users", "warehouse", http.StatusForbidden},
		{"exec lists users", http.MethodGet, "/api/users", "exec", http.StatusOK},
		{"no token", http.MethodGet, "/api/warehouses", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := f.call(t, tc.method, tc.path, tc.role, nil)
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestBudgetUpload_MissingFile(t *testing.T) {
	f := newAPI(t)
	resp := f.call(t, http.MethodPost, "/api/budgets", "admin", nil)
	var out dto.ErrorResponse
	decode(t, resp, &out)
	assert.Equal(t, "MISSING_FILE", out.Code)
}

func TestAddon_SkipsIncompleteLines(t *testing.T) {
	f := newAPI(t)
	body := map[string]interface{}{
		"warehouse": "Main",
		"lines": []map[string]interface{}{
			{"item_code": "SHINGLE-A", "cost_code": "R100", "job_number": "12345-01", "lot_number": "7", "quantity": 3},
			{"item_code": "SHINGLE-A", "job_number": "12345-01", "quantity": 2},
		},
	}
	resp := f.call(t, http.MethodPost, "/api/addon", "warehouse", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out struct {
		Logs    []dto.KittingLogResponse `json:"logs"`
		Skipped int                      `json:"skipped"`
	}
	decode(t, resp, &out)
	require.Len(t, out.Logs, 1)
	assert.Equal(t, 1, out.Skipped)
	assert.Equal(t, "addon::SHINGLE-A::12345-01::7", out.Logs[0].PulltagUID)
	assert.Equal(t, entity.KittingAddon, out.Logs[0].KittingType)
}
