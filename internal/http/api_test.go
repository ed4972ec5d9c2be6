package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/abolfazlirani/asar-backend-app/internal/deeplink"
	asarhttp "github.com/abolfazlirani/asar-backend-app/internal/http"
	"github.com/abolfazlirani/asar-backend-app/internal/layout"
	"github.com/abolfazlirani/asar-backend-app/internal/pages"
	"github.com/abolfazlirani/asar-backend-app/internal/prices"
)

type staticStore struct{}

func (staticStore) FindActive(_ context.Context, _ layout.StoreKind, _ layout.Query) ([]layout.Item, error) {
	return []layout.Item{{ID: "p-1", Title: "first"}}, nil
}

type stubPrices struct {
	items []*prices.PriceItem
	err   error
}

func (s stubPrices) Sync(context.Context) (int, error) { return len(s.items), s.err }

func (s stubPrices) ListPrices(context.Context) ([]*prices.PriceItem, error) {
	return s.items, s.err
}

type response struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newPages(t *testing.T) (pages.Service, *pages.MemoryPageRepository) {
	t.Helper()
	repo := pages.NewMemoryPageRepository()
	resolver := layout.NewResolver(layout.NewDispatcher(staticStore{}, deeplink.New("")))
	return pages.NewService(repo, resolver), repo
}

func do(t *testing.T, handler http.Handler, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded response
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, target, err, rec.Body.String())
		}
	}
	return rec, decoded
}

func admin() map[string]string {
	return map[string]string{
		asarhttp.HeaderUserID:   uuid.NewString(),
		asarhttp.HeaderUserRole: asarhttp.RoleAdmin,
	}
}

func TestPageRenderReturnsEnvelope(t *testing.T) {
	svc, _ := newPages(t)
	if _, err := svc.Create(context.Background(), pages.CreatePageRequest{
		Title:      "Home",
		Slug:       "home",
		Language:   "fa",
		LayoutJSON: `{"rows":[{"type":"carousel","dataSource":{"type":"posts"}}]}`,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	handler := asarhttp.NewAPI(asarhttp.WithPageService(svc)).Handler()

	rec, body := do(t, handler, http.MethodGet, "/api/v1/pages/home", "", nil)
	if rec.Code != http.StatusOK || body.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var rendered struct {
		Slug string `json:"slug"`
		Rows []struct {
			Type  string `json:"type"`
			Items []struct {
				ID   string `json:"id"`
				Link string `json:"link"`
			} `json:"items"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(body.Data, &rendered); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if rendered.Slug != "home" || len(rendered.Rows) != 1 || len(rendered.Rows[0].Items) != 1 {
		t.Fatalf("unexpected page %s", body.Data)
	}
	if rendered.Rows[0].Items[0].Link != "asar://matna.app?id=p-1&source=post" {
		t.Fatalf("unexpected link %q", rendered.Rows[0].Items[0].Link)
	}

	rec, body = do(t, handler, http.MethodGet, "/api/v1/pages/home?lang=en", "", nil)
	if rec.Code != http.StatusNotFound || body.Message != "Page not found" {
		t.Fatalf("expected page not found, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestPageRenderReportsCorruptLayout(t *testing.T) {
	svc, repo := newPages(t)
	page, err := svc.Create(context.Background(), pages.CreatePageRequest{
		Slug:       "broken",
		Language:   "fa",
		LayoutJSON: `{"rows":[]}`,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	page.LayoutJSON = `{"rows": [`
	if _, err := repo.Update(context.Background(), page); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	handler := asarhttp.NewAPI(asarhttp.WithPageService(svc)).Handler()

	rec, body := do(t, handler, http.MethodGet, "/api/v1/pages/broken", "", nil)
	if rec.Code != http.StatusInternalServerError || body.Message != "Failed to parse page layout" {
		t.Fatalf("expected layout failure, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestAdminRoutesRequireRole(t *testing.T) {
	svc, _ := newPages(t)
	handler := asarhttp.NewAPI(asarhttp.WithPageService(svc)).Handler()

	rec, body := do(t, handler, http.MethodGet, "/api/v1/admin/pages", "", nil)
	if rec.Code != http.StatusUnauthorized || body.Message != "unauthorized request" {
		t.Fatalf("expected 401, got %d %s", rec.Code, rec.Body.String())
	}

	user := map[string]string{asarhttp.HeaderUserID: uuid.NewString()}
	rec, body = do(t, handler, http.MethodGet, "/api/v1/admin/pages", "", user)
	if rec.Code != http.StatusForbidden || body.Message != "forbidden" {
		t.Fatalf("expected 403, got %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = do(t, handler, http.MethodGet, "/api/v1/admin/pages", "", admin())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected admin access, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestPageCreateValidatesAndConflicts(t *testing.T) {
	svc, _ := newPages(t)
	handler := asarhttp.NewAPI(asarhttp.WithPageService(svc)).Handler()

	rec, body := do(t, handler, http.MethodPost, "/api/v1/admin/pages", `{"language":"fa","layout_json":{"rows":[]}}`, admin())
	if rec.Code != http.StatusBadRequest || body.Status != http.StatusBadRequest || body.Message == "" {
		t.Fatalf("expected validation failure, got %d %s", rec.Code, rec.Body.String())
	}

	payload := `{"title":"Home","slug":"home","language":"fa","layout_json":"{\"rows\":[]}"}`
	rec, body = do(t, handler, http.MethodPost, "/api/v1/admin/pages", payload, admin())
	if rec.Code != http.StatusCreated || body.Message != "Page created successfully" {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = do(t, handler, http.MethodPost, "/api/v1/admin/pages", payload, admin())
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestUnknownRouteFallback(t *testing.T) {
	handler := asarhttp.NewAPI().Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"message":"Not Found"}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestMissingServiceIsUnavailable(t *testing.T) {
	handler := asarhttp.NewAPI().Handler()

	rec, body := do(t, handler, http.MethodGet, "/api/v1/prices", "", nil)
	if rec.Code != http.StatusServiceUnavailable || body.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestPriceList(t *testing.T) {
	items := []*prices.PriceItem{{Symbol: "IR_GOLD_18K", Title: "Gold 18k", Buy: 100, LastUpdate: time.Unix(1700000000, 0).UTC()}}
	handler := asarhttp.NewAPI(asarhttp.WithPriceService(stubPrices{items: items})).Handler()

	rec, body := do(t, handler, http.MethodGet, "/api/v1/prices", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var decoded []prices.PriceItem
	if err := json.Unmarshal(body.Data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Symbol != "IR_GOLD_18K" {
		t.Fatalf("unexpected prices %s", body.Data)
	}

	failing := asarhttp.NewAPI(asarhttp.WithPriceService(stubPrices{err: errors.New("db down")})).Handler()
	rec, body = do(t, failing, http.MethodGet, "/api/v1/prices", "", nil)
	if rec.Code != http.StatusInternalServerError || body.Message != "Internal server error" {
		t.Fatalf("expected 500, got %d %s", rec.Code, rec.Body.String())
	}
}

type recordingOps struct {
	triggers []string
	targets  [][]string
	syncErr  error
}

func (o *recordingOps) SyncPrices(_ context.Context, trigger string) error {
	o.triggers = append(o.triggers, trigger)
	return o.syncErr
}

func (o *recordingOps) InvalidateCache(_ context.Context, targets ...string) error {
	o.targets = append(o.targets, targets)
	return nil
}

func TestAdminOperations(t *testing.T) {
	ops := &recordingOps{}
	handler := asarhttp.NewAPI(asarhttp.WithOperations(ops)).Handler()

	rec, body := do(t, handler, http.MethodPost, "/api/v1/admin/prices/sync", "", admin())
	if rec.Code != http.StatusOK || body.Message != "Prices synced successfully." {
		t.Fatalf("unexpected sync response %d %s", rec.Code, rec.Body.String())
	}
	if len(ops.triggers) != 1 || ops.triggers[0] != "admin" {
		t.Fatalf("expected admin trigger, got %v", ops.triggers)
	}

	rec, _ = do(t, handler, http.MethodPost, "/api/v1/admin/cache/invalidate", `{"targets":["pages"]}`, admin())
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected invalidate response %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = do(t, handler, http.MethodPost, "/api/v1/admin/cache/invalidate", "", admin())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected empty body to invalidate everything, got %d %s", rec.Code, rec.Body.String())
	}
	if len(ops.targets) != 2 || len(ops.targets[0]) != 1 || len(ops.targets[1]) != 0 {
		t.Fatalf("unexpected targets %v", ops.targets)
	}

	ops.syncErr = errors.New("feed down")
	rec, _ = do(t, handler, http.MethodPost, "/api/v1/admin/prices/sync", "", admin())
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on failed sync, got %d", rec.Code)
	}
}
