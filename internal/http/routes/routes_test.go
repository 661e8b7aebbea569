package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	scs "github.com/alexedwards/scs/v2"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmineral/confirmation/internal/assay"
	"github.com/openmineral/confirmation/internal/config"
	"github.com/openmineral/confirmation/internal/db"
	"github.com/openmineral/confirmation/internal/jobs"
	"github.com/openmineral/confirmation/internal/suggest"
)

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Queue: jobs.QueueProcessing, Type: task.Type()}, nil
}

type testEnv struct {
	srv    *httptest.Server
	client *http.Client
	q      *db.Queries
	jobs   *fakeEnqueuer
}

func newTestEnv(t *testing.T, opts ...suggest.Option) *testEnv {
	t.Helper()
	ctx := context.Background()
	q, err := db.Open(ctx, db.DriverSQLite, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(q.Close)
	require.NoError(t, q.Bootstrap(ctx))

	enq := &fakeEnqueuer{}
	s := New(ServerOptions{
		Sess:    scs.New(),
		Q:       q,
		Jobs:    enq,
		Suggest: suggest.NewEngine(suggest.NewCache(suggest.DefaultTTL), opts...),
		Cfg:     config.Config{UploadMaxBytes: 1 << 20},
		Log:     zerolog.Nop(),
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{srv: srv, client: &http.Client{Jar: jar}, q: q, jobs: enq}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, _ = e.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReferenceListAndCreate(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, http.MethodGet, "/api/materials/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	resp, body = e.do(t, http.MethodPost, "/api/materials/", map[string]string{"name": "Lead Concentrate"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[db.Material](t, body)
	assert.NotZero(t, created.ID)

	resp, body = e.do(t, http.MethodGet, "/api/materials", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]db.Material](t, body)
	require.Len(t, list, 1)
	assert.Equal(t, "Lead Concentrate", list[0].Name)

	resp, body = e.do(t, http.MethodPost, "/api/currencies/", map[string]string{"code": "USD", "name": "US Dollar", "symbol": "$"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"code":"USD"`)

	resp, body = e.do(t, http.MethodPost, "/api/buyers/", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"name"`)

	resp, _ = e.do(t, http.MethodPost, "/api/buyers/", "{")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPackagingFilter(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	for _, n := range []string{"Bulk", "Big Bags", "Containers"} {
		require.NoError(t, db.Create(ctx, e.q, &db.Packaging{Name: n}))
	}
	rail := db.TransportMode{Name: "Rail"}
	ship := db.TransportMode{Name: "Ship"}
	truck := db.TransportMode{Name: "Truck"}
	for _, m := range []*db.TransportMode{&rail, &ship, &truck} {
		require.NoError(t, db.Create(ctx, e.q, m))
	}

	names := func(query string) []string {
		resp, body := e.do(t, http.MethodGet, "/api/packaging/"+query, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out []string
		for _, p := range decode[[]db.Packaging](t, body) {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Bulk", "Big Bags", "Containers"}, names(""))
	assert.Equal(t, []string{"Bulk", "Big Bags"}, names("?transport_mode="+strconv.FormatInt(rail.ID, 10)))
	assert.Equal(t, []string{"Bulk"}, names("?transport_mode="+strconv.FormatInt(ship.ID, 10)))
	assert.Equal(t, []string{"Bulk", "Big Bags", "Containers"}, names("?transport_mode="+strconv.FormatInt(truck.ID, 10)))
	assert.Equal(t, []string{"Bulk", "Big Bags", "Containers"}, names("?transport_mode=999"))
	assert.Equal(t, []string{"Bulk", "Big Bags", "Containers"}, names("?transport_mode=abc"))
}

func TestConfirmationCreateGetAndDraft(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	m := db.Material{Name: "Zinc Concentrate"}
	require.NoError(t, db.Create(ctx, e.q, &m))

	resp, body := e.do(t, http.MethodPut, "/api/draft/", `{"step": 2, "material": "1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	_, body = e.do(t, http.MethodGet, "/api/draft/", nil)
	assert.JSONEq(t, `{"step": 2, "material": "1"}`, string(body))

	resp, body = e.do(t, http.MethodPost, "/api/business-confirmations/", map[string]any{
		"material":         strconv.FormatInt(m.ID, 10),
		"quantity":         "500",
		"treatment_charge": 320,
		"refining_charge":  "",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	c := decode[db.BusinessConfirmation](t, body)
	assert.Equal(t, db.DefaultSeller, c.Seller)
	assert.Equal(t, 50, c.CostSharingBuyer)

	_, body = e.do(t, http.MethodGet, "/api/draft/", nil)
	assert.JSONEq(t, `{}`, string(body), "create clears the draft")

	resp, body = e.do(t, http.MethodGet, "/api/business-confirmations/"+strconv.FormatInt(c.ID, 10)+"/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[db.BusinessConfirmation](t, body)
	assert.Equal(t, c.ID, got.ID)
	require.NotNil(t, got.TreatmentCharge)
	assert.InDelta(t, 320, *got.TreatmentCharge, 1e-9)

	resp, _ = e.do(t, http.MethodGet, "/api/business-confirmations/9999/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, "/api/business-confirmations/abc/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConfirmationCreateRejectsBadInput(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, http.MethodPost, "/api/business-confirmations/", map[string]any{"prepayment_percentage": 120})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "prepayment_percentage")

	resp, _ = e.do(t, http.MethodPost, "/api/business-confirmations/", map[string]any{"buyer": 77})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/business-confirmations/", map[string]any{"quantity": "many"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDraftRejectsNonObjects(t *testing.T) {
	e := newTestEnv(t)
	for _, body := range []string{`[1,2]`, `null`, `"x"`, `{`} {
		resp, _ := e.do(t, http.MethodPut, "/api/draft/", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
	resp, _ := e.do(t, http.MethodDelete, "/api/draft/", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

type reviewResponse struct {
	Findings []struct {
		Type  string `json:"type"`
		Field string `json:"field"`
	} `json:"findings"`
	Blocking bool `json:"blocking"`
}

func TestReview(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodPost, "/api/business-confirmations/review/", map[string]any{
		"treatment_charge": "360",
		"final_location":   "Lulea",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	out := decode[reviewResponse](t, body)
	require.Len(t, out.Findings, 3)
	assert.Equal(t, "nominated_surveyor", out.Findings[0].Field)
	assert.Equal(t, "payment_method", out.Findings[1].Field)
	assert.Equal(t, "error", out.Findings[1].Type)
	assert.Equal(t, "treatment_charge", out.Findings[2].Field)
	assert.True(t, out.Blocking)
}

func TestTriggerProcessingAndStatus(t *testing.T) {
	e := newTestEnv(t)
	c, err := e.q.CreateConfirmation(context.Background(), db.CreateConfirmationParams{})
	require.NoError(t, err)

	resp, body := e.do(t, http.MethodPost, "/api/trigger-processing/", map[string]any{"business_confirmation_id": c.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	pt := decode[db.ProcessingTask](t, body)
	assert.Equal(t, db.TaskPending, pt.Status)
	assert.Equal(t, c.ID, pt.BusinessConfirmation)
	assert.Len(t, pt.CeleryTaskID, 36)

	require.Len(t, e.jobs.tasks, 1)
	var payload jobs.ProcessConfirmationPayload
	require.NoError(t, json.Unmarshal(e.jobs.tasks[0].Payload(), &payload))
	assert.Equal(t, pt.ID, payload.ProcessingTaskID)

	resp, body = e.do(t, http.MethodGet, "/api/task-status/"+pt.CeleryTaskID+"/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, pt.ID, decode[db.ProcessingTask](t, body).ID)

	resp, _ = e.do(t, http.MethodGet, "/api/task-status/nope/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTriggerProcessingErrors(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, http.MethodPost, "/api/trigger-processing/", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"business_confirmation_id is required"}`, string(body))

	resp, _ = e.do(t, http.MethodPost, "/api/trigger-processing/", map[string]any{"business_confirmation_id": 404})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	c, err := e.q.CreateConfirmation(context.Background(), db.CreateConfirmationParams{})
	require.NoError(t, err)
	e.jobs.err = errors.New("dial tcp: connection refused")
	resp, body = e.do(t, http.MethodPost, "/api/trigger-processing/", map[string]any{"business_confirmation_id": strconv.FormatInt(c.ID, 10)})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "connection refused")
}

type stubGenerator struct{ reply string }

func (g stubGenerator) Generate(context.Context, string) (string, error) { return g.reply, nil }

func TestSuggestions(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodPost, "/api/ai-suggestions/", map[string]any{
		"material": "1", "treatment_charge": 400, "refining_charge": "", "delivery_point": 2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	res := decode[suggest.Result](t, body)
	assert.Equal(t, suggest.SourceFallback, res.Source)
	assert.Contains(t, res.TCSuggestion, "$400")

	resp, body = e.do(t, http.MethodPost, "/api/ai-suggestions/", "not json")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	fallback := decode[map[string]string](t, body)
	assert.NotEmpty(t, fallback["error"])
	assert.Equal(t, suggest.Default().TCSuggestion, fallback["tc_suggestion"])
	assert.Equal(t, "fallback", fallback["source"])
}

func TestSuggestionsWithGenerator(t *testing.T) {
	e := newTestEnv(t, suggest.WithGenerator(stubGenerator{reply: "TC: hold at $315\nRC: hold at $4.40"}))
	resp, body := e.do(t, http.MethodPost, "/api/ai-suggestions/", map[string]any{"material": "Lead"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[suggest.Result](t, body)
	assert.Equal(t, suggest.SourceAI, res.Source)
	assert.Equal(t, "AI: hold at $315", res.TCSuggestion)
	assert.Equal(t, "AI: hold at $4.40", res.RCSuggestion)
}

func upload(t *testing.T, e *testEnv, field, name, content string) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := e.client.Post(e.srv.URL+"/api/parse-assay-file/", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func TestParseAssayFile(t *testing.T) {
	e := newTestEnv(t)

	resp, body := upload(t, e, "file", "assay.csv", "Pb,Zinc,Cu,Ag\n51.2,7.5,0.4,1100\n")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	out := decode[struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
		Message string         `json:"message"`
	}](t, body)
	assert.True(t, out.Success)
	assert.Equal(t, 51.2, out.Data["assay_pb"])
	assert.Equal(t, 7.5, out.Data["assay_zn"])
	assert.Equal(t, "assay.csv", out.Data["file_name"])
	assert.Equal(t, "Successfully parsed assay.csv", out.Message)

	resp, body = upload(t, e, "other", "assay.csv", "Pb\n1\n")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"No file uploaded"}`, string(body))

	resp, body = upload(t, e, "file", "assay.pdf", "%PDF")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Unsupported file format. Please upload .xlsx, .xls, or .csv file"}`, string(body))

	resp, body = upload(t, e, "file", "assay.csv", "Pb\nn/a\n")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	parsed := decode[map[string]string](t, body)
	assert.Contains(t, parsed["error"], "Error parsing file: ")
	assert.Equal(t, msgAssayHint, parsed["message"])

	resp, body = e.do(t, http.MethodPost, "/api/parse-assay-file/", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"No file uploaded"}`, string(body))
}

func TestUploadedFileMissing(t *testing.T) {
	s := &Server{uploadMaxBytes: 1 << 20}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no attachment"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/parse-assay-file/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, _, err := s.uploadedFile(req)
	assert.ErrorIs(t, err, assay.ErrNoFile)

	req = httptest.NewRequest(http.MethodPost, "/api/parse-assay-file/", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	_, _, err = s.uploadedFile(req)
	assert.ErrorIs(t, err, assay.ErrNoFile)
}
