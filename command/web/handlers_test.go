package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ci-dashboard/connectors/config"
	ccsv "ci-dashboard/connectors/csv"
	"ci-dashboard/domain/action"
	"ci-dashboard/domain/pareto"
)

var testToday = time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)

func newTestServer() (*echo.Echo, *Store) {
	store := NewStore(config.Default(), ccsv.SampleOAE(), ccsv.SampleLosses())
	store.now = func() time.Time { return testToday }
	e := echo.New()
	registerRoutes(e, store)
	return e, store
}

func doJSON(t *testing.T, e *echo.Echo, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestWeeklyPareto(t *testing.T) {
	e, _ := newTestServer()
	var resp struct {
		Week  string       `json:"week"`
		Group string       `json:"group"`
		Rows  []pareto.Row `json:"rows"`
	}
	rec := doJSON(t, e, http.MethodGet, "/api/pareto/weekly", nil, &resp)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "W31-2025", resp.Week)
	assert.Equal(t, "department", resp.Group)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, pareto.Row{Category: "Maintenance", Minutes: 270, Pct: 69.23, CumPct: 69.23}, resp.Rows[0])
	assert.Equal(t, pareto.Row{Category: "Process Engg", Minutes: 120, Pct: 30.77, CumPct: 100.00}, resp.Rows[1])
}

func TestWeeklyParetoSixM(t *testing.T) {
	e, _ := newTestServer()
	var resp struct {
		Rows []pareto.Row `json:"rows"`
	}
	doJSON(t, e, http.MethodGet, "/api/pareto/weekly?group=6m", nil, &resp)
	require.Len(t, resp.Rows, 2)
	// Chiller breakdown + Pump failure tag as Machine, Wrong setup as Method.
	assert.Equal(t, "Machine", resp.Rows[0].Category)
	assert.Equal(t, 270.0, resp.Rows[0].Minutes)
	assert.Equal(t, "Method", resp.Rows[1].Category)
}

func TestWeeklyDrilldown(t *testing.T) {
	e, _ := newTestServer()
	var resp struct {
		Week       string `json:"week"`
		Categories []struct {
			Category    string       `json:"category"`
			Rows        []pareto.Row `json:"rows"`
			TopReason   string       `json:"top_reason"`
			Suggestions []string     `json:"suggestions"`
		} `json:"categories"`
	}
	doJSON(t, e, http.MethodGet, "/api/pareto/weekly/drilldown", nil, &resp)
	// Maintenance holds 69.23% cumulative, Process Engg pushes past the 80%
	// cutoff, so only Maintenance gets a drill-down.
	require.Len(t, resp.Categories, 1)
	cat := resp.Categories[0]
	assert.Equal(t, "Maintenance", cat.Category)
	require.Len(t, cat.Rows, 2)
	assert.Equal(t, "Chiller breakdown", cat.Rows[0].Category)
	assert.Equal(t, 180.0, cat.Rows[0].Minutes)
	assert.Equal(t, "Chiller breakdown", cat.TopReason)
	require.NotEmpty(t, cat.Suggestions)
	assert.Contains(t, cat.Suggestions[0], "schedule PM")
}

func TestMonthlyRollup(t *testing.T) {
	e, _ := newTestServer()
	var resp struct {
		Weeks   []string     `json:"weeks"`
		Rows    []pareto.Row `json:"rows"`
		Summary struct {
			TopDepartment string  `json:"top_department"`
			LossMinutes   float64 `json:"loss_minutes"`
		} `json:"summary"`
	}
	doJSON(t, e, http.MethodGet, "/api/pareto/monthly", nil, &resp)
	assert.Equal(t, []string{"W28-2025", "W29-2025", "W30-2025", "W31-2025"}, resp.Weeks)
	require.NotEmpty(t, resp.Rows)
	assert.Equal(t, "Maintenance", resp.Summary.TopDepartment)
	assert.Equal(t, 600.0, resp.Summary.LossMinutes)
}

func TestDailyPareto(t *testing.T) {
	e, _ := newTestServer()
	var resp struct {
		Rows []pareto.Row `json:"rows"`
	}
	doJSON(t, e, http.MethodGet, "/api/pareto/daily", nil, &resp)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "Maintenance", resp.Rows[0].Category)
	assert.Equal(t, 270.0, resp.Rows[0].Minutes)
}

func TestOAETrend(t *testing.T) {
	e, _ := newTestServer()
	var rows []map[string]any
	doJSON(t, e, http.MethodGet, "/api/oae", nil, &rows)
	assert.Len(t, rows, 12)
}

func TestAddLossDerivesWeek(t *testing.T) {
	e, store := newTestServer()
	payload := map[string]any{
		"date": "2025-08-05", "department": "Quality",
		"reason": "Sensor calibration drift", "loss_minutes": 45,
	}
	rec := doJSON(t, e, http.MethodPost, "/api/losses", payload, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	losses := store.Losses()
	added := losses[len(losses)-1]
	assert.Equal(t, "W31-2025", added.Week)
	assert.Equal(t, "Quality", added.Department)
	assert.Equal(t, 45.0, added.Minutes)
}

func TestActionsSeededFromLatestWeek(t *testing.T) {
	e, _ := newTestServer()
	var items []action.Item
	doJSON(t, e, http.MethodGet, "/api/actions", nil, &items)
	require.Len(t, items, 3)
	assert.Equal(t, "Chiller breakdown", items[0].Reason)
	assert.Equal(t, action.StatusNotStarted, items[0].Status)
	assert.Equal(t, "2025-09-05", items[0].Target)
}

func TestActionLifecycle(t *testing.T) {
	e, _ := newTestServer()

	var created action.Item
	payload := map[string]any{
		"department": "Maintenance", "reason": "Chiller breakdown",
		"owner": "Rajesh", "target": "2025-08-26",
	}
	rec := doJSON(t, e, http.MethodPost, "/api/actions", payload, &created)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, action.TypeTemporary, created.Type)

	rec = doJSON(t, e, http.MethodPost, "/api/actions/"+created.ID+"/status",
		map[string]string{"status": action.StatusCompleted}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var items []action.Item
	doJSON(t, e, http.MethodGet, "/api/actions", nil, &items)
	updated, found := func() (action.Item, bool) {
		for _, it := range items {
			if it.ID == created.ID {
				return it, true
			}
		}
		return action.Item{}, false
	}()
	require.True(t, found)
	assert.Equal(t, action.StatusCompleted, updated.Status)

	rec = doJSON(t, e, http.MethodPost, "/api/actions/nope/status",
		map[string]string{"status": action.StatusCompleted}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlerts(t *testing.T) {
	e, store := newTestServer()

	// Seeded actions are due in a week: nothing to report.
	var alerts []action.Alert
	doJSON(t, e, http.MethodGet, "/api/alerts", nil, &alerts)
	assert.Empty(t, alerts)

	store.AddAction(action.Item{
		Department: "Maintenance", Reason: "Chiller breakdown",
		Target: testToday.AddDate(0, 0, -3).Format("2006-01-02"),
	})
	doJSON(t, e, http.MethodGet, "/api/alerts", nil, &alerts)
	require.Len(t, alerts, 1)
	assert.Equal(t, action.KindOverdue, alerts[0].Kind)
	assert.True(t, alerts[0].Escalate)
}

func TestExportActionsCSV(t *testing.T) {
	e, _ := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/actions/export", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Equal(t, "Department,Reason,Owner,Target,Type,Status", lines[0])
	assert.Len(t, lines, 4) // header + three seeded actions
}

func TestImportActionsRoundTrip(t *testing.T) {
	e, store := newTestServer()

	var buf bytes.Buffer
	require.NoError(t, ccsv.WriteActions(&buf, []action.Item{
		{Department: "Quality", Reason: "Rework spike", Owner: "Asha",
			Target: "2025-09-10", Type: action.TypePermanent, Status: action.StatusInProgress},
	}))

	body, contentType := multipartFile(t, "file", "actions.csv", buf.Bytes())
	req := httptest.NewRequest(http.MethodPost, "/api/actions/import", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	items := store.Actions()
	require.Len(t, items, 1)
	assert.Equal(t, "Rework spike", items[0].Reason)
	assert.Equal(t, "2025-09-10", items[0].Target)
}

func TestUploadRecognizedTables(t *testing.T) {
	e, store := newTestServer()

	lossCSV := "Department,Reason,Loss Minutes,Date\nQuality,Rework spike,300,2025-08-11\n"
	body, contentType := multipartFile(t, "losses", "losses.csv", []byte(lossCSV))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	losses := store.Losses()
	require.Len(t, losses, 1)
	assert.Equal(t, "Quality", losses[0].Department)
	assert.Equal(t, "W32-2025", losses[0].Week)
	// The trend table was not part of the upload and survives untouched.
	assert.Len(t, store.OAE(), 12)
}

func TestUploadUnrecognizedFallsBackToSample(t *testing.T) {
	e, store := newTestServer()
	store.ReplaceData(nil, nil)

	body, contentType := multipartFile(t, "whatever", "junk.csv", []byte("x,y\n1,2\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["fallback"])
	assert.Len(t, store.Losses(), 6)
	assert.Len(t, store.OAE(), 12)
}

func TestFiveWhys(t *testing.T) {
	e, _ := newTestServer()
	payload := action.FiveWhy{
		Category: "Maintenance",
		Reason:   "Chiller breakdown",
		Whys:     [5]string{"Tripped", "Clogged condenser", "No PM", "No schedule", "No owner"},
		Owner:    "Rajesh",
		Target:   "2025-09-05",
	}
	rec := doJSON(t, e, http.MethodPost, "/api/fivewhys", payload, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var got []action.FiveWhy
	doJSON(t, e, http.MethodGet, "/api/fivewhys", nil, &got)
	require.Len(t, got, 1)
	assert.Equal(t, payload, got[0])
}

func TestSuggestionsEndpoint(t *testing.T) {
	e, _ := newTestServer()
	var resp struct {
		Category    string   `json:"category"`
		Suggestions []string `json:"suggestions"`
	}
	doJSON(t, e, http.MethodGet, "/api/suggestions?reason=Chiller+breakdown", nil, &resp)
	assert.Equal(t, "Machine", resp.Category)
	require.Len(t, resp.Suggestions, 2)
}

func multipartFile(t *testing.T, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}
