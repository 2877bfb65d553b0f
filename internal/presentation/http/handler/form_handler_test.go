package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/lineform-api/internal/application/service"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type staticRates map[string]string

func (s staticRates) Lookup(_ context.Context, code string) (decimal.Decimal, error) {
	rate, ok := s[code]
	if !ok {
		return decimal.Zero, errors.New("no rate")
	}
	return decimal.NewFromString(rate)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		EntryID string `json:"entry_id"`
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

type formBody struct {
	ID         string `json:"id"`
	GrandTotal string `json:"grand_total"`
	Groups     []struct {
		ID      string `json:"group_id"`
		Total   string `json:"total"`
		Entries []struct {
			ID        string `json:"id"`
			TargetID  string `json:"target_id"`
			Status    string `json:"status"`
			LineTotal string `json:"line_total"`
		} `json:"entries"`
	} `json:"groups"`
	DegradedCurrencies []string `json:"degraded_currencies"`
}

type submitBody struct {
	Records []struct {
		EntryID   string  `json:"entry_id"`
		LineTotal float64 `json:"line_total"`
	} `json:"records"`
}

func setupFormRouter(t *testing.T, userID uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewFormService(staticRates{"USD": "30"}, service.FormServiceConfig{
		BaseCurrency:  "TRY",
		LookupTimeout: time.Second,
	})
	t.Cleanup(svc.Close)
	h := NewFormHandler(svc, 1<<20)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	r.POST("/forms", h.Create)
	r.GET("/forms/:id", h.GetByID)
	r.DELETE("/forms/:id", h.Discard)
	r.POST("/forms/:id/groups", h.AddGroup)
	r.PATCH("/forms/:id/entries/:entry_id", h.UpdateEntry)
	r.DELETE("/forms/:id/entries/:entry_id", h.RemoveEntry)
	r.POST("/forms/:id/groups/:group_id/propagate", h.ApplyToSiblings)
	r.POST("/forms/:id/import", h.Import)
	r.POST("/forms/:id/submit", h.Submit)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, env
}

func decodeForm(t *testing.T, env envelope) formBody {
	t.Helper()
	var form formBody
	if err := json.Unmarshal(env.Data, &form); err != nil {
		t.Fatalf("decode form: %v", err)
	}
	return form
}

func createForm(t *testing.T, r http.Handler) formBody {
	t.Helper()
	w, env := doJSON(t, r, http.MethodPost, "/forms", map[string]interface{}{
		"kind": "stock_entry",
		"subjects": []map[string]interface{}{
			{"group_id": "variant-1", "label": "Blue / L", "targets": []string{"store-1", "store-2"}},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	return decodeForm(t, env)
}

func TestFormHandlerCreateValidation(t *testing.T) {
	r := setupFormRouter(t, uuid.New())

	w, _ := doJSON(t, r, http.MethodPost, "/forms", map[string]interface{}{"kind": "invoice"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown kind status = %d, want 400", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/forms", map[string]interface{}{
		"kind":     "stock_entry",
		"subjects": []map[string]interface{}{{"label": "no id"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing group id status = %d, want 400", w.Code)
	}
}

func TestFormHandlerEditAndSubmit(t *testing.T) {
	r := setupFormRouter(t, uuid.New())
	form := createForm(t, r)
	first := form.Groups[0].Entries[0].ID
	second := form.Groups[0].Entries[1].ID

	w, env := doJSON(t, r, http.MethodPatch, "/forms/"+form.ID+"/entries/"+first, map[string]interface{}{
		"quantity":   "2",
		"unit_price": "10",
		"currency":   "USD",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d: %s", w.Code, w.Body.String())
	}
	form = decodeForm(t, env)
	if got := form.Groups[0].Entries[0]; got.Status != "filled" || got.LineTotal != "600.00" {
		t.Errorf("unexpected first entry: %+v", got)
	}

	doJSON(t, r, http.MethodPatch, "/forms/"+form.ID+"/entries/"+second, map[string]interface{}{"quantity": "abc"})

	w, env = doJSON(t, r, http.MethodPost, "/forms/"+form.ID+"/submit", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("submit status = %d, want 422", w.Code)
	}
	if len(env.Errors) == 0 || env.Errors[0].EntryID != second {
		t.Fatalf("unexpected errors: %+v", env.Errors)
	}

	w, _ = doJSON(t, r, http.MethodDelete, "/forms/"+form.ID+"/entries/"+second, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove status = %d", w.Code)
	}

	w, env = doJSON(t, r, http.MethodPost, "/forms/"+form.ID+"/submit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("submit status = %d: %s", w.Code, w.Body.String())
	}
	var result submitBody
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Records) != 1 || result.Records[0].EntryID != first || result.Records[0].LineTotal != 600 {
		t.Errorf("unexpected records: %+v", result.Records)
	}
}

func TestFormHandlerErrors(t *testing.T) {
	userID := uuid.New()
	r := setupFormRouter(t, userID)
	form := createForm(t, r)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"bad form id", http.MethodGet, "/forms/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown form", http.MethodGet, "/forms/" + uuid.NewString(), nil, http.StatusNotFound},
		{"unknown entry", http.MethodPatch, "/forms/" + form.ID + "/entries/" + uuid.NewString(), map[string]string{"quantity": "1"}, http.StatusNotFound},
		{"bad currency", http.MethodPatch, "/forms/" + form.ID + "/entries/" + form.Groups[0].Entries[0].ID, map[string]string{"currency": "ZZ"}, http.StatusBadRequest},
		{"unknown group", http.MethodPost, "/forms/" + form.ID + "/groups/missing/propagate", nil, http.StatusNotFound},
		{"duplicate group", http.MethodPost, "/forms/" + form.ID + "/groups", map[string]string{"group_id": "variant-1"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := doJSON(t, r, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestFormHandlerImport(t *testing.T) {
	r := setupFormRouter(t, uuid.New())
	form := createForm(t, r)

	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"group", "store", "qty", "price"},
		{"variant-1", "store-2", "3", "5"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		vals := row
		if err := f.SetSheetRow("Sheet1", cell, &vals); err != nil {
			t.Fatal(err)
		}
	}
	workbook, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "entries.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(workbook.Bytes()); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/forms/"+form.ID+"/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d: %s", w.Code, w.Body.String())
	}

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	imported := decodeForm(t, env).Groups[0].Entries[1]
	if imported.TargetID != "store-2" || imported.LineTotal != "15.00" {
		t.Errorf("unexpected imported entry: %+v", imported)
	}
}

func TestFormHandlerImportRejectsOtherFiles(t *testing.T) {
	r := setupFormRouter(t, uuid.New())
	form := createForm(t, r)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "entries.csv")
	part.Write([]byte("group,quantity\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/forms/"+form.ID+"/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
