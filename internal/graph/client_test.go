package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ignite/lead-ledger/internal/lead"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	c := NewClient("test-token")
	c.SetBaseURL(server.URL)
	c.SetHTTPClient(server.Client())
	return c, server
}

func TestItemRefPath(t *testing.T) {
	byID := ItemRef{ItemID: "ITEM123"}
	if got := byID.path(); got != "/me/drive/items/ITEM123" {
		t.Errorf("path() = %q", got)
	}

	byShare := ItemRef{ShareURL: "https://contoso.sharepoint.com/x/doc.xlsx"}
	got := byShare.path()
	if !strings.HasPrefix(got, "/shares/u!") || !strings.HasSuffix(got, "/driveItem") {
		t.Errorf("share path = %q", got)
	}
	if strings.ContainsAny(got[len("/shares/"):len(got)-len("/driveItem")], "+/=") {
		t.Errorf("share id not base64url-safe: %q", got)
	}
}

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		idx  int
		want string
	}{
		{0, "A"}, {1, "B"}, {25, "Z"}, {26, "AA"}, {27, "AB"}, {51, "AZ"}, {52, "BA"}, {701, "ZZ"}, {702, "AAA"},
	}
	for _, tt := range tests {
		if got := ColumnLetter(tt.idx); got != tt.want {
			t.Errorf("ColumnLetter(%d) = %q, want %q", tt.idx, got, tt.want)
		}
	}
}

func TestWorksheetsSendsBearer(t *testing.T) {
	var gotAuth, gotPath string
	c, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": []map[string]string{{"id": "ws1", "name": "Active Leads 202592"}},
		})
	}))
	defer server.Close()

	sheets, err := c.Worksheets(context.Background(), ItemRef{ItemID: "ITEM"})
	if err != nil {
		t.Fatalf("Worksheets: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/me/drive/items/ITEM/workbook/worksheets" {
		t.Errorf("path = %q", gotPath)
	}
	if len(sheets) != 1 || sheets[0].Name != "Active Leads 202592" {
		t.Errorf("sheets = %+v", sheets)
	}
}

func TestTableHeaders(t *testing.T) {
	c, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"values": [][]interface{}{{"LEAD", "Email", "Paid Date"}},
		})
	}))
	defer server.Close()

	headers, err := c.TableHeaders(context.Background(), ItemRef{ItemID: "I"}, "tbl1")
	if err != nil {
		t.Fatalf("TableHeaders: %v", err)
	}
	want := []string{"LEAD", "Email", "Paid Date"}
	if len(headers) != 3 {
		t.Fatalf("headers = %v", headers)
	}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("header %d = %q, want %q", i, headers[i], want[i])
		}
	}
}

func TestAppendRowsBatches(t *testing.T) {
	var calls int
	var batchSizes []int
	c, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		batchSizes = append(batchSizes, len(body.Values))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	rows := make([][]string, 250)
	for i := range rows {
		rows[i] = []string{"x"}
	}
	sent, err := c.AppendRows(context.Background(), ItemRef{ItemID: "I"}, "tbl1", rows)
	if err != nil {
		t.Fatalf("AppendRows: %v", err)
	}
	if sent != 250 {
		t.Errorf("sent = %d, want 250", sent)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	want := []int{100, 100, 50}
	for i := range want {
		if batchSizes[i] != want[i] {
			t.Errorf("batch %d size = %d, want %d", i, batchSizes[i], want[i])
		}
	}
}

func TestAppendRowsPartialFailure(t *testing.T) {
	var calls int
	c, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	rows := make([][]string, 150)
	for i := range rows {
		rows[i] = []string{"x"}
	}
	sent, err := c.AppendRows(context.Background(), ItemRef{ItemID: "I"}, "tbl1", rows)
	if err == nil {
		t.Fatal("expected an error from the failed batch")
	}
	if sent != 100 {
		t.Errorf("sent = %d, want 100 (only the first batch landed)", sent)
	}
}

func TestEnsureTableCreatesWhenMissing(t *testing.T) {
	var createdRange string
	c, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/tables") && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{"value": []Table{}})
		case strings.HasSuffix(r.URL.Path, "/tables/add"):
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			createdRange, _ = body["address"].(string)
			json.NewEncoder(w).Encode(Table{ID: "tbl-new", Name: "Table1"})
		case strings.HasSuffix(r.URL.Path, "/headerRowRange"):
			json.NewEncoder(w).Encode(map[string]interface{}{
				"values": [][]interface{}{{"LEAD", "Email"}},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	table, headers, err := c.EnsureTable(context.Background(), ItemRef{ItemID: "I"}, "Sheet1", []string{"LEAD", "Email"})
	if err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if table.ID != "tbl-new" {
		t.Errorf("table = %+v", table)
	}
	if createdRange != "Sheet1!A1:B1" {
		t.Errorf("created range = %q", createdRange)
	}
	if len(headers) != 2 || headers[0] != "LEAD" {
		t.Errorf("headers = %v", headers)
	}
}

func TestEnsureTableHeaderFetchFailure(t *testing.T) {
	c, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/tables") && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{"value": []Table{}})
		case strings.HasSuffix(r.URL.Path, "/tables/add"):
			json.NewEncoder(w).Encode(Table{ID: "tbl-new", Name: "Table1"})
		case strings.HasSuffix(r.URL.Path, "/headerRowRange"):
			w.WriteHeader(http.StatusConflict)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	_, _, err := c.EnsureTable(context.Background(), ItemRef{ItemID: "I"}, "Sheet1", []string{"LEAD", "Email"})
	if err == nil {
		t.Fatal("expected an error when the created table's headers cannot be read")
	}
	if !strings.Contains(err.Error(), "tbl-new") {
		t.Errorf("error should identify the table: %v", err)
	}
}

func TestUploaderAppend(t *testing.T) {
	var appended [][]interface{}
	c, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/tables") && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"value": []Table{{ID: "tbl1", Name: "Table1"}},
			})
		case strings.HasSuffix(r.URL.Path, "/headerRowRange"):
			json.NewEncoder(w).Encode(map[string]interface{}{
				"values": [][]interface{}{{"Email", "LEAD"}},
			})
		case strings.HasSuffix(r.URL.Path, "/rows/add"):
			var body struct {
				Values [][]interface{} `json:"values"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			appended = append(appended, body.Values...)
			w.WriteHeader(http.StatusCreated)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	up := NewUploader(c, ItemRef{ItemID: "I"}, "Active Leads 202592")
	sent, err := up.Append(context.Background(), []*lead.Lead{
		{ID: "1", Email: "a@x.com"},
		{ID: "2", Email: "b@x.com"},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}
	if len(appended) != 2 {
		t.Fatalf("appended = %v", appended)
	}
	// remote header order (Email first) is honored
	if appended[0][0] != "a@x.com" || appended[0][1] != "1" {
		t.Errorf("row 0 = %v", appended[0])
	}
}

func TestRowsForHeaders(t *testing.T) {
	leads := []*lead.Lead{
		{ID: "1", Email: "a@x.com", Extra: map[string]string{"Turno": "m"}},
	}
	rows := RowsForHeaders([]string{"email", "LEAD", "Turno", "Unknown"}, leads)
	if len(rows) != 1 {
		t.Fatalf("rows = %v", rows)
	}
	want := []string{"a@x.com", "1", "m", ""}
	for i := range want {
		if rows[0][i] != want[i] {
			t.Errorf("cell %d = %q, want %q", i, rows[0][i], want[i])
		}
	}
}
