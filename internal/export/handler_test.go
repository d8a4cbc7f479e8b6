package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage/sqlite"
)

type exportEnv struct {
	server              *httptest.Server
	alice, bob, outside string
	groupID             string
}

func setupExport(t *testing.T) *exportEnv {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "export.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	env := &exportEnv{}
	for _, u := range []struct {
		id   *string
		name string
	}{{&env.alice, "Alice"}, {&env.bob, "Bob"}, {&env.outside, "Eve"}} {
		user := models.NewUser(strings.ToLower(u.name)+"@example.com", u.name, "hash")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		*u.id = user.ID
	}

	group := &models.Group{Name: "Trip", CreatedBy: env.alice, Members: []string{env.alice, env.bob}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	env.groupID = group.ID

	food := &models.Category{Name: "Food", CreatedBy: env.alice}
	if err := store.CreateCategory(ctx, food); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	dinner := &models.Expense{
		GroupID: group.ID, Description: "Dinner", Amount: amt("60"), PaidBy: env.alice, CreatedBy: env.alice,
		CategoryID: food.ID,
		Splits:     []models.Split{{UserID: env.alice, Share: amt("30")}, {UserID: env.bob, Share: amt("30")}},
	}
	taxi := &models.Expense{
		GroupID: group.ID, Description: "Taxi", Amount: amt("20"), PaidBy: env.bob, CreatedBy: env.bob,
		Splits: []models.Split{{UserID: env.alice, Share: amt("10")}, {UserID: env.bob, Share: amt("10")}},
	}
	for _, e := range []*models.Expense{dinner, taxi} {
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}
	if err := store.CreateSettlement(ctx, &models.Settlement{
		GroupID: group.ID, ExpenseID: dinner.ID, FromUserID: env.bob, ToUserID: env.alice,
		Amount: amt("30"), Note: "cash", CreatedBy: env.bob,
	}); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(store, logger)
	// Stand-in for the token middleware: trust a header.
	withUser := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Test-User"); id != "" {
			r = r.WithContext(middleware.WithUserID(r.Context(), id))
		}
		handler.ServeHTTP(w, r)
	})
	env.server = httptest.NewServer(withUser)
	t.Cleanup(func() {
		env.server.Close()
		store.Close()
	})
	return env
}

func (e *exportEnv) get(t *testing.T, userID, path string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body failed: %v", err)
	}
	return resp, body
}

func readCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	return records
}

func TestHandler_GroupExpensesCSV(t *testing.T) {
	env := setupExport(t)

	resp, body := env.get(t, env.bob, "/export/groups/"+env.groupID+"/expenses")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type: got %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "group-expenses-"+env.groupID) || !strings.HasSuffix(cd, `.csv"`) {
		t.Errorf("content disposition: got %q", cd)
	}

	records := readCSV(t, body)
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	rows := map[string][]string{}
	for _, r := range records[1:] {
		rows[r[1]] = r
	}
	dinner := rows["Dinner"]
	if dinner == nil {
		t.Fatalf("missing Dinner row: %v", records)
	}
	if dinner[2] != "60.00" || dinner[3] != "Alice" || dinner[4] != "Food" {
		t.Errorf("unexpected Dinner row: %v", dinner)
	}
	if dinner[5] != "Alice: 30.00, Bob: 30.00" {
		t.Errorf("split column: got %q", dinner[5])
	}
	if taxi := rows["Taxi"]; taxi == nil || taxi[4] != Uncategorized {
		t.Errorf("unexpected Taxi row: %v", taxi)
	}
}

func TestHandler_GroupExpenseSummary(t *testing.T) {
	env := setupExport(t)

	resp, body := env.get(t, env.alice, "/export/groups/"+env.groupID+"/expenses?view=summary")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	records := readCSV(t, body)
	want := [][]string{
		{"Category", "Total Amount", "Number of Expenses", "Average Amount"},
		{"Food", "60.00", "1", "60.00"},
		{Uncategorized, "20.00", "1", "20.00"},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %v", len(want), records)
	}
	for i := range want {
		if strings.Join(records[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("record %d: expected %v, got %v", i, want[i], records[i])
		}
	}
}

func TestHandler_GroupSettlementsXLSX(t *testing.T) {
	env := setupExport(t)

	resp, body := env.get(t, env.alice, "/export/groups/"+env.groupID+"/settlements?format=xlsx")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != FormatXLSX.ContentType() {
		t.Errorf("content type: got %q", ct)
	}

	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Settlements")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and 1 row, got %v", rows)
	}
	row := rows[1]
	if row[1] != "Bob" || row[2] != "Alice" || row[4] != "Dinner" || row[5] != "cash" {
		t.Errorf("unexpected settlement row: %v", row)
	}
}

func TestHandler_UserExpenses(t *testing.T) {
	env := setupExport(t)

	resp, body := env.get(t, env.bob, "/export/me/expenses")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	records := readCSV(t, body)
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %v", records)
	}
	for _, r := range records[1:] {
		if r[4] != "Trip" {
			t.Errorf("group column: got %q", r[4])
		}
		want := "Owed"
		if r[1] == "Taxi" {
			want = "Paid"
		}
		if r[7] != want {
			t.Errorf("%s status: expected %s, got %s", r[1], want, r[7])
		}
	}

	resp, body = env.get(t, env.outside, "/export/me/expenses")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if records := readCSV(t, body); len(records) != 1 {
		t.Errorf("expected only the header for a user without groups, got %v", records)
	}
}

func TestHandler_Errors(t *testing.T) {
	env := setupExport(t)

	tests := []struct {
		name   string
		user   string
		path   string
		status int
	}{
		{"outsider", env.outside, "/export/groups/" + env.groupID + "/expenses", http.StatusForbidden},
		{"unknown group", env.alice, "/export/groups/missing/settlements", http.StatusNotFound},
		{"bad format", env.alice, "/export/groups/" + env.groupID + "/expenses?format=pdf", http.StatusBadRequest},
		{"no identity", "", "/export/groups/" + env.groupID + "/expenses", http.StatusUnauthorized},
		{"unknown route", env.alice, "/export/groups/" + env.groupID + "/members", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.get(t, tt.user, tt.path)
			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, resp.StatusCode, body)
			}
		})
	}
}
