/*
 * Copyright 2025 sookrat.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sookrat/studyapi/internal/api"
	"github.com/sookrat/studyapi/internal/config"
	"github.com/sookrat/studyapi/internal/database"
	_ "github.com/sookrat/studyapi/internal/models"
)

var apiDBCounter atomic.Int64

// newTestAPI spins up the whole application against two private in-memory
// sqlite backends and a fake text-generation endpoint.
func newTestAPI(t *testing.T) *echo.Echo {
	t.Helper()

	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Stream bool `json:"stream"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = w.Write([]byte(`data: {"type":"content-delta","delta":{"message":{"content":{"text":"streamed "}}}}` + "\n\n"))
			_, _ = w.Write([]byte(`data: {"type":"content-delta","delta":{"message":{"content":{"text":"answer"}}}}` + "\n\n"))
			return
		}
		_, _ = w.Write([]byte(`{"message":{"content":[{"type":"text","text":"a generated answer"}]}}`))
	}))
	t.Cleanup(llmServer.Close)

	n := apiDBCounter.Add(1)
	local := database.DefaultConnectionConfig()
	local.URL = fmt.Sprintf("sqlite://file:apilocal%d?mode=memory&cache=shared", n)
	supabase := database.DefaultConnectionConfig()
	supabase.URL = fmt.Sprintf("sqlite://file:apisupa%d?mode=memory&cache=shared", n)

	registry, err := database.NewRegistry(local, supabase, database.BackendLocal, nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if err := registry.Open(context.Background(), true); err != nil {
		t.Fatalf("open registry: %v", err)
	}
	t.Cleanup(func() {
		_ = registry.Close()
	})

	cfg := config.Default()
	cfg.Auth.SecretKey = "test-secret"
	cfg.Auth.TokenTTL = time.Minute
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.BaseURL = llmServer.URL

	return api.NewServer(cfg, zerolog.Nop(), registry).Echo()
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doAuthJSON(e *echo.Echo, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin creates a user through the API and returns a bearer
// token for it.
func registerAndLogin(t *testing.T, e *echo.Echo, username string) string {
	t.Helper()

	body := fmt.Sprintf(`{"username":%q,"email":"%s@example.com","password":"longpassword1","is_active":true}`, username, username)
	if rec := doJSON(e, http.MethodPost, "/register", body); rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
	}

	form := url.Values{"username": {username}, "password": {"longpassword1"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &token); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if token.TokenType != "bearer" || token.AccessToken == "" {
		t.Fatalf("unexpected token payload: %+v", token)
	}
	return token.AccessToken
}

func TestRegisterConflictAndPasswordNeverExposed(t *testing.T) {
	e := newTestAPI(t)

	body := `{"username":"alice","email":"a@x.com","password":"longpassword1","is_active":true}`
	rec := doJSON(e, http.MethodPost, "/register", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	payload := rec.Body.String()
	if !strings.Contains(payload, `"username":"alice"`) {
		t.Fatalf("response missing username: %s", payload)
	}
	if strings.Contains(payload, "password") || strings.Contains(payload, "longpassword1") {
		t.Fatalf("response leaks password material: %s", payload)
	}

	if rec := doJSON(e, http.MethodPost, "/register", body); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 conflict on duplicate, got %d", rec.Code)
	}
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	e := newTestAPI(t)
	registerAndLogin(t, e, "alice")

	form := url.Values{"username": {"alice"}, "password": {"wrongpassword"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Incorrect username or password") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestStudentsRequireAuth(t *testing.T) {
	e := newTestAPI(t)

	if rec := doJSON(e, http.MethodGet, "/students", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token := registerAndLogin(t, e, "alice")
	if rec := doAuthJSON(e, http.MethodGet, "/students", "", token); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}

	if rec := doAuthJSON(e, http.MethodGet, "/students", "", "bogus-token"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestStudentListSkipLimit(t *testing.T) {
	e := newTestAPI(t)
	token := registerAndLogin(t, e, "alice")

	for i := 0; i < 3; i++ {
		body := fmt.Sprintf(`{"name":"student-%d","age":20,"grade":"A"}`, i)
		if rec := doAuthJSON(e, http.MethodPost, "/students", body, token); rec.Code != http.StatusCreated {
			t.Fatalf("create student: status %d body %s", rec.Code, rec.Body.String())
		}
	}

	rec := doAuthJSON(e, http.MethodGet, "/students?skip=0&limit=2", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	var students []struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &students); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(students))
	}
	if students[0].ID >= students[1].ID {
		t.Fatalf("expected ascending ids, got %d then %d", students[0].ID, students[1].ID)
	}
}

func TestItemFetchMissingReturns404(t *testing.T) {
	e := newTestAPI(t)

	rec := doJSON(e, http.MethodGet, "/items/9999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not found") {
		t.Fatalf("missing not-found detail: %s", rec.Body.String())
	}
}

func TestItemLifecycleWithoutAuth(t *testing.T) {
	e := newTestAPI(t)
	token := registerAndLogin(t, e, "alice")

	rec := doAuthJSON(e, http.MethodPost, "/students", `{"name":"owner","age":21,"grade":"B"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create student: %d", rec.Code)
	}
	var student struct {
		ID int64 `json:"id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &student)

	body := fmt.Sprintf(`{"name":"notebook","description":"ruled","price":9.5,"student_id":%d}`, student.ID)
	rec = doJSON(e, http.MethodPost, "/items", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create item without auth: status %d body %s", rec.Code, rec.Body.String())
	}
	var item struct {
		ID       int64 `json:"id"`
		Quantity int   `json:"quantity"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &item)
	if item.Quantity != 0 {
		t.Fatalf("expected default quantity 0, got %d", item.Quantity)
	}

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/items/%d", item.ID), `{"quantity":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update item: status %d body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"quantity":3`) {
		t.Fatalf("quantity not updated: %s", rec.Body.String())
	}

	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/items/%d", item.ID), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete item: status %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodGet, fmt.Sprintf("/items/%d", item.ID), ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestUpdateWithNoFieldsRejected(t *testing.T) {
	e := newTestAPI(t)
	token := registerAndLogin(t, e, "alice")

	rec := doAuthJSON(e, http.MethodPost, "/students", `{"name":"fixed","age":20,"grade":"A"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create student: %d", rec.Code)
	}
	var student struct {
		ID int64 `json:"id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &student)

	rec = doAuthJSON(e, http.MethodPut, fmt.Sprintf("/students/%d", student.ID), `{}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %d", rec.Code)
	}

	rec = doAuthJSON(e, http.MethodGet, fmt.Sprintf("/students/%d", student.ID), "", token)
	if !strings.Contains(rec.Body.String(), `"name":"fixed"`) {
		t.Fatalf("stored state altered: %s", rec.Body.String())
	}
}

func TestUnknownBackendParamRejected(t *testing.T) {
	e := newTestAPI(t)

	rec := doJSON(e, http.MethodGet, "/items?db=remote", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown backend, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "remote") {
		t.Fatalf("error does not name the bad label: %s", rec.Body.String())
	}
}

func TestBackendsAreIsolated(t *testing.T) {
	e := newTestAPI(t)

	body := `{"username":"alice","email":"a@x.com","password":"longpassword1"}`
	if rec := doJSON(e, http.MethodPost, "/register?db=local", body); rec.Code != http.StatusCreated {
		t.Fatalf("register on local: %d", rec.Code)
	}
	// The same username is free on the other backend.
	if rec := doJSON(e, http.MethodPost, "/register?db=supabase", body); rec.Code != http.StatusCreated {
		t.Fatalf("register on supabase: %d", rec.Code)
	}
}

func TestAskPersistsExchange(t *testing.T) {
	e := newTestAPI(t)
	token := registerAndLogin(t, e, "alice")

	rec := doAuthJSON(e, http.MethodPost, "/qanda/ask", `{"question":"why is the sky blue?","save_to_db":true}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("ask: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Answer  string `json:"answer"`
		Saved   bool   `json:"saved"`
		SavedID *int64 `json:"saved_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode ask response: %v", err)
	}
	if resp.Answer != "a generated answer" {
		t.Fatalf("unexpected answer %q", resp.Answer)
	}
	if !resp.Saved || resp.SavedID == nil {
		t.Fatalf("exchange not saved: %+v", resp)
	}

	rec = doAuthJSON(e, http.MethodGet, fmt.Sprintf("/qanda/%d", *resp.SavedID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch saved exchange: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "why is the sky blue?") {
		t.Fatalf("saved record missing question: %s", rec.Body.String())
	}
}

func TestAskSavesByDefault(t *testing.T) {
	e := newTestAPI(t)
	token := registerAndLogin(t, e, "alice")

	rec := doAuthJSON(e, http.MethodPost, "/qanda/ask", `{"question":"what is go"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("ask: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Saved   bool   `json:"saved"`
		SavedID *int64 `json:"saved_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode ask response: %v", err)
	}
	if !resp.Saved || resp.SavedID == nil {
		t.Fatalf("omitting save_to_db must persist the exchange: %s", rec.Body.String())
	}

	rec = doAuthJSON(e, http.MethodGet, fmt.Sprintf("/qanda/%d", *resp.SavedID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch auto-saved exchange: %d", rec.Code)
	}
}

func TestAskSaveOptOut(t *testing.T) {
	e := newTestAPI(t)
	token := registerAndLogin(t, e, "alice")

	rec := doAuthJSON(e, http.MethodPost, "/qanda/ask", `{"question":"what is go","save_to_db":false}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("ask: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Saved   bool   `json:"saved"`
		SavedID *int64 `json:"saved_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode ask response: %v", err)
	}
	if resp.Saved || resp.SavedID != nil {
		t.Fatalf("save_to_db false must not persist: %s", rec.Body.String())
	}

	rec = doAuthJSON(e, http.MethodGet, "/qanda/me", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list own exchanges: %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty list after opt-out, got %s", body)
	}
}

func TestAskValidationBounds(t *testing.T) {
	e := newTestAPI(t)
	token := registerAndLogin(t, e, "alice")

	cases := []string{
		`{"question":"hi"}`,
		`{"question":"what is go","temperature":2.5}`,
		`{"question":"what is go","max_tokens":10}`,
		`{"question":"what is go","max_tokens":5000}`,
	}
	for _, body := range cases {
		if rec := doAuthJSON(e, http.MethodPost, "/qanda/ask", body, token); rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, rec.Code)
		}
	}

	valid := `{"question":"what is go","temperature":1.5,"max_tokens":4096}`
	if rec := doAuthJSON(e, http.MethodPost, "/qanda/ask", valid, token); rec.Code != http.StatusOK {
		t.Errorf("in-range parameters rejected: %d %s", rec.Code, rec.Body.String())
	}
}

func TestQandaMineFiltersByUser(t *testing.T) {
	e := newTestAPI(t)
	aliceToken := registerAndLogin(t, e, "alice")
	bobToken := registerAndLogin(t, e, "bob")

	rec := doAuthJSON(e, http.MethodPost, "/qanda/ask", `{"question":"a question from alice"}`, aliceToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("alice ask: %d", rec.Code)
	}
	rec = doAuthJSON(e, http.MethodPost, "/qanda/ask", `{"question":"a question from bob"}`, bobToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("bob ask: %d", rec.Code)
	}

	rec = doAuthJSON(e, http.MethodGet, "/qanda/me", "", aliceToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("alice list: %d", rec.Code)
	}
	var mine []struct {
		Question string `json:"question"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &mine); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(mine) != 1 || mine[0].Question != "a question from alice" {
		t.Fatalf("expected only alice's exchange, got %s", rec.Body.String())
	}
}

func TestStudentItemsSubresource(t *testing.T) {
	e := newTestAPI(t)
	token := registerAndLogin(t, e, "alice")

	rec := doAuthJSON(e, http.MethodPost, "/students", `{"name":"owner","age":21,"grade":"B"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create student: %d", rec.Code)
	}
	var student struct {
		ID int64 `json:"id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &student)

	for i := 0; i < 2; i++ {
		body := fmt.Sprintf(`{"name":"item-%d","description":"d","price":1.5,"student_id":%d}`, i, student.ID)
		if rec := doJSON(e, http.MethodPost, "/items", body); rec.Code != http.StatusCreated {
			t.Fatalf("create item: %d", rec.Code)
		}
	}

	rec = doAuthJSON(e, http.MethodGet, fmt.Sprintf("/students/%d/items", student.ID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list student items: status %d body %s", rec.Code, rec.Body.String())
	}
	var items []struct {
		StudentID int64 `json:"student_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for _, item := range items {
		if item.StudentID != student.ID {
			t.Fatalf("item owned by wrong student: %+v", item)
		}
	}

	if rec := doAuthJSON(e, http.MethodGet, "/students/9999/items", "", token); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing student, got %d", rec.Code)
	}
}

func TestAskStreamConcatenatesChunks(t *testing.T) {
	e := newTestAPI(t)
	token := registerAndLogin(t, e, "alice")

	rec := doAuthJSON(e, http.MethodPost, "/qanda/ask-stream", `{"question":"stream me"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("ask-stream: status %d", rec.Code)
	}
	if rec.Body.String() != "streamed answer" {
		t.Fatalf("unexpected stream body %q", rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestAPI(t)

	rec := doJSON(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status   string                     `json:"status"`
		Backends map[string]json.RawMessage `json:"backends"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if resp.Status != "ok" || len(resp.Backends) != 2 {
		t.Fatalf("unexpected health payload: %s", rec.Body.String())
	}
}
