// handlers_test.go
//
// Schema-driven form validation and submission service for jam-build
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jam-build-formsdb.
// jam-build-formsdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jam-build-formsdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jam-build-formsdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-formsdb/internal/form"
	"github.com/localnerve/jam-build-formsdb/internal/handlers"
	"github.com/localnerve/jam-build-formsdb/internal/middleware"
	"github.com/localnerve/jam-build-formsdb/internal/models"
	"github.com/localnerve/jam-build-formsdb/internal/services"
	"github.com/localnerve/jam-build-formsdb/internal/storage/filestore"
	"github.com/localnerve/jam-build-formsdb/internal/testsupport"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// fakeSessions knows a fixed set of cookies.
type fakeSessions map[string]*form.Identity

func (f fakeSessions) ValidateSession(cookie string, roles []string) (*form.Identity, error) {
	who, ok := f[cookie]
	if !ok {
		return nil, services.ErrInvalidSession
	}
	for _, r := range roles {
		if !who.HasRole(r) {
			return nil, errors.New("missing role " + r)
		}
	}
	return who, nil
}

var sessions = fakeSessions{
	"user-cookie":  {UserID: "u-1", Roles: []string{"user"}},
	"admin-cookie": {UserID: "a-1", Roles: []string{"user", "admin"}},
}

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	store *filestore.Store
}

func setupApp(t *testing.T) *testEnv {
	t.Helper()
	return setupAppWithConfig(t, fiber.Config{})
}

func setupAppWithConfig(t *testing.T, cfg fiber.Config) *testEnv {
	t.Helper()
	db := testsupport.NewSQLiteDB(t)
	store, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	pages := []*models.Page{
		{
			Slug: "contact", Title: "Contact", IsActive: true,
			Fields: []models.Field{
				{Name: "name", Label: "Name", Type: "text", Required: true, SortOrder: 0,
					Validation: datatypes.JSONMap{"max_length": 100}},
				{Name: "email", Label: "Email", Type: "email", Required: true, SortOrder: 1},
				{Name: "resume", Label: "Resume", Type: "file", Required: true, SortOrder: 2},
			},
		},
		{
			Slug: "newsletter", Title: "Newsletter", IsActive: true,
			Fields: []models.Field{
				{Name: "email", Type: "email", Required: true},
				{Name: "topics", Type: "checkboxes", SortOrder: 1, Options: []models.FieldOption{
					{Value: "go", Label: "Go"}, {Value: "sql", Label: "SQL", SortOrder: 1},
				}},
				{Name: "weekly", Type: "checkbox", SortOrder: 2},
				{Name: "age", Type: "number", SortOrder: 3},
			},
		},
		{
			Slug: "members", Title: "Members", IsActive: true, RequiresLogin: true,
			Fields: []models.Field{{Name: "note", Type: "textarea"}},
		},
		{Slug: "draft", Title: "Draft", IsActive: false},
	}
	for _, p := range pages {
		if err := services.SavePage(db, p); err != nil {
			t.Fatalf("Failed to save page %s: %v", p.Slug, err)
		}
	}

	cfg.ErrorHandler = handlers.ErrorHandler
	app := fiber.New(cfg)
	handlers.Register(app, db, store, sessions)
	app.Use(handlers.NotFound)
	return &testEnv{app: app, db: db, store: store}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var body map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("Failed to decode response %s: %v", raw, err)
		}
	}
	return resp, body
}

func multipartRequest(t *testing.T, target string, values map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range values {
		w.WriteField(k, v)
	}
	for field, name := range files {
		fw, err := w.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		fmt.Fprintf(fw, "content of %s", name)
	}
	w.Close()

	req := httptest.NewRequest("POST", target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func withCookie(req *http.Request, value string) *http.Request {
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: value})
	return req
}

func TestListPages(t *testing.T) {
	env := setupApp(t)

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/pages", nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var pages []handlers.PageSummary
	if err := json.NewDecoder(resp.Body).Decode(&pages); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	var slugs []string
	for _, p := range pages {
		slugs = append(slugs, p.Slug)
	}
	if !slices.Equal(slugs, []string{"contact", "members", "newsletter"}) {
		t.Errorf("Expected active pages by title, got %v", slugs)
	}
}

func TestGetPageSchema(t *testing.T) {
	env := setupApp(t)

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/pages/newsletter", nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var page handlers.PageSchema
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(page.Fields) != 4 || page.Fields[1].Name != "topics" {
		t.Fatalf("Unexpected fields %+v", page.Fields)
	}
	if opts := page.Fields[1].Options; len(opts) != 2 || opts[0].Value != "go" {
		t.Errorf("Unexpected options %+v", opts)
	}
}

func TestGetPageNotFound(t *testing.T) {
	env := setupApp(t)

	for _, slug := range []string{"missing", "draft"} {
		resp, body := env.do(t, httptest.NewRequest("GET", "/api/pages/"+slug, nil))
		if resp.StatusCode != 404 {
			t.Errorf("%s: expected 404, got %d", slug, resp.StatusCode)
		}
		if body["type"] != "form.page.notfound" || body["ok"] != false {
			t.Errorf("%s: unexpected envelope %v", slug, body)
		}
	}
}

func TestSubmitMultipart(t *testing.T) {
	env := setupApp(t)

	req := multipartRequest(t, "/api/pages/contact/submit",
		map[string]string{"name": "Ann", "email": "ann@example.com", "extra": "ignored"},
		map[string]string{"resume": "my cv.pdf"})
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	req.Header.Set("User-Agent", "form-test")

	resp, body := env.do(t, req)
	if resp.StatusCode != 201 {
		t.Fatalf("Expected 201, got %d: %v", resp.StatusCode, body)
	}
	if resp.Header.Get(middleware.RequestIDHeader) == "" {
		t.Error("Expected request id header")
	}

	id := uint64(body["id"].(float64))
	data := body["data"].(map[string]any)
	wantPath := fmt.Sprintf("submissions/%d/resume/my_cv.pdf", id)
	if data["resume"] != wantPath || data["name"] != "Ann" {
		t.Errorf("Unexpected data %v", data)
	}
	if _, ok := data["extra"]; ok {
		t.Error("Unexpected non-field key in data")
	}
	if !env.store.Exists(wantPath) {
		t.Errorf("Stored file %s missing", wantPath)
	}

	sub, err := services.GetSubmission(env.db, "contact", id)
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if sub.IPAddress != "198.51.100.7" {
		t.Errorf("Expected first forwarded address, got %s", sub.IPAddress)
	}
	if sub.Meta["user_agent"] != "form-test" || sub.Meta["request_id"] == "" {
		t.Errorf("Unexpected meta %v", sub.Meta)
	}
}

func TestSubmitValidationErrors(t *testing.T) {
	env := setupApp(t)

	req := multipartRequest(t, "/api/pages/contact/submit",
		map[string]string{"name": "Ann", "email": "bad"}, nil)
	resp, body := env.do(t, req)
	if resp.StatusCode != 400 {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}
	if body["type"] != "form.validation" {
		t.Errorf("Unexpected type %v", body["type"])
	}

	errs := body["errors"].(map[string]any)
	if len(errs) != 2 {
		t.Errorf("Expected exactly two field errors, got %v", errs)
	}
	if msgs := errs["email"].([]any); len(msgs) != 1 || msgs[0] != "enter a valid email address" {
		t.Errorf("Unexpected email errors %v", msgs)
	}
	if msgs := errs["resume"].([]any); len(msgs) != 1 || msgs[0] != "this file field is required" {
		t.Errorf("Unexpected resume errors %v", msgs)
	}

	var count int64
	env.db.Model(&models.Submission{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no submission stored, found %d", count)
	}
}

func TestSubmitURLEncoded(t *testing.T) {
	env := setupApp(t)

	vals := url.Values{}
	vals.Set("email", "ann@example.com")
	vals.Add("topics", "go")
	vals.Add("topics", "sql")
	vals.Set("weekly", "on")
	vals.Set("age", "12")
	req := httptest.NewRequest("POST", "/api/pages/newsletter/submit", strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)

	resp, body := env.do(t, req)
	if resp.StatusCode != 201 {
		t.Fatalf("Expected 201, got %d: %v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	if topics := data["topics"].([]any); len(topics) != 2 || topics[0] != "go" || topics[1] != "sql" {
		t.Errorf("Unexpected topics %v", data["topics"])
	}
	if data["weekly"] != true || data["age"] != float64(12) {
		t.Errorf("Unexpected typed values %v", data)
	}
}

func TestSubmitJSON(t *testing.T) {
	env := setupApp(t)

	body := `{"email":"ann@example.com","topics":["go","cobol"],"age":12.5}`
	req := httptest.NewRequest("POST", "/api/pages/newsletter/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, out := env.do(t, req)
	if resp.StatusCode != 400 {
		t.Fatalf("Expected 400, got %d: %v", resp.StatusCode, out)
	}
	errs := out["errors"].(map[string]any)
	if msgs := errs["topics"].([]any); msgs[0] != "invalid choice(s): cobol" {
		t.Errorf("Unexpected topics error %v", msgs)
	}

	body = `{"email":"ann@example.com","topics":"go","age":12.5,"weekly":false}`
	req = httptest.NewRequest("POST", "/api/pages/newsletter/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, out = env.do(t, req)
	if resp.StatusCode != 201 {
		t.Fatalf("Expected 201, got %d: %v", resp.StatusCode, out)
	}
	data := out["data"].(map[string]any)
	if data["age"] != 12.5 || data["weekly"] != false {
		t.Errorf("Unexpected data %v", data)
	}
}

func TestSubmitBadBodies(t *testing.T) {
	env := setupApp(t)

	req := httptest.NewRequest("POST", "/api/pages/newsletter/submit", strings.NewReader(`{"email":`))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, body := env.do(t, req)
	if resp.StatusCode != 400 || body["type"] != "form.request" {
		t.Errorf("Expected 400 form.request for broken JSON, got %d %v", resp.StatusCode, body)
	}

	req = httptest.NewRequest("POST", "/api/pages/newsletter/submit", strings.NewReader("<xml/>"))
	req.Header.Set("Content-Type", "application/xml")
	resp, _ = env.do(t, req)
	if resp.StatusCode != fiber.StatusUnsupportedMediaType {
		t.Errorf("Expected 415, got %d", resp.StatusCode)
	}
}

func TestSubmitBodyTooLarge(t *testing.T) {
	env := setupAppWithConfig(t, fiber.Config{BodyLimit: 4 * 1024})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("name", "Ann")
	w.WriteField("email", "ann@example.com")
	fw, err := w.CreateFormFile("resume", "big.pdf")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	fw.Write(bytes.Repeat([]byte("x"), 16*1024))
	w.Close()

	req := httptest.NewRequest("POST", "/api/pages/contact/submit", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, body := env.do(t, req)
	if resp.StatusCode != fiber.StatusRequestEntityTooLarge {
		t.Fatalf("Expected 413, got %d: %v", resp.StatusCode, body)
	}
	if body["type"] != "form.request.size" || body["ok"] != false {
		t.Errorf("Unexpected envelope %v", body)
	}

	var count int64
	env.db.Model(&models.Submission{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no submission stored, found %d", count)
	}
}

func TestSubmitUnknownPage(t *testing.T) {
	env := setupApp(t)

	resp, body := env.do(t, multipartRequest(t, "/api/pages/nope/submit", map[string]string{"a": "b"}, nil))
	if resp.StatusCode != 404 || body["type"] != "form.page.notfound" {
		t.Errorf("Expected 404 form.page.notfound, got %d %v", resp.StatusCode, body)
	}
}

func TestSubmitRequiresLogin(t *testing.T) {
	env := setupApp(t)

	newReq := func() *http.Request {
		return multipartRequest(t, "/api/pages/members/submit", map[string]string{"note": "hi"}, nil)
	}

	resp, body := env.do(t, newReq())
	if resp.StatusCode != 401 || body["type"] != "form.authentication" {
		t.Errorf("Expected 401 for anonymous, got %d %v", resp.StatusCode, body)
	}

	resp, _ = env.do(t, withCookie(newReq(), "stale-cookie"))
	if resp.StatusCode != 401 {
		t.Errorf("Expected 401 for invalid session, got %d", resp.StatusCode)
	}

	resp, body = env.do(t, withCookie(newReq(), "user-cookie"))
	if resp.StatusCode != 201 {
		t.Fatalf("Expected 201 for logged-in user, got %d %v", resp.StatusCode, body)
	}
	sub, err := services.GetSubmission(env.db, "members", uint64(body["id"].(float64)))
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if sub.UserID == nil || *sub.UserID != "u-1" {
		t.Errorf("Expected user id u-1, got %v", sub.UserID)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := setupApp(t)

	resp, body := env.do(t, httptest.NewRequest("GET", "/api/admin/pages/contact/submissions", nil))
	if resp.StatusCode != 403 || body["type"] != "form.authorization.admin" {
		t.Errorf("Expected 403 without cookie, got %d %v", resp.StatusCode, body)
	}

	resp, _ = env.do(t, withCookie(httptest.NewRequest("GET", "/api/admin/pages/contact/submissions", nil), "user-cookie"))
	if resp.StatusCode != 403 {
		t.Errorf("Expected 403 for non-admin, got %d", resp.StatusCode)
	}
}

func TestAdminSubmissions(t *testing.T) {
	env := setupApp(t)

	var ids []uint64
	for _, name := range []string{"Ann", "Bob"} {
		req := multipartRequest(t, "/api/pages/contact/submit",
			map[string]string{"name": name, "email": "x@example.com"},
			map[string]string{"resume": "cv.pdf"})
		resp, body := env.do(t, req)
		if resp.StatusCode != 201 {
			t.Fatalf("Submit failed: %d %v", resp.StatusCode, body)
		}
		ids = append(ids, uint64(body["id"].(float64)))
	}

	resp, err := env.app.Test(withCookie(httptest.NewRequest("GET", "/api/admin/pages/contact/submissions?limit=1", nil), "admin-cookie"))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var list []handlers.SubmissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(list) != 1 || list[0].ID != ids[1] || list[0].Data["name"] != "Bob" {
		t.Errorf("Expected most recent submission only, got %+v", list)
	}
	if len(list[0].Files) != 1 || list[0].Files[0].Field != "resume" || list[0].Files[0].OriginalName != "cv.pdf" {
		t.Errorf("Unexpected files %+v", list[0].Files)
	}

	target := fmt.Sprintf("/api/admin/pages/contact/submissions/%d", ids[0])
	resp, body := env.do(t, withCookie(httptest.NewRequest("GET", target, nil), "admin-cookie"))
	if resp.StatusCode != 200 || body["data"].(map[string]any)["name"] != "Ann" {
		t.Errorf("Unexpected submission %d %v", resp.StatusCode, body)
	}

	resp, body = env.do(t, withCookie(httptest.NewRequest("GET", "/api/admin/pages/contact/submissions/999", nil), "admin-cookie"))
	if resp.StatusCode != 404 || body["type"] != "form.submission.notfound" {
		t.Errorf("Expected 404 for unknown submission, got %d %v", resp.StatusCode, body)
	}

	resp, _ = env.do(t, withCookie(httptest.NewRequest("GET", "/api/admin/pages/contact/submissions/abc", nil), "admin-cookie"))
	if resp.StatusCode != 400 {
		t.Errorf("Expected 400 for bad id, got %d", resp.StatusCode)
	}
}

func TestAdminDeletePage(t *testing.T) {
	env := setupApp(t)

	req := multipartRequest(t, "/api/pages/contact/submit",
		map[string]string{"name": "Ann", "email": "ann@example.com"},
		map[string]string{"resume": "cv.pdf"})
	if resp, body := env.do(t, req); resp.StatusCode != 201 {
		t.Fatalf("Submit failed: %d %v", resp.StatusCode, body)
	}

	resp, _ := env.do(t, withCookie(httptest.NewRequest("DELETE", "/api/admin/pages/contact", nil), "admin-cookie"))
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}

	resp, _ = env.do(t, httptest.NewRequest("GET", "/api/pages/contact", nil))
	if resp.StatusCode != 404 {
		t.Errorf("Expected deleted page to be gone, got %d", resp.StatusCode)
	}

	var count int64
	env.db.Model(&models.Submission{}).Where("page_id IS NULL").Count(&count)
	if count != 1 {
		t.Errorf("Expected the orphaned submission to be kept, found %d", count)
	}
}

func TestUnknownRoute(t *testing.T) {
	env := setupApp(t)

	resp, body := env.do(t, httptest.NewRequest("GET", "/api/nothing-here", nil))
	if resp.StatusCode != 404 || body["ok"] != false {
		t.Errorf("Expected 404 envelope, got %d %v", resp.StatusCode, body)
	}
}
