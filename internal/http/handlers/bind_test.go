package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/tasktracker/internal/domain/task"
	"github.com/geocoder89/tasktracker/internal/domain/user"
	"github.com/geocoder89/tasktracker/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Detail string `json:"detail"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			JSON   string                `json:"json"`
			Field  string                `json:"field"`
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func bindRouter() *gin.Engine {
	r := gin.New()
	r.POST("/tasks/", func(ctx *gin.Context) {
		var req task.CreateRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})
	return r
}

func postBind(t *testing.T, body string) bindErrorResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/tasks/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	bindRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}
	return resp
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	resp := postBind(t, `{"completion_status":"LATER","owner_id":"nope"}`)

	if resp.Error.Code != "invalid_request" {
		t.Fatalf("unexpected code: %s", resp.Error.Code)
	}
	if resp.Detail == "" {
		t.Fatalf("expected top-level detail")
	}

	wantRules := map[string]string{
		"title":             "required",
		"completion_status": "oneof",
		"owner_id":          "uuid",
	}

	found := map[string]handlers.FieldError{}
	for _, fieldErr := range resp.Error.Details.Fields {
		found[fieldErr.Field] = fieldErr
	}

	for field, rule := range wantRules {
		fieldErr, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, resp.Error.Details.Fields)
		}
		if fieldErr.Rule != rule {
			t.Fatalf("field %q rule mismatch: got %q want %q", field, fieldErr.Rule, rule)
		}
		if fieldErr.Message == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	resp := postBind(t, `{"title":5}`)

	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("expected invalid_json_type, got %q", resp.Error.Details.JSON)
	}
	if resp.Error.Details.Field != "title" {
		t.Fatalf("expected detail field to be title, got %q", resp.Error.Details.Field)
	}
	if len(resp.Error.Details.Fields) == 0 || resp.Error.Details.Fields[0].Rule != "type" {
		t.Fatalf("expected a type field error, got %+v", resp.Error.Details.Fields)
	}
}

func TestBindJSON_SyntaxError(t *testing.T) {
	resp := postBind(t, `{"title": "x",}`)

	if resp.Error.Details.JSON != "invalid_json_syntax" {
		t.Fatalf("expected invalid_json_syntax, got %+v", resp.Error.Details)
	}
}

func TestBindJSON_RegisterFieldNamesAndSizeLimit(t *testing.T) {
	r := gin.New()
	r.POST("/register/", func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, 64)

		var req user.RegisterRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/register/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"username":"a","email":"nope","password":"short"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rules := map[string]string{}
	for _, f := range resp.Error.Details.Fields {
		rules[f.Field] = f.Rule
	}
	if rules["email"] != "email" || rules["password"] != "min" {
		t.Fatalf("fields = %+v", resp.Error.Details.Fields)
	}

	w = post(`{"username":"` + strings.Repeat("a", 100) + `","password":"long-enough"}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413, body=%s", w.Code, w.Body.String())
	}
}
