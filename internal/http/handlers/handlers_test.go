package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/tasktracker/internal/auth"
	"github.com/geocoder89/tasktracker/internal/domain/user"
	"github.com/geocoder89/tasktracker/internal/http/handlers"
	"github.com/geocoder89/tasktracker/internal/http/middlewares"
	"github.com/geocoder89/tasktracker/internal/repo/memory"
	"github.com/geocoder89/tasktracker/internal/security"
	"github.com/geocoder89/tasktracker/internal/service"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	r     *gin.Engine
	jwt   *auth.Manager
	store *memory.Store
}

type account struct {
	id    string
	token string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	jwt := auth.NewManager("test-secret", time.Hour)

	tasks := handlers.NewTasksHandler(service.NewTaskService(store, log), log)
	labels := handlers.NewLabelsHandler(service.NewLabelService(store, log), log)
	accounts := handlers.NewAccountsHandler(
		service.NewRegistrationService(store, security.NewHasher(bcrypt.MinCost), log), jwt, log,
	)

	r := gin.New()
	r.Use(middlewares.RequestID())
	r.POST("/register/", accounts.Register)
	r.POST("/auth/login", accounts.Login)

	api := r.Group("/", middlewares.NewAuthMiddleware(jwt).RequireAuth())
	api.GET("/tasks/", tasks.List)
	api.POST("/tasks/", tasks.Create)
	api.GET("/tasks/:id/", tasks.Get)
	api.PUT("/tasks/:id/", tasks.Replace)
	api.PATCH("/tasks/:id/", tasks.Patch)
	api.DELETE("/tasks/:id/", tasks.Delete)
	api.GET("/labels/", labels.List)
	api.POST("/labels/", labels.Create)
	api.GET("/labels/:id/", labels.Get)
	api.PUT("/labels/:id/", labels.Replace)
	api.PATCH("/labels/:id/", labels.Patch)
	api.DELETE("/labels/:id/", labels.Delete)

	return &testEnv{r: r, jwt: jwt, store: store}
}

func (e *testEnv) account(t *testing.T, username string, staff bool) account {
	t.Helper()

	u, err := e.store.CreateUser(context.Background(), user.New(username, "", "unused", staff))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	token, err := e.jwt.GenerateAccessToken(u.ID, u.Username, u.IsStaff)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return account{id: u.ID, token: token}
}

func (e *testEnv) do(t *testing.T, method, path string, as *account, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+as.token)
	}

	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d, body=%s", w.Code, want, w.Body.String())
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v body=%s", err, w.Body.String())
	}
	return out
}

type ownerJSON struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type labelJSON struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Owner ownerJSON `json:"owner"`
}

type taskJSON struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      *string     `json:"description"`
	CompletionStatus string      `json:"completion_status"`
	Owner            ownerJSON   `json:"owner"`
	Labels           []labelJSON `json:"labels"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

type errorJSON struct {
	Detail string `json:"detail"`
	Error  struct {
		Code string `json:"code"`
	} `json:"error"`
}

func (e *testEnv) createLabel(t *testing.T, as account, name string) labelJSON {
	t.Helper()

	w := e.do(t, http.MethodPost, "/labels/", &as, `{"name":"`+name+`"}`)
	mustStatus(t, w, http.StatusCreated)
	return decode[labelJSON](t, w)
}
