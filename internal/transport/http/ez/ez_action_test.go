package ez

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-gorm-microblog/internal/domain"
	mdw "go-gin-gorm-microblog/internal/transport/http/middleware"
	resp "go-gin-gorm-microblog/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", domain.NewValidationError(domain.FieldError{Field: "email", Rule: "required"}), resp.CodeBadRequest, "validation failed"},
		{"credentials", domain.ErrInvalidCredentials, resp.CodeUnauthorized, "invalid email or password"},
		{"forbidden", &domain.AuthorizationError{Action: "delete micropost", Reason: "not the author"}, resp.CodeForbidden, "not allowed to delete micropost: not the author"},
		{"not found", fmt.Errorf("wrap: %w", &domain.NotFoundError{Resource: "user", ID: 9}), resp.CodeNotFound, "wrap: user 9 not found"},
		{"conflict", domain.ErrAlreadyFollowing, resp.CodeConflict, "relationship followed_id already taken"},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), resp.CodeTimeout, "timeout"},
		{"bad request", BadRequest("invalid id"), resp.CodeBadRequest, "invalid id"},
		{"internal hides cause", Internal("issue token failed", errors.New("secret leaked")), resp.CodeServerError, "issue token failed"},
		{"unknown", errors.New("pq: relation does not exist"), resp.CodeServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg, _ := Classify(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestClassify_ValidationCarriesFields(t *testing.T) {
	_, _, data := Classify(domain.NewValidationError(domain.FieldError{Field: "content", Rule: "max", Param: "140"}))
	b, err := json.Marshal(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields":[{"field":"content","rule":"max","param":"140"}]}`, string(b))
}

func TestPageQuery(t *testing.T) {
	assert.Equal(t, domain.Page{Offset: 0, Limit: 20}, PageQuery{}.Page())
	assert.Equal(t, domain.Page{Offset: 5, Limit: 100}, PageQuery{Offset: 5, Limit: 1000}.Page())
	assert.Equal(t, domain.Page{Offset: 0, Limit: 20}, PageQuery{Offset: -3, Limit: -1}.Page())
}

type echoIn struct {
	Name string `json:"name" binding:"required"`
}

func newEngine(uid uint, roles ...string) (*gin.Engine, EZ) {
	r := gin.New()
	g := r.Group("", func(c *gin.Context) {
		if uid != 0 {
			c.Set(mdw.KeyUserID, uid)
			c.Set(mdw.KeyRoles, roles)
		}
	})
	return r, New(g, nil)
}

func call(r *gin.Engine, method, path, body string) resp.Resp {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	var out resp.Resp
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func register(e EZ, roles ...string) {
	RegisterAction(e, Action[echoIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/items/:id",
		Binder: BindJSON,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *echoIn) (gin.H, error) {
			id, err := ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			if in.Name == "missing" {
				return nil, &domain.NotFoundError{Resource: "item", ID: id}
			}
			return gin.H{"id": id, "name": in.Name, "by": UserID(c)}, nil
		},
	})
}

func TestRegisterAction(t *testing.T) {
	r, e := newEngine(5, "user")
	register(e)

	out := call(r, http.MethodPost, "/items/3", `{"name":"a"}`)
	require.Equal(t, resp.CodeOK, out.Code)
	assert.Equal(t, map[string]any{"id": float64(3), "name": "a", "by": float64(5)}, out.Data)

	assert.Equal(t, resp.CodeBadRequest, call(r, http.MethodPost, "/items/3", `{}`).Code)
	assert.Equal(t, resp.CodeBadRequest, call(r, http.MethodPost, "/items/abc", `{"name":"a"}`).Code)
	assert.Equal(t, resp.CodeNotFound, call(r, http.MethodPost, "/items/3", `{"name":"missing"}`).Code)
}

func TestRegisterAction_AuthAndRoles(t *testing.T) {
	anon, e := newEngine(0)
	register(e)
	assert.Equal(t, resp.CodeUnauthorized, call(anon, http.MethodPost, "/items/1", `{"name":"a"}`).Code)

	user, e := newEngine(5, "user")
	register(e, "admin")
	assert.Equal(t, resp.CodeForbidden, call(user, http.MethodPost, "/items/1", `{"name":"a"}`).Code)

	admin, e := newEngine(6, "user", "admin")
	register(e, "admin")
	assert.Equal(t, resp.CodeOK, call(admin, http.MethodPost, "/items/1", `{"name":"a"}`).Code)
}
