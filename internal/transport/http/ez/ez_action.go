package ez

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-gorm-microblog/internal/domain"
	mdw "go-gin-gorm-microblog/internal/transport/http/middleware"
	resp "go-gin-gorm-microblog/internal/transport/http/response"
)

// EZ registers actions on one router group.
type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, log *zap.Logger) EZ {
	if log == nil {
		log = zap.NewNop()
	}
	return EZ{g: g, log: log}
}

func (e EZ) Group() *gin.RouterGroup { return e.g }

// Groups is what an API module mounts onto: routes open to anyone and
// routes behind AuthJWT.
type Groups struct {
	Public EZ
	Authed EZ
}

type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// AErr is a transport-level failure with an explicit envelope code.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Action I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string
	Binder  Binder
	Auth    bool     // 是否要求登录（检查 userId）
	Roles   []string // any of these, from the token
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth {
			if UserID(c) == 0 {
				c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
			if len(a.Roles) > 0 && !slices.ContainsFunc(a.Roles, func(r string) bool {
				return slices.Contains(Roles(c), r)
			}) {
				c.JSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			e.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// Fail writes err as an envelope. Unclassified errors are logged and their
// text withheld from the client.
func (e EZ) Fail(c *gin.Context, err error) {
	code, msg, data := Classify(err)
	if code == resp.CodeServerError {
		_ = c.Error(err)
		e.log.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(http.StatusOK, resp.ErrorWithData(code, msg, data))
}

// Classify maps an error onto envelope code, message and payload.
func Classify(err error) (code int, msg string, data any) {
	var ae *AErr
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ae):
		if ae.Code == resp.CodeServerError {
			return ae.Code, ae.Msg, nil
		}
		return ae.Code, ae.Error(), nil
	case errors.As(err, &ve):
		return resp.CodeBadRequest, "validation failed", gin.H{"fields": ve.Fields}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return resp.CodeUnauthorized, err.Error(), nil
	case errors.Is(err, domain.ErrForbidden):
		return resp.CodeForbidden, err.Error(), nil
	case errors.Is(err, domain.ErrNotFound):
		return resp.CodeNotFound, err.Error(), nil
	case errors.Is(err, domain.ErrConflict):
		return resp.CodeConflict, err.Error(), nil
	case errors.Is(err, context.DeadlineExceeded):
		return resp.CodeTimeout, "timeout", nil
	default:
		return resp.CodeServerError, "internal error", nil
	}
}

// UserID is the authenticated user, or 0.
func UserID(c *gin.Context) uint { return c.GetUint(mdw.KeyUserID) }

func Roles(c *gin.Context) []string { return c.GetStringSlice(mdw.KeyRoles) }

// ParamID parses a positive numeric path parameter.
func ParamID(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, BadRequest("invalid " + name)
	}
	return uint(v), nil
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// PageQuery binds ?offset=&limit= with the limit clamped to [1, 100].
type PageQuery struct {
	Offset int `form:"offset"`
	Limit  int `form:"limit"`
}

func (q PageQuery) Page() domain.Page {
	p := domain.Page{Offset: max(q.Offset, 0), Limit: q.Limit}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	p.Limit = min(p.Limit, maxLimit)
	return p
}
