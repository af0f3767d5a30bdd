// Package validation runs declarative struct rules and reports every failing
// field as a domain.ValidationError.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"go-gin-gorm-microblog/internal/domain"
)

// emailPattern accepts local@domain.tld with a letters-only TLD.
var emailPattern = regexp.MustCompile(`(?i)^[\w+\-.]+@[a-z\d\-.]+\.[a-z]+$`)

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		// rune limits let multibyte passwords past bcrypt's byte limit
		_ = v.RegisterValidation("bcrypt_len", func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) <= MaxPasswordBytes
		})
	})
	return v
}

// Struct validates s and returns nil or a *domain.ValidationError listing
// every failed field in declaration order.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := domain.NewValidationError()
	for _, fe := range ves {
		param := fe.Param()
		if fe.Tag() == "bcrypt_len" {
			param = strconv.Itoa(MaxPasswordBytes)
		}
		out.Fields = append(out.Fields, domain.FieldError{
			Field: fe.Field(),
			Rule:  ruleName(fe.Tag()),
			Param: param,
		})
	}
	return out
}

// All validates each struct and folds every failure into one error.
func All(structs ...any) error {
	var out *domain.ValidationError
	for _, st := range structs {
		err := Struct(st)
		if err == nil {
			continue
		}
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		if out == nil {
			out = ve
			continue
		}
		out.Fields = append(out.Fields, ve.Fields...)
	}
	if out == nil {
		return nil
	}
	return out
}

func ruleName(tag string) string {
	switch tag {
	case "simple_email":
		return "email_format"
	case "nonblank":
		return "required"
	case "eqfield":
		return "confirmation"
	case "bcrypt_len":
		return "max"
	}
	return tag
}

// IsEmail reports whether s has the local@domain.tld shape.
func IsEmail(s string) bool { return emailPattern.MatchString(s) }
