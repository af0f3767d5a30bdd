// Package handler holds the HTTP modules mounted by the api and admin
// engines. Each module translates requests into service calls and nothing
// more; authorization beyond "is signed in" lives in the services.
package handler

import (
	"go-gin-gorm-microblog/internal/core/auth"
	"go-gin-gorm-microblog/internal/domain"
	"go-gin-gorm-microblog/internal/transport/http/ez"
)

type list[T any] struct {
	Total *int64 `json:"total,omitempty"`
	Items []T    `json:"items"`
}

func listOf[T any](items []T) list[T] {
	if items == nil {
		items = []T{}
	}
	return list[T]{Items: items}
}

func pageOf[T any](items []T, total int64) list[T] {
	l := listOf(items)
	l.Total = &total
	return l
}

type session struct {
	Token         string       `json:"token"`
	RememberToken string       `json:"rememberToken,omitempty"`
	User          *domain.User `json:"user"`
}

func issue(j *auth.JWTer, u *domain.User, remember string) (session, error) {
	tok, err := j.Issue(u.ID, u.RoleNames())
	if err != nil {
		return session{}, ez.Internal("issue token failed", err)
	}
	return session{Token: tok, RememberToken: remember, User: u}, nil
}
