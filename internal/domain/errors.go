package domain

import "errors"

var (
	ErrInvalidParams       = errors.New("invalid parameters")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExpired      = errors.New("account expired")
	ErrWrongAPIKey         = errors.New("wrong apikey")
	ErrInvalidSource       = errors.New("invalid source")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUpstream            = errors.New("upstream error")
)
