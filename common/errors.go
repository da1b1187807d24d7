package common

import (
	"errors"
)

var ErrInvalidUrl = errors.New("invalid url")
var ErrRedirectLoop = errors.New("too many redirects")
var ErrInvalidHost = errors.New("invalid host")
var ErrHostNotFound = errors.New("host not found")
var ErrHostNotAllowed = errors.New("host not allowed")
var ErrPageTooLarge = errors.New("page too large")

// FetchError is a network, DNS, TLS, or timeout failure while retrieving Url.
type FetchError struct {
	Url string
	Err error
}

func (e *FetchError) Error() string {
	return "error fetching " + e.Url + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

const ErrCodeBadRequest = "M_BAD_REQUEST"
const ErrCodeNotFound = "M_NOT_FOUND"
const ErrCodeUnknown = "M_UNKNOWN"
const ErrCodeMethodNotAllowed = "M_METHOD_NOT_ALLOWED"
const ErrCodeFetchFailed = "M_FETCH_FAILED"
const ErrCodeRedirectLoop = "M_REDIRECT_LOOP"
