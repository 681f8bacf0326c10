package admin

import "errors"

var errInvalidRange = errors.New("invalid or missing date range")
