package domain

import "errors"

var ErrInvalidTitle = errors.New("invalid title")
