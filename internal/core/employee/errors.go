package employee

import "errors"

var (
	ErrInvalidID        = errors.New("employee: invalid id")
	ErrInvalidStatus    = errors.New("employee: invalid status")
	ErrInvalidPageSize  = errors.New("employee: invalid page size")
	ErrInvalidPageToken = errors.New("employee: invalid page token")
	ErrEmployeeNotFound = errors.New("employee: not found")
)
