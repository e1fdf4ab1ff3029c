package apperrors

import "errors"

var (
	ErrMalformedAllowList    = errors.New("malformed allow-list specification")
	ErrUnknownDatasourceType = errors.New("unknown datasource type")
	ErrUnsafeIdentifier      = errors.New("unsafe SQL identifier")
	ErrNotFound              = errors.New("not found")
)
