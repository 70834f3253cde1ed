package platform

import "errors"

// Sentinel errors wrapped by Service methods. Transports map them to status codes.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrPermissionDenied = errors.New("permission denied")
)
