package export

import "errors"

var (
	ErrObjectStoreUnavailable = errors.New("object storage is not configured")
	ErrUploadFailed           = errors.New("failed to upload export")
)
