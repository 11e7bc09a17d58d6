package enrollqr

import "errors"

var (
	ErrAppURLMissing = errors.New("trial.app_url is not configured")
	ErrInvalidSize   = errors.New("invalid qr size")
)
