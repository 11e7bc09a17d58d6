package patient

import "errors"

var (
	ErrPatientNotFound         = errors.New("patient not found")
	ErrPatientAlreadyExists    = errors.New("patient id is already registered")
	ErrInvalidPatient          = errors.New("invalid patient data")
	ErrInvalidPhone            = errors.New("contact phone is not a valid number")
	ErrPhoneStorageUnavailable = errors.New("contact phones cannot be stored without an encryption key")
	ErrInsufficientHistory     = errors.New("not enough history to plot yet")
)
