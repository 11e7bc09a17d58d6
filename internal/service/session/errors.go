package session

import "errors"

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrTriagePending   = errors.New("the patient has not submitted today's report")
	ErrWrongArm        = errors.New("operation not available for the patient's trial arm")
	ErrNotTrainingDay  = errors.New("today is not a training day")
	ErrNotEnrolled     = errors.New("the patient has not started week 1 yet")
	ErrRedDay          = errors.New("load is blocked on a RED day, record the vagal protocol instead")
	ErrNotRedDay       = errors.New("the vagal protocol is only recorded on RED days")
)
