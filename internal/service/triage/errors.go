package triage

import "errors"

var (
	ErrPatientOnly   = errors.New("only patients submit daily reports")
	ErrNoReportToday = errors.New("no report submitted today")
)
