package config

import "errors"

var (
	// ErrParse is returned when a file is not valid HCL.
	ErrParse = errors.New("config: parse error")

	// ErrDecode is returned when valid HCL does not match the schema.
	ErrDecode = errors.New("config: decode error")

	// ErrInvalid is returned when a setting is out of range.
	ErrInvalid = errors.New("config: invalid setting")
)
