package models

import "errors"

// Every user-facing failure maps onto one of these. Callers wrap them with
// detail and match with errors.Is.
var (
	ErrPathNotFound             = errors.New("file existence check error")
	ErrUnsupportedFormat        = errors.New("unsupported image format error")
	ErrMenuChoiceOutOfRange     = errors.New("menu option out of range error")
	ErrInvalidConfirmationToken = errors.New("incorrect response error")
	ErrQualityOutOfRange        = errors.New("de-noising quality out of range error")
	ErrModeOutOfRange           = errors.New("mode out of range error")
	ErrThresholdOutOfRange      = errors.New("edge detection threshold out of range error")
	ErrNoImageLoaded            = errors.New("no image read error")
	ErrSaveFailed               = errors.New("image save error")
	ErrInputClosed              = errors.New("input closed")
	ErrPairMismatch             = errors.New("color and gray buffers do not match")
)
