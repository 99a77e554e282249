package apperrors

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrStorageUnavailable    = errors.New("storage unavailable")
	ErrRemoteUnavailable     = errors.New("remote unavailable")
	ErrAuthorizationRejected = errors.New("authorization rejected")
	ErrInvalidBackupFormat   = errors.New("invalid backup format")
	ErrNotSignedIn           = errors.New("not signed in")
	ErrInvalidTransition     = errors.New("invalid timer transition")
	ErrModeLocked            = errors.New("timer mode can only change while idle")
	ErrNotDateIndexed        = errors.New("collection is not date indexed")
)
