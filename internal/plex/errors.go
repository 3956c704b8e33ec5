package plex

import "errors"

// ClientError is a non-2xx response from plex.tv or a media server.
type ClientError struct {
	Message    string
	StatusCode int
}

func (e *ClientError) Error() string { return e.Message }

// AuthError means the token was rejected or the OAuth flow did not complete.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ConnectionError means the server could not be reached at all.
type ConnectionError struct {
	Message string
	Err     error
}

func (e *ConnectionError) Error() string { return e.Message }
func (e *ConnectionError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err is a connectivity failure, as opposed
// to the server answering with an error status.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
