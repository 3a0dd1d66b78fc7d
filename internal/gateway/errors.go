package gateway

import "fmt"

// FetchError reports a failed read: the backend was unreachable or answered
// a non-2xx status on a GET.
type FetchError struct {
	Endpoint   string
	StatusCode int // 0 when the request never got a response
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: http %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PersistError reports a failed write: create, status change, upload or
// delete was rejected or never reached the backend.
type PersistError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *PersistError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("persist %s: http %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("persist %s: %v", e.Endpoint, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
