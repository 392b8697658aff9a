package factapi

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/thebtf/flowcheck/internal/privacy"
)

// TransportError reports a failure to reach the fact-check service
// (DNS, connection, TLS, timeout).
type TransportError struct {
	Err error
	Op  string
}

// Error omits the API key carried in request URLs.
func (e *TransportError) Error() string {
	return privacy.Clean(fmt.Sprintf("fact check %s: %v", e.Op, e.Err))
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a deadline or network timeout.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// RemoteError is a non-success answer from the fact-check service.
type RemoteError struct {
	Message string
	Status  int
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("fact check service returned status %d", e.Status)
	}
	return fmt.Sprintf("fact check service returned status %d: %s", e.Status, e.Message)
}
