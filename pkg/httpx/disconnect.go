package httpx

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// IsClientDisconnect reports whether err came from the peer going away
// mid-response (broken pipe, reset, aborted, or a cancelled request
// context). Streaming handlers treat these as a normal end of transfer.
func IsClientDisconnect(err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, context.Canceled),
		errors.Is(err, net.ErrClosed):
		return true
	}

	// http2 and some proxies surface these without a typed cause
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "stream closed") ||
		strings.Contains(msg, "client disconnected")
}
