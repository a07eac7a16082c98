// Package workflow implements the consultation pipeline: ensemble
// classification, gating, reference resolution, verification, record
// assembly, and grounded follow-up chat.
package workflow

import "errors"

var (
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrChatUnavailable       = errors.New("chat unavailable")
)
