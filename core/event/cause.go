// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package event

import "fmt"

// DisconnectCause classifies why a connection was torn down.
type DisconnectCause int32

const (
	// CauseNone is the zero value; it is never reported in a DisconnectEvent.
	CauseNone DisconnectCause = iota
	// CauseDisconnected means the peer closed the stream.
	CauseDisconnected
	// CauseTimeout means nothing was read within the read timeout.
	CauseTimeout
	// CauseClosed means the connection was closed locally.
	CauseClosed
	// CauseError covers protocol level failures such as oversized lines.
	CauseError
)

func (c DisconnectCause) String() string {
	switch c {
	case CauseNone:
		return "NONE"
	case CauseDisconnected:
		return "DISCONNECTED"
	case CauseTimeout:
		return "TIMEOUT"
	case CauseClosed:
		return "CLOSED"
	case CauseError:
		return "ERROR"
	default:
		return fmt.Sprintf("DisconnectCause(%d)", int32(c))
	}
}
