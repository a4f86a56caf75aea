// Package rpc implements the line-oriented routing protocol between the
// coordinator and worker processes. A request is one text line of the form
// COMMAND or COMMAND:payload; the response is one JSON line, or a line
// beginning with ERROR followed by a human-readable reason.
package rpc

import (
	"fmt"
	"strings"
)

// Protocol commands.
const (
	CmdInfo        = "INFO"
	CmdSubmitTrade = "SUBMIT_TRADE"
	CmdGetStatus   = "GET_STATUS"
)

// errorPrefix starts every failure response line.
const errorPrefix = "ERROR"

// parseRequest splits a request line into command and payload. The payload
// is empty for bare commands like INFO.
func parseRequest(line string) (cmd, payload string) {
	line = strings.TrimRight(line, "\r\n")
	if i := strings.Index(line, ":"); i >= 0 {
		return line[:i], line[i+1:]
	}
	return line, ""
}

// errorLine formats a failure response.
func errorLine(reason string) string {
	return fmt.Sprintf("%s: %s", errorPrefix, reason)
}

// isErrorLine reports whether a response line is a failure, returning the
// reason when it is.
func isErrorLine(line string) (string, bool) {
	if !strings.HasPrefix(line, errorPrefix) {
		return "", false
	}
	reason := strings.TrimPrefix(line, errorPrefix)
	reason = strings.TrimPrefix(reason, ":")
	return strings.TrimSpace(reason), true
}
