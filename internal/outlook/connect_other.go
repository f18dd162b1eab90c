//go:build !windows

package outlook

import (
	"context"
	"errors"
)

// ProgID is the COM class Outlook registers for automation.
const ProgID = "Outlook.Application"

var errNoCOM = errors.New("Outlook automation is only available on Windows")

// COMConnector is unavailable outside Windows; Connect always fails.
type COMConnector struct{}

// NewCOMConnector returns a connector that reports Outlook as unreachable.
func NewCOMConnector() *COMConnector {
	return &COMConnector{}
}

// Connect always fails with a connection error cause.
func (c *COMConnector) Connect(context.Context) (Object, error) {
	return nil, errNoCOM
}

// Close is a no-op.
func (c *COMConnector) Close() {}
