package topology

import "errors"

var (
	ErrSameVertex       = errors.New("topology: the two ends of an edge are the same vertex")
	ErrEmptyWire        = errors.New("topology: empty wire")
	ErrNotClosedWire    = errors.New("topology: boundary wire is not closed")
	ErrNotSimpleWire    = errors.New("topology: boundary wire is not simple")
	ErrNotDisjointWires = errors.New("topology: boundary wires share a vertex")
	ErrEmptyShell       = errors.New("topology: empty shell")
	ErrNotConnected     = errors.New("topology: shell is not connected")
	ErrNotClosedShell   = errors.New("topology: shell is not closed")
	ErrNotManifold      = errors.New("topology: shell has a singular vertex")
)
