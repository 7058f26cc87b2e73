// Package netwatch answers "may we upload right now?" questions about the
// host's connectivity. All checks fail closed: any error while querying the
// environment reads as "not connected", never as an error.
package netwatch

// Gate reports current connectivity conditions.
type Gate interface {
	// IsWifiConnected returns true only if there is an active network whose
	// underlying transport is Wi-Fi.
	IsWifiConnected() bool

	// IsOnline returns true if any usable network is up, regardless of
	// transport type.
	IsOnline() bool
}
