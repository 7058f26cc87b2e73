package netwatch

import (
	"net"
	"os"
	"path/filepath"
)

// InterfaceGate implements Gate by inspecting the host's network interfaces.
// Wi-Fi detection relies on the kernel exposing a wireless/ directory under
// /sys/class/net/<iface>, which is the case for mainline Linux drivers.
//
// The probe functions are fields so tests can substitute fakes.
type InterfaceGate struct {
	interfaces func() ([]net.Interface, error)
	addrs      func(net.Interface) ([]net.Addr, error)
	isWireless func(name string) bool
}

// NewInterfaceGate returns a Gate backed by the real system state.
func NewInterfaceGate() *InterfaceGate {
	return &InterfaceGate{
		interfaces: net.Interfaces,
		addrs: func(iface net.Interface) ([]net.Addr, error) {
			return iface.Addrs()
		},
		isWireless: func(name string) bool {
			_, err := os.Stat(filepath.Join("/sys/class/net", name, "wireless"))
			return err == nil
		},
	}
}

func (g *InterfaceGate) IsWifiConnected() bool {
	ifaces, err := g.interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if g.usable(iface) && g.isWireless(iface.Name) {
			return true
		}
	}
	return false
}

func (g *InterfaceGate) IsOnline() bool {
	ifaces, err := g.interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if g.usable(iface) {
			return true
		}
	}
	return false
}

// usable means up, not loopback, and holding at least one address.
func (g *InterfaceGate) usable(iface net.Interface) bool {
	if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
		return false
	}
	addrs, err := g.addrs(iface)
	if err != nil {
		return false
	}
	return len(addrs) > 0
}
