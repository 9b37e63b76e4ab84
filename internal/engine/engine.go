// Package engine brings WireGuard tunnels up on a kernel TUN interface using
// wireguard-go.
package engine

import (
	"context"
	"fmt"
	"net/netip"
	"sync"

	"golang.zx2c4.com/wireguard/conn"
	"golang.zx2c4.com/wireguard/device"
	"golang.zx2c4.com/wireguard/tun"

	"github.com/user/oneclick-vpn/internal/dns"
	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/routing"
	"github.com/user/oneclick-vpn/internal/wgconf"
)

// DefaultMTU is used when neither the engine nor the profile sets one.
const DefaultMTU = 1420

// Kernel runs one wireguard-go device on an OS TUN interface.
// It needs administrator rights.
type Kernel struct {
	Name string // requested interface name
	MTU  int

	mu     sync.Mutex
	device *device.Device
	ifname string
	routes *routing.Manager
	dns    *dns.Manager
}

// NewKernel creates an engine for the named interface.
func NewKernel(name string, mtu int) *Kernel {
	if mtu == 0 {
		mtu = DefaultMTU
	}
	return &Kernel{Name: normalizeInterfaceName(name), MTU: mtu}
}

// Up creates the interface, applies cfg and brings the device up.
func (k *Kernel) Up(ctx context.Context, cfg *wgconf.Config) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.device != nil {
		return fmt.Errorf("tunnel already up on %s", k.ifname)
	}

	resolved := make([]netip.AddrPort, len(cfg.Peers))
	var servers []netip.Addr
	var allowed []netip.Prefix
	for i, p := range cfg.Peers {
		allowed = append(allowed, p.AllowedIPs...)
		if p.Endpoint == nil {
			continue
		}
		ap, err := p.Endpoint.Resolve(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve server: %w", err)
		}
		resolved[i] = ap
		servers = append(servers, ap.Addr())
	}

	mtu := k.MTU
	if cfg.Interface.MTU > 0 {
		mtu = cfg.Interface.MTU
	}

	tunDevice, err := tun.CreateTUN(k.Name, mtu)
	if err != nil {
		return fmt.Errorf("failed to create TUN device: %w", err)
	}
	ifname := k.Name
	if real, err := tunDevice.Name(); err == nil {
		ifname = real
	}

	if err := assignAddresses(ifname, cfg.Interface.Addresses); err != nil {
		tunDevice.Close()
		return err
	}

	dev := device.NewDevice(tunDevice, conn.NewDefaultBind(), deviceLogger())
	if err := dev.IpcSet(cfg.UAPI(resolved)); err != nil {
		dev.Close()
		return fmt.Errorf("failed to apply config: %w", err)
	}
	if err := dev.Up(); err != nil {
		dev.Close()
		return fmt.Errorf("failed to bring device up: %w", err)
	}
	if err := linkUp(ifname); err != nil {
		dev.Close()
		return err
	}

	routes := routing.NewManager(ifname)
	if err := routes.Apply(allowed, servers); err != nil {
		dev.Close()
		return err
	}
	resolvers := dns.NewManager(ifname)
	if err := resolvers.Set(cfg.Interface.DNS, cfg.Interface.DNSSearch); err != nil {
		// Tunnel still works with the system resolvers.
		logger.Warning("Failed to configure DNS on %s: %v", ifname, err)
	}

	k.device = dev
	k.ifname = ifname
	k.routes = routes
	k.dns = resolvers
	logger.Info("WireGuard device %s up (mtu %d, %d peer(s))", ifname, mtu, len(cfg.Peers))
	return nil
}

// Down closes the device and its interface. Safe to call when not up.
func (k *Kernel) Down() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.device == nil {
		return nil
	}
	if err := k.dns.Reset(); err != nil {
		logger.Warning("Failed to restore DNS: %v", err)
	}
	if err := k.routes.Remove(); err != nil {
		logger.Warning("Failed to remove routes: %v", err)
	}
	if err := linkDown(k.ifname); err != nil {
		logger.Warning("Failed to bring %s down: %v", k.ifname, err)
	}
	k.device.Close()
	k.device = nil
	logger.Info("WireGuard device %s closed", k.ifname)
	return nil
}

func deviceLogger() *device.Logger {
	return &device.Logger{
		Verbosef: device.DiscardLogf,
		Errorf: func(format string, args ...any) {
			logger.Error("(wireguard) "+format, args...)
		},
	}
}
