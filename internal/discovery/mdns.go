// ABOUTME: mDNS discovery of LAN live gateways
// ABOUTME: Browses for _stillwave-gw._tcp when no gateway URL is configured
package discovery

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hashicorp/mdns"
)

// serviceType identifies stillwave live gateways on the LAN.
const serviceType = "_stillwave-gw._tcp"

// queryTimeout bounds one mDNS query round. The field is a
// time.Duration, so a bare integer would mean nanoseconds.
const queryTimeout = 3 * time.Second

// GatewayInfo describes a discovered live gateway.
type GatewayInfo struct {
	Name string
	Host string
	Port int
}

// URL returns the websocket endpoint for the gateway.
func (g *GatewayInfo) URL() string {
	return fmt.Sprintf("ws://%s:%d/live", g.Host, g.Port)
}

// Manager browses for live gateways.
type Manager struct {
	ctx      context.Context
	cancel   context.CancelFunc
	gateways chan *GatewayInfo
}

// NewManager creates a discovery manager.
func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		ctx:      ctx,
		cancel:   cancel,
		gateways: make(chan *GatewayInfo, 10),
	}
}

// Browse starts searching for gateways in the background.
func (m *Manager) Browse() {
	go m.browseLoop()
}

func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)

		go func() {
			for entry := range entries {
				if entry.AddrV4 == nil {
					continue
				}
				gw := &GatewayInfo{
					Name: entry.Name,
					Host: entry.AddrV4.String(),
					Port: entry.Port,
				}
				log.Printf("Discovered live gateway: %s at %s:%d", gw.Name, gw.Host, gw.Port)

				select {
				case m.gateways <- gw:
				case <-m.ctx.Done():
					return
				}
			}
		}()

		params := queryParams(entries)
		mdns.Query(params)
		close(entries)
	}
}

// queryParams builds one browse round's query.
func queryParams(entries chan *mdns.ServiceEntry) *mdns.QueryParam {
	return &mdns.QueryParam{
		Service: serviceType,
		Domain:  "local",
		Timeout: queryTimeout,
		Entries: entries,
	}
}

// Gateways returns the channel of discovered gateways.
func (m *Manager) Gateways() <-chan *GatewayInfo {
	return m.gateways
}

// Stop stops browsing.
func (m *Manager) Stop() {
	m.cancel()
}
