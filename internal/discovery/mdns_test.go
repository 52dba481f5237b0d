// ABOUTME: Tests for mDNS gateway discovery
// ABOUTME: Covers query parameters and gateway URL formatting
package discovery

import (
	"testing"
	"time"

	"github.com/hashicorp/mdns"
)

func TestQueryParams(t *testing.T) {
	entries := make(chan *mdns.ServiceEntry, 1)
	params := queryParams(entries)

	if params.Service != "_stillwave-gw._tcp" {
		t.Errorf("unexpected service: %s", params.Service)
	}
	// Timeout is a duration; anything below a second means the query
	// expires instantly and the browse loop spins.
	if params.Timeout < time.Second {
		t.Errorf("query timeout too short: %v", params.Timeout)
	}
}

func TestGatewayURL(t *testing.T) {
	gw := &GatewayInfo{Name: "den", Host: "192.168.1.20", Port: 9000}
	if got := gw.URL(); got != "ws://192.168.1.20:9000/live" {
		t.Errorf("unexpected gateway URL: %s", got)
	}
}
