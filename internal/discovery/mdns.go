// Package discovery advertises the canvas server on the local network and
// finds advertised servers.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog"
)

// ServiceType is the DNS-SD service type for canvas servers.
const ServiceType = "_wirecanvas._tcp"

// Advertiser publishes the server over mDNS until Shutdown is called.
type Advertiser struct {
	server *mdns.Server
	log    *zerolog.Logger
}

// Advertise starts answering mDNS queries for instance on the port taken from
// the listen address.
func Advertise(instance, listenAddr string, logger *zerolog.Logger) (*Advertiser, error) {
	port, err := PortFromAddr(listenAddr)
	if err != nil {
		return nil, err
	}
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("could not get hostname: %w", err)
		}
		instance = host
	}

	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, []string{"path=/ws"})
	if err != nil {
		return nil, fmt.Errorf("create mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("start mdns server: %w", err)
	}

	logger.Info().Str("instance", instance).Int("port", port).Str("service", ServiceType).Msg("mdns advertising")
	return &Advertiser{server: server, log: logger}, nil
}

// Shutdown stops answering queries.
func (a *Advertiser) Shutdown() error {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Shutdown()
}

// Browse collects ws:// addresses of servers answering within timeout.
func Browse(ctx context.Context, timeout time.Duration) ([]string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make([]string, 0)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found = append(found, "ws://"+net.JoinHostPort(e.AddrV4.String(), strconv.Itoa(e.Port))+"/ws")
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errCh := make(chan error, 1)
	go func() { errCh <- mdns.Query(params) }()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		err = ctx.Err()
		// Query returns on its own timeout; wait so entries can be closed.
		<-errCh
	}
	close(entries)
	<-done

	if err != nil {
		return nil, fmt.Errorf("mdns query: %w", err)
	}
	return found, nil
}

// PortFromAddr extracts the TCP port from a listen address such as ":3001".
func PortFromAddr(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("parse listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("parse port %q: %w", portStr, err)
	}
	if port <= 0 || port > 65535 {
		return 0, errors.New("listen address must name a fixed port")
	}
	return port, nil
}
