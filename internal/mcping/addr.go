package mcping

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultPort is the port vanilla servers listen on.
const DefaultPort = 25565

// Addr is a parsed server address.
type Addr struct {
	Host string
	Port uint16

	// ExplicitPort reports whether the port appeared in the input.
	// An explicit port suppresses SRV resolution, matching vanilla.
	ExplicitPort bool
}

// String renders the address in host:port form, bracketing IPv6 literals.
func (a Addr) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

// ParseAddr parses "host", "host:port", "[v6]" or "[v6]:port". Bare IPv6
// literals without brackets are accepted too. The port defaults to
// DefaultPort and must fit 1..65535 when given.
func ParseAddr(s string) (Addr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Addr{}, errors.New("empty address")
	}

	if host, portStr, err := net.SplitHostPort(s); err == nil {
		p, perr := strconv.ParseUint(portStr, 10, 16)
		if perr != nil || p == 0 {
			return Addr{}, fmt.Errorf("invalid port %q", portStr)
		}
		if err := checkHost(host); err != nil {
			return Addr{}, err
		}
		return Addr{Host: host, Port: uint16(p), ExplicitPort: true}, nil
	}

	host := s
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		host = s[1 : len(s)-1]
	}
	if err := checkHost(host); err != nil {
		return Addr{}, err
	}
	return Addr{Host: host, Port: DefaultPort}, nil
}

func checkHost(host string) error {
	if host == "" {
		return errors.New("empty host")
	}
	if strings.ContainsAny(host, " \t/\\") {
		return fmt.Errorf("invalid host %q", host)
	}
	// A lone colon at this point means an unbracketed IPv6 literal; anything
	// that is not a valid IP with colons in it is malformed.
	if strings.Contains(host, ":") && net.ParseIP(host) == nil {
		return fmt.Errorf("invalid host %q", host)
	}
	return nil
}

// resolveTarget returns the dial target for a. Hostnames without an explicit
// port go through the _minecraft._tcp SRV convention first; any resolver
// failure falls back silently to the literal address.
func resolveTarget(ctx context.Context, r *net.Resolver, a Addr) string {
	if a.ExplicitPort || net.ParseIP(a.Host) != nil {
		return a.String()
	}
	if r == nil {
		r = net.DefaultResolver
	}
	_, srvs, err := r.LookupSRV(ctx, "minecraft", "tcp", a.Host)
	if err != nil || len(srvs) == 0 {
		return a.String()
	}
	t := srvs[0]
	return net.JoinHostPort(strings.TrimSuffix(t.Target, "."), strconv.Itoa(int(t.Port)))
}
