package remote

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Broadcast addresses every peer of the table
const Broadcast = "*"

// ErrUnknownRecipient is returned when a recipient matches no peer or group.
var ErrUnknownRecipient = errors.New("remote: unknown recipient")

// Peers is the peer table of the HTTP invoker
type Peers struct {
	// Peers maps a recipient name to the base URL of its receiver
	Peers map[string]string `yaml:"peers"`
	// Groups maps a group name to peer names
	Groups map[string][]string `yaml:"groups"`
}

// LoadPeers reads and validates a YAML peer table
func LoadPeers(path string) (*Peers, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("remote: read peers file: %w", err)
	}
	return ParsePeers(raw)
}

// ParsePeers decodes and validates a YAML peer table
func ParsePeers(raw []byte) (*Peers, error) {
	var p Peers
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("remote: decode peers: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks peer URLs and group members and normalizes the URLs
func (p *Peers) Validate() error {
	for name, raw := range p.Peers {
		if name == "" || name == Broadcast {
			return fmt.Errorf("remote: invalid peer name %q", name)
		}
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("remote: peer %q: %w", name, err)
		}
		if u.Scheme != "http" || u.Host == "" {
			return fmt.Errorf("remote: peer %q: want http://host:port, got %q", name, raw)
		}
		p.Peers[name] = strings.TrimSuffix(u.String(), "/")
	}

	for group, members := range p.Groups {
		if _, clash := p.Peers[group]; clash {
			return fmt.Errorf("remote: group %q shadows a peer", group)
		}
		for _, m := range members {
			if _, ok := p.Peers[m]; !ok {
				return fmt.Errorf("remote: group %q: %w %q", group, ErrUnknownRecipient, m)
			}
		}
	}
	return nil
}

// Resolve returns the base URLs a recipient addresses, sorted and without duplicates
func (p *Peers) Resolve(recipient string) ([]string, error) {
	seen := make(map[string]struct{})
	add := func(name string) {
		seen[p.Peers[name]] = struct{}{}
	}

	switch {
	case recipient == Broadcast:
		for name := range p.Peers {
			add(name)
		}
	case p.Peers[recipient] != "":
		add(recipient)
	default:
		members, ok := p.Groups[recipient]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRecipient, recipient)
		}
		for _, m := range members {
			add(m)
		}
	}

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls, nil
}
