package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultSSHPort uint16 = 22

// LoadHosts reads the SSH sandbox host pool file, expands ${ENV} references
// in key paths, and parses every address into a validated endpoint.
func LoadHosts(filename string) ([]EndpointInfo, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("Couldn't read hosts file, Make sure it exist and has read permissions.")
	}

	file := &HostsFile{}
	if err := yaml.Unmarshal(b, file); err != nil {
		return nil, fmt.Errorf("Couldn't parse hosts file, make sure it has valid yaml format and required fields exist.")
	}

	endpoints := []EndpointInfo{}
	for _, host := range file.Hosts {
		ep, err := parseHost(host.Address)
		if err != nil {
			return nil, err
		}
		ep.Name = host.Name
		ep.PrivateKeyPath = os.ExpandEnv(host.PrivateKeyPath)

		if err := ValidateEndpoint(ep); err != nil {
			return nil, err
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, nil
}

// parseHost parses a "[user@]host[:port]" address into an EndpointInfo.
func parseHost(address string) (EndpointInfo, error) {
	ep := EndpointInfo{Port: defaultSSHPort}

	rest := address
	if user, hostPart, found := strings.Cut(address, "@"); found {
		ep.User = user
		rest = hostPart
	}

	host, portStr, found := strings.Cut(rest, ":")
	ep.Host = host
	if found {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return EndpointInfo{}, InvalidAddressFormat{address: address}
		}
		ep.Port = uint16(port)
	}
	return ep, nil
}

// ValidateEndpoint validates the configuration for the endpoint.
func ValidateEndpoint(ep EndpointInfo) error {
	if ep.User == "" {
		return ErrInvalidUser
	}
	if ep.Host == "" {
		return ErrInvalidHost
	}
	if ep.Port == 0 {
		return ErrInvalidPortNum
	}
	if ep.Name == "" {
		return ErrInvalidHostName
	}
	if ep.PrivateKeyPath == "" {
		return ErrInvalidPrivateKeyPath
	}
	return nil
}

func (ep EndpointInfo) GetEndpointURL() string {
	return fmt.Sprintf("%s:%d", ep.Host, ep.Port)
}
