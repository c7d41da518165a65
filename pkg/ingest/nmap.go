package ingest

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/user/riskcore/pkg/model"
)

// XML structures for Nmap run output
type nmapRun struct {
	Hosts []nmapHost `xml:"host"`
}
type nmapHost struct {
	Addresses []nmapAddress `xml:"address"`
	Hostnames nmapHostnames `xml:"hostnames"`
	Ports     nmapPorts     `xml:"ports"`
	OS        nmapOS        `xml:"os"`
}
type nmapAddress struct {
	Addr     string `xml:"addr,attr"`
	AddrType string `xml:"addrtype,attr"`
}
type nmapHostnames struct {
	Hostnames []nmapHostname `xml:"hostname"`
}
type nmapHostname struct {
	Name string `xml:"name,attr"`
}
type nmapPorts struct {
	Ports []nmapPort `xml:"port"`
}
type nmapPort struct {
	PortID   string      `xml:"portid,attr"`
	Protocol string      `xml:"protocol,attr"`
	State    nmapState   `xml:"state"`
	Service  nmapService `xml:"service"`
}
type nmapState struct {
	State string `xml:"state,attr"`
}
type nmapService struct {
	Name string `xml:"name,attr"`
}
type nmapOS struct {
	Matches []nmapOSMatch `xml:"osmatch"`
}
type nmapOSMatch struct {
	Name string `xml:"name,attr"`
}

// DecodeNmap walks Nmap host records and emits one asset draft per host
// with an IPv4 address. Hosts with no open ports still produce a draft:
// discovery without ports is still an attack-surface increase.
func DecodeNmap(data []byte) ([]model.AssetDraft, error) {
	var run nmapRun
	if err := xml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("%w: nmap xml: %v", ErrMalformedInput, err)
	}

	var drafts []model.AssetDraft
	for i, host := range run.Hosts {
		var ip string
		for _, addr := range host.Addresses {
			if addr.AddrType == "ipv4" {
				ip = addr.Addr
				break
			}
		}
		if ip == "" {
			continue
		}

		hostname := fmt.Sprintf("host-%d", i+1)
		if len(host.Hostnames.Hostnames) > 0 && host.Hostnames.Hostnames[0].Name != "" {
			hostname = host.Hostnames.Hostnames[0].Name
		}

		ports := []int{}
		services := []string{}
		for _, port := range host.Ports.Ports {
			if port.Protocol != "tcp" || port.State.State != "open" {
				continue
			}
			if id, err := strconv.Atoi(port.PortID); err == nil {
				ports = append(ports, id)
			}
			if port.Service.Name != "" {
				services = append(services, port.Service.Name)
			}
		}

		operatingSystem := "Unknown"
		if len(host.OS.Matches) > 0 && host.OS.Matches[0].Name != "" {
			operatingSystem = host.OS.Matches[0].Name
		}

		drafts = append(drafts, model.AssetDraft{
			Name:            hostname,
			IPAddress:       ip,
			Hostname:        hostname,
			Ports:           ports,
			Services:        services,
			OperatingSystem: operatingSystem,
		})
	}
	return drafts, nil
}
