package ingest

import (
	"strings"

	"github.com/user/riskcore/pkg/model"
)

// Classification is the heuristic read of an asset's raw scan signals
type Classification struct {
	Type          model.AssetType
	Criticality   int     // 1-5
	ExposureScore float64 // 0-100
}

var (
	databaseTokens    = []string{"database", "mysql", "postgres"}
	webTokens         = []string{"http", "web"}
	remoteShellTokens = []string{"ssh", "telnet"}

	// ports an attacker reaches for first; each open one adds exposure
	commonlyAttackedPorts = map[int]bool{
		21:   true,
		23:   true,
		80:   true,
		443:  true,
		3389: true,
		5900: true,
	}
)

// Classify derives asset type, criticality and exposure score from open
// ports and announced services. It is deterministic and side-effect-free.
// Database detection takes precedence over web, which takes precedence
// over remote-shell detection.
func Classify(services []string, ports []int) Classification {
	lowered := make([]string, len(services))
	for i, s := range services {
		lowered[i] = strings.ToLower(s)
	}

	c := Classification{
		Type:        classifyType(lowered),
		Criticality: classifyCriticality(lowered, ports),
	}
	c.ExposureScore = classifyExposure(lowered, ports)
	return c
}

func classifyType(services []string) model.AssetType {
	if anyContains(services, databaseTokens) {
		return model.AssetDatabase
	}
	if anyContains(services, webTokens) {
		return model.AssetServer
	}
	if anyContains(services, remoteShellTokens) {
		return model.AssetServer
	}
	return model.AssetWorkstation
}

func classifyCriticality(services []string, ports []int) int {
	criticality := 1

	if anyContains(services, webTokens[:1]) { // any http service
		criticality += 2
	}
	if anyContains(services, databaseTokens) {
		criticality += 3
	}
	if hasPort(ports, 22) {
		criticality += 1
	}

	if criticality > 5 {
		criticality = 5
	}
	return criticality
}

func classifyExposure(services []string, ports []int) float64 {
	exposure := 0.0

	for _, p := range ports {
		if commonlyAttackedPorts[p] {
			exposure += 15
		}
	}
	if anyContains(services, webTokens[:1]) {
		exposure += 20
	}
	if hasPort(ports, 3389) || hasPort(ports, 5900) {
		exposure += 25
	}

	if exposure > 100 {
		exposure = 100
	}
	if exposure < 0 {
		exposure = 0
	}
	return exposure
}

func anyContains(services []string, tokens []string) bool {
	for _, s := range services {
		for _, tok := range tokens {
			if strings.Contains(s, tok) {
				return true
			}
		}
	}
	return false
}

func hasPort(ports []int, want int) bool {
	for _, p := range ports {
		if p == want {
			return true
		}
	}
	return false
}
