package manifest

import (
	"fmt"
	"strings"

	"github.com/cameronsjo/keylimegen/internal/templates"
)

// Mode is the target cluster topology.
type Mode string

const (
	// ModeSingleCluster deploys the attestation services and agents together.
	ModeSingleCluster Mode = "single-cluster"

	// ModeRASCluster deploys only the remote attestation services.
	ModeRASCluster Mode = "ras-cluster"

	// ModeLBCluster deploys agents that a remote verifier reaches through a load balancer.
	ModeLBCluster Mode = "lb-cluster"
)

// SupportedModes lists all valid modes.
var SupportedModes = []Mode{ModeSingleCluster, ModeRASCluster, ModeLBCluster}

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range SupportedModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown mode %q (supported: %v)", ErrInvalidConfiguration, s, SupportedModes)
}

// Agent template keys, rendered once per replica.
const (
	AgentConfigKey templates.Key = "agent-config.yaml"
	AgentPodKey    templates.Key = "agent-pod.yaml"
)

// RASClusterKeys are the control-plane templates of a ras-cluster run.
var RASClusterKeys = []templates.Key{
	"01-namespace.yaml",
	"02-keylime-tenant-config.yaml",
	"03-registrar-config.yaml",
	"04-verifier-config.yaml",
	"10-deployment-registrar.yaml",
	"11-deployment-verifier.yaml",
	"13-tenant-cli.yaml",
	"14-pgdb-deployment.yaml",
}

// LBClusterKeys are the control-plane templates of an lb-cluster run.
var LBClusterKeys = []templates.Key{
	"01-namespace.yaml",
	"15-agent-lb-service.yaml",
}

// Engine variable names available to templates.
const (
	VarNamespace     = "namespace"
	VarMode          = "mode"
	VarAgentCount    = "agent_count"
	VarRASNamespace  = "ras_namespace"
	VarRegistrarFQDN = "registrar_fqdn"
	VarVerifierFQDN  = "verifier_fqdn"
	VarOrdinal       = "ordinal"
	VarAgentUUID     = "agent_uuid"
)

// EngineVars lists every variable the engine binds. User values with these
// names are ignored.
var EngineVars = []string{
	VarNamespace,
	VarMode,
	VarAgentCount,
	VarRASNamespace,
	VarRegistrarFQDN,
	VarVerifierFQDN,
	VarOrdinal,
	VarAgentUUID,
}

// Request describes one expansion.
type Request struct {
	// Namespace is the Kubernetes namespace for every manifest.
	Namespace string

	// AgentCount is the number of agent replicas to render.
	AgentCount int

	// Mode selects the control-plane template list.
	Mode Mode

	// RASNamespace is where the registrar and verifier run.
	// Empty means Namespace.
	RASNamespace string

	// Values are extra template variables. Entries named like an engine
	// variable are ignored.
	Values map[string]any
}

// Validate checks the request before any template is touched.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Namespace) == "" {
		return fmt.Errorf("%w: namespace must not be empty", ErrInvalidConfiguration)
	}
	if r.AgentCount < 0 {
		return fmt.Errorf("%w: agent count must not be negative (got %d)", ErrInvalidConfiguration, r.AgentCount)
	}
	if _, err := ParseMode(string(r.Mode)); err != nil {
		return err
	}
	return nil
}

// rasNamespace returns the namespace hosting the registrar and verifier.
func (r Request) rasNamespace() string {
	if r.RASNamespace != "" {
		return r.RASNamespace
	}
	return r.Namespace
}

// ServiceFQDN returns the in-cluster DNS name of a service.
func ServiceFQDN(service, namespace string) string {
	return fmt.Sprintf("%s.%s.svc.cluster.local", service, namespace)
}

// RenderedArtifact is one rendered manifest.
type RenderedArtifact struct {
	// Name is the output file name.
	Name string

	// Content is the rendered document.
	Content []byte

	// Template is the key the artifact was rendered from.
	Template templates.Key

	// Role is the template's role.
	Role templates.Role

	// Ordinal is the agent replica ordinal, or 0 for control-plane artifacts.
	Ordinal int
}

// ArtifactSet is an ordered list of artifacts in generation order.
type ArtifactSet []RenderedArtifact

// Names returns the artifact names in order.
func (s ArtifactSet) Names() []string {
	names := make([]string, len(s))
	for i, a := range s {
		names[i] = a.Name
	}
	return names
}

// ByRole returns the artifacts with the given role, preserving order.
func (s ArtifactSet) ByRole(role templates.Role) ArtifactSet {
	var result ArtifactSet
	for _, a := range s {
		if a.Role == role {
			result = append(result, a)
		}
	}
	return result
}
