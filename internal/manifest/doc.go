// Package manifest expands the Keylime template set into deployment manifests.
//
// An expansion takes a namespace, an agent replica count and a cluster mode
// and produces an ordered ArtifactSet:
//
//   - Control-plane templates are rendered once, in the mode's key order.
//   - Agent templates are rendered once per replica, grouped by ordinal,
//     config before pod.
//
// # Modes
//
//	single-cluster  every control-plane template in the set, plus agents
//	ras-cluster     registrar, verifier, tenant and database only
//	lb-cluster      namespace and the agent load balancer, plus agents
//
// # Variables
//
// Every render sees the user-supplied values overlaid with the engine
// variables namespace, mode, agent_count, ras_namespace, registrar_fqdn and
// verifier_fqdn. Agent configs additionally see ordinal and agent_uuid;
// agent pods see ordinal only.
package manifest
