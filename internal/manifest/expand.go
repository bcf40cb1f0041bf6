package manifest

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cameronsjo/keylimegen/internal/identity"
	"github.com/cameronsjo/keylimegen/internal/logging"
	"github.com/cameronsjo/keylimegen/internal/templates"
)

// IdentitySource hands out replica identities in ordinal order.
type IdentitySource interface {
	Next(ordinal int) (identity.ReplicaIdentity, error)
}

// Expander turns a template set and a request into an ArtifactSet.
type Expander struct {
	set    *templates.Set
	ids    IdentitySource
	logger *zap.Logger
}

// ExpanderOption is a functional option for configuring the Expander.
type ExpanderOption func(*Expander)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) ExpanderOption {
	return func(e *Expander) {
		e.logger = logging.OrNop(logger)
	}
}

// NewExpander creates an Expander over set. ids must be fresh for each run
// since identities are handed out from ordinal 1.
func NewExpander(set *templates.Set, ids IdentitySource, opts ...ExpanderOption) *Expander {
	e := &Expander{
		set:    set,
		ids:    ids,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ControlPlaneKeys returns the control-plane keys the mode renders, in order.
// Agent-tagged keys are never included. single-cluster takes every
// control-plane key of the set that its index does not restrict to other
// modes.
func (e *Expander) ControlPlaneKeys(mode Mode) []templates.Key {
	var keys []templates.Key
	switch mode {
	case ModeRASCluster:
		keys = RASClusterKeys
	case ModeLBCluster:
		keys = LBClusterKeys
	default:
		var result []templates.Key
		for _, key := range e.set.KeysByRole(templates.RoleControlPlane) {
			if tmpl, err := e.set.Get(key); err == nil && tmpl.AppliesTo(string(mode)) {
				result = append(result, key)
			}
		}
		return result
	}

	result := make([]templates.Key, 0, len(keys))
	for _, key := range keys {
		if tmpl, err := e.set.Get(key); err == nil && tmpl.Role() == templates.RoleAgent {
			continue
		}
		result = append(result, key)
	}
	return result
}

// Expand renders every artifact for req. On error nothing is returned.
func (e *Expander) Expand(req Request) (ArtifactSet, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	controlPlane, err := e.resolve(e.ControlPlaneKeys(req.Mode))
	if err != nil {
		return nil, err
	}

	var agentConfig, agentPod *templates.Template
	if req.AgentCount > 0 {
		agents, err := e.resolve([]templates.Key{AgentConfigKey, AgentPodKey})
		if err != nil {
			return nil, err
		}
		agentConfig, agentPod = agents[0], agents[1]
	}

	base := e.baseBinding(req)
	set := make(ArtifactSet, 0, len(controlPlane)+2*req.AgentCount)

	for _, tmpl := range controlPlane {
		content, err := tmpl.Render(base)
		if err != nil {
			return nil, err
		}
		e.logger.Debug("rendered control-plane template",
			zap.String(logging.FieldTemplate, tmpl.Key()),
			zap.Int("bytes", len(content)),
		)
		set = append(set, RenderedArtifact{
			Name:     tmpl.Key(),
			Content:  content,
			Template: tmpl.Key(),
			Role:     templates.RoleControlPlane,
		})
	}

	for ordinal := 1; ordinal <= req.AgentCount; ordinal++ {
		id, err := e.ids.Next(ordinal)
		if err != nil {
			return nil, fmt.Errorf("assign identity: %w", err)
		}

		cfg, err := e.renderAgent(agentConfig, base.
			With(VarOrdinal, ordinal).
			With(VarAgentUUID, id.ID.String()), ordinal)
		if err != nil {
			return nil, err
		}
		pod, err := e.renderAgent(agentPod, base.With(VarOrdinal, ordinal), ordinal)
		if err != nil {
			return nil, err
		}
		set = append(set, cfg, pod)

		e.logger.Debug("rendered agent replica",
			zap.Int(logging.FieldOrdinal, ordinal),
			zap.String("agent_uuid", id.ID.String()),
		)
	}

	e.logger.Info("expanded manifests",
		zap.String(logging.FieldMode, string(req.Mode)),
		zap.String(logging.FieldNamespace, req.Namespace),
		zap.Int(logging.FieldCount, len(set)),
	)

	return set, nil
}

// resolve looks up every key before anything is rendered.
func (e *Expander) resolve(keys []templates.Key) ([]*templates.Template, error) {
	result := make([]*templates.Template, 0, len(keys))
	for _, key := range keys {
		tmpl, err := e.set.Get(key)
		if err != nil {
			return nil, err
		}
		result = append(result, tmpl)
	}
	return result, nil
}

func (e *Expander) renderAgent(tmpl *templates.Template, b templates.Binding, ordinal int) (RenderedArtifact, error) {
	content, err := tmpl.Render(b)
	if err != nil {
		return RenderedArtifact{}, err
	}
	return RenderedArtifact{
		Name:     AgentArtifactName(tmpl, ordinal),
		Content:  content,
		Template: tmpl.Key(),
		Role:     templates.RoleAgent,
		Ordinal:  ordinal,
	}, nil
}

// AgentArtifactName returns the output name for an agent template replica,
// e.g. agent-config.yaml and 2 give agent-config-2.yaml.
func AgentArtifactName(tmpl *templates.Template, ordinal int) string {
	return fmt.Sprintf("%s-%d%s", tmpl.Stem(), ordinal, tmpl.Ext())
}

// baseBinding overlays the engine variables on the user values. User values
// named like an engine variable are dropped so that per-replica variables
// only exist where the engine binds them.
func (e *Expander) baseBinding(req Request) templates.Binding {
	user := make(map[string]any, len(req.Values))
	for k, v := range req.Values {
		if slices.Contains(EngineVars, k) {
			e.logger.Debug("ignoring value shadowed by engine variable", zap.String("key", k))
			continue
		}
		user[k] = v
	}

	ras := req.rasNamespace()
	vars := templates.DeepMerge(user, map[string]any{
		VarNamespace:     req.Namespace,
		VarMode:          string(req.Mode),
		VarAgentCount:    req.AgentCount,
		VarRASNamespace:  ras,
		VarRegistrarFQDN: ServiceFQDN("registrar", ras),
		VarVerifierFQDN:  ServiceFQDN("verifier", ras),
	})
	return templates.NewBinding(vars)
}
