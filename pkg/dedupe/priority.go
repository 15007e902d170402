package dedupe

import "strings"

// DefaultPriority is the priority assigned to sources no rule matches.
const DefaultPriority = 5

// Rule assigns a priority to a source name. A matcher ending in "-" matches
// any source with that prefix; any other matcher matches exactly.
type Rule struct {
	Match    string
	Priority int
}

// PriorityTable ranks sources for canonical selection. Lower priority values
// win. Lookup tries exact rules first, then prefix rules in order, then the
// default.
type PriorityTable struct {
	rules           []Rule
	defaultPriority int
}

// NewPriorityTable creates a table from ordered rules. The first matching
// rule of each phase wins.
func NewPriorityTable(defaultPriority int, rules ...Rule) PriorityTable {
	return PriorityTable{
		rules:           rules,
		defaultPriority: defaultPriority,
	}
}

// DefaultPriorityTable ranks known official operator sources above bundles
// that merely re-ship their CRDs, with bulk imports as the fallback of last
// resort.
func DefaultPriorityTable() PriorityTable {
	return NewPriorityTable(DefaultPriority,
		Rule{Match: "cert-manager", Priority: 1},
		Rule{Match: "external-secrets", Priority: 1},
		Rule{Match: "flux", Priority: 1},
		Rule{Match: "gateway-api", Priority: 1},
		Rule{Match: "prometheus-operator-crds", Priority: 1},
		// Bundles prometheus-operator.
		Rule{Match: "kube-prometheus-stack", Priority: 2},
		Rule{Match: "ack-", Priority: 1},
		Rule{Match: "azure-service-operator", Priority: 1},
		Rule{Match: "config-connector", Priority: 1},
		Rule{Match: "datree", Priority: 10},
	)
}

// Priority returns the priority of the given source name.
func (t PriorityTable) Priority(source string) int {
	for _, r := range t.rules {
		if !strings.HasSuffix(r.Match, "-") && r.Match == source {
			return r.Priority
		}
	}

	for _, r := range t.rules {
		if strings.HasSuffix(r.Match, "-") && strings.HasPrefix(source, r.Match) {
			return r.Priority
		}
	}

	return t.defaultPriority
}
