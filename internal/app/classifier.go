package app

import (
	"strings"
	"sync"

	"github.com/netbatch/netbatchd/internal/domain"
)

// Classifier maps a URL to a priority class using host substring rules.
// immediate_domains and deferrable_domains are held as a snapshot so a
// live rule update (see plugins/domainrules) can swap them out without
// locking out concurrent classification.
type Classifier struct {
	mu                sync.RWMutex
	immediateDomains  []string
	deferrableDomains []string
}

// NewClassifier creates a Classifier seeded from cfg's domain lists.
func NewClassifier(cfg domain.Configuration) *Classifier {
	c := &Classifier{}
	c.SetRules(cfg.ImmediateDomains, cfg.DeferrableDomains)
	return c
}

// SetRules atomically replaces the classification rules.
func (c *Classifier) SetRules(immediateDomains, deferrableDomains []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.immediateDomains = lowercaseAll(immediateDomains)
	c.deferrableDomains = lowercaseAll(deferrableDomains)
}

// Classify returns immediate, deferrable, or soon for rawURL. bulk is
// never inferred; callers must request it explicitly.
func (c *Classifier) Classify(rawURL string) domain.Priority {
	host := domain.HostOf(rawURL)

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, d := range c.immediateDomains {
		if strings.Contains(host, d) {
			return domain.PriorityImmediate
		}
	}
	for _, d := range c.deferrableDomains {
		if strings.Contains(host, d) {
			return domain.PriorityDeferrable
		}
	}
	return domain.PrioritySoon
}

func lowercaseAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
