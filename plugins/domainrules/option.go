package domainrules

import "github.com/netbatch/netbatchd/pkg/batcher"

// WithDomainRules returns a batcher Option that enables hot-reloadable
// domain classification rules. When enabled, the plugin watches the rules
// file named in cfg and pushes updated immediate/deferrable domain lists
// into the classifier whenever it changes.
//
// Usage:
//
//	b, err := batcher.New(cfg,
//	    domainrules.WithDomainRules(domainrules.Config{
//	        Path: "/etc/netbatch/rules.toml",
//	    }),
//	)
func WithDomainRules(cfg Config) batcher.Option {
	plugin := New(cfg)
	return batcher.WithPlugin(plugin)
}
