// Package appctx carries process-wide collaborators on a context.
package appctx

import (
	"context"

	"github.com/boxprint/boxprint/pkg/config"
	"github.com/boxprint/boxprint/pkg/taxonomy"
)

type key string

const (
	configKey   key = "boxprint.config.manager"
	taxonomyKey key = "boxprint.taxonomy"
)

// WithConfig stores the shared config manager on context.
func WithConfig(ctx context.Context, manager *config.Manager) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey, manager)
}

// Config retrieves the shared config manager from context.
func Config(ctx context.Context) (*config.Manager, bool) {
	if ctx == nil {
		return nil, false
	}
	mgr, ok := ctx.Value(configKey).(*config.Manager)
	return mgr, ok && mgr != nil
}

// WithTaxonomy stores the loaded taxonomy on context.
func WithTaxonomy(ctx context.Context, tax *taxonomy.Taxonomy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, taxonomyKey, tax)
}

// Taxonomy retrieves the taxonomy from context, falling back to the embedded one.
func Taxonomy(ctx context.Context) *taxonomy.Taxonomy {
	if ctx != nil {
		if tax, ok := ctx.Value(taxonomyKey).(*taxonomy.Taxonomy); ok && tax != nil {
			return tax
		}
	}
	return taxonomy.Default()
}
