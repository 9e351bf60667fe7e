package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/boxprint/boxprint/cmd/boxprint/internal/bind"
	"github.com/boxprint/boxprint/pkg/appctx"
	"github.com/boxprint/boxprint/pkg/config"
	"github.com/boxprint/boxprint/pkg/workspace"
)

// settings returns the merged configuration of the running command.
func settings(ctx context.Context) config.Config {
	if mgr, ok := appctx.Config(ctx); ok {
		return mgr.Get()
	}
	return config.DefaultConfig()
}

// resolveCorpus maps a corpus reference to a file. Bare names resolve inside
// the workspace corpora directory.
func resolveCorpus(ctx context.Context, ref string) string {
	return resolveArtifact(ctx, ref, workspace.Corpora)
}

// resolveResult maps a result reference (file or run id) to a file.
func resolveResult(ctx context.Context, ref string) string {
	return resolveArtifact(ctx, ref, workspace.Results)
}

func resolveArtifact(ctx context.Context, ref, sub string) string {
	if strings.HasSuffix(ref, ".json") || strings.ContainsRune(ref, filepath.Separator) {
		return ref
	}
	if root, ok := workspace.FromContext(ctx); ok {
		return workspace.Path(root, sub, ref+".json")
	}
	return ref + ".json"
}

// artifactName strips directory and extension from an artifact path.
func artifactName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// workspaceDir returns a workspace path, or an error naming flag when the
// workspace is disabled.
func workspaceDir(ctx context.Context, flag string, elem ...string) (string, error) {
	root, ok := workspace.FromContext(ctx)
	if !ok {
		return "", fmt.Errorf("%w: workspace disabled; pass %s", bind.ErrInvalidOption, flag)
	}
	return workspace.Path(root, elem[0], elem[1:]...), nil
}
