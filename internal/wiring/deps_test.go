package wiring_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ptree/internal/app"
	"go.trai.ch/ptree/internal/core/domain"
	_ "go.trai.ch/ptree/internal/wiring"
)

// TestGraftDependencies ensures that the dependency injection graph is valid
// at compile/test time. It checks that every node declaring a dependency
// actually uses it, and every used dependency is declared.
func TestGraftDependencies(t *testing.T) {
	// graft.AssertDepsValid infers the dependency ID from the package name of
	// the interface used in Dep[T]. Since we use `ports.Walker`, `ports.Logger`,
	// etc., it expects a dependency named "ports", which does not fit nodes that
	// implement interfaces from the same `ports` package.
	t.Skip("Skipping Graft validation due to static analysis limitation with shared ports package")
	graft.AssertDepsValid(t, "../../internal")
}

// TestGraftResolvesComponents builds the full graph against an empty environment.
func TestGraftResolvesComponents(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(domain.ConfigEnvVar, filepath.Join(dir, "absent.yaml"))
	t.Setenv(domain.CacheDirEnvVar, filepath.Join(dir, "cache"))

	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)
	require.NotNil(t, components)
	require.NotNil(t, components.App)
	require.NotNil(t, components.Logger)
}
