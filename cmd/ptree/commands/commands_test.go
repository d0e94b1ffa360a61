package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ptree/cmd/ptree/commands"
	"go.trai.ch/ptree/internal/app"
	"go.trai.ch/ptree/internal/build"
	"go.trai.ch/ptree/internal/core/domain"
)

type mockApp struct {
	runFunc   func(ctx context.Context, opts app.RunOptions) error
	cleanFunc func(ctx context.Context) error
}

func (m *mockApp) Run(ctx context.Context, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Clean(ctx context.Context) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx)
	}
	return nil
}

func TestCommands_Scan(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, ".", captured.Target)
		assert.Equal(t, "tree", captured.Format)
		assert.Equal(t, "auto", captured.Color)
		assert.Equal(t, domain.Unlimited, captured.MaxDepth)
		assert.Empty(t, captured.Skip)
		assert.Empty(t, captured.Root)
		assert.Empty(t, captured.LogFormat)
		assert.Zero(t, captured.Threads)
		assert.Zero(t, captured.TTL)
		assert.False(t, captured.Force)
	})

	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{
			"/srv/data",
			"-f", "-q", "-a", "-v",
			"--format", "json",
			"--color", "never",
			"-m", "3",
			"-s", "node_modules,*.tmp",
			"--skip", "vendor",
			"--hidden",
			"-j", "6",
			"--ttl", "30m",
			"--root", "/srv",
			"--size",
			"--debug",
			"--log-format", "json",
		})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, app.RunOptions{
			Target:    "/srv/data",
			Root:      "/srv",
			Force:     true,
			Quiet:     true,
			Hidden:    true,
			Admin:     true,
			ShowSize:  true,
			Debug:     true,
			Verbose:   true,
			Format:    "json",
			Color:     "never",
			LogFormat: "json",
			MaxDepth:  3,
			Skip:      []string{"node_modules", "*.tmp", "vendor"},
			Threads:   6,
			TTL:       30 * time.Minute,
		}, captured)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"."})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("rejects more than one path", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) error {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"a", "b"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Clean(t *testing.T) {
	called := false
	mock := &mockApp{
		runFunc: func(_ context.Context, _ app.RunOptions) error {
			panic("should not be called")
		},
		cleanFunc: func(_ context.Context) error {
			called = true
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"clean"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, called)
}

func TestCommands_Version(t *testing.T) {
	mock := &mockApp{}
	cli := commands.New(mock)

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ptree version "+build.Version+" (commit: "+build.Commit+", date: "+build.Date+")\n", buf.String())
}

func TestCommands_VersionFlag(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"--version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), build.Version)
	assert.Contains(t, buf.String(), build.Commit)
}
