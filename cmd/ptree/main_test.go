package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.trai.ch/ptree/internal/adapters/cas"
	"go.trai.ch/ptree/internal/adapters/codec"
	"go.trai.ch/ptree/internal/adapters/fs"
	"go.trai.ch/ptree/internal/adapters/telemetry"
	"go.trai.ch/ptree/internal/app"
	"go.trai.ch/ptree/internal/core/domain"
	"go.trai.ch/ptree/internal/core/ports/mocks"
	"go.trai.ch/ptree/internal/engine/merger"
	"go.trai.ch/ptree/internal/engine/scanner"
	"go.trai.ch/ptree/internal/engine/sorter"
	"go.uber.org/mock/gomock"
)

func newProvider(t *testing.T, log *mocks.MockLogger) ComponentProvider {
	t.Helper()

	cfg := domain.DefaultConfig()
	cfg.CacheDir = t.TempDir()

	c, err := codec.New()
	require.NoError(t, err)
	store := cas.NewStore(cfg.CacheSettings(), c)
	s := sorter.New(domain.DefaultSortThreshold, 2)
	tracer := telemetry.NewOTelTracer(noop.NewTracerProvider(), "test")
	engine := scanner.New(fs.NewWalker(s), store, merger.New(s), tracer, log)
	application := app.New(engine, store, log, cfg)

	return func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    application,
			Logger: log,
		}, func() {}, nil
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, newProvider(t, mockLogger))
	assert.Equal(t, 0, exitCode)
}

// TestRun_Scan verifies that a scan writes through the configured output.
func TestRun_Scan(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.txt"), nil, domain.PrivateFilePerm))

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{root, "--root", root, "--color", "never"}, stderr,
		newProvider(t, mockLogger),
		func(a *app.App) { a.WithOutput(stdout, stderr) },
	)

	assert.Equal(t, 0, exitCode)
	assert.Equal(t, root+"\n└── file.txt\n", stdout.String())
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 and logs when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrInvalidOutputFormat)
	})

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"--format", "xml"}, stderr, newProvider(t, mockLogger))

	assert.Equal(t, 1, exitCode)
}
