package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hylla/todo/internal/adapters/storage/jsonfile"
	"github.com/hylla/todo/internal/adapters/storage/sqlite"
	"github.com/hylla/todo/internal/app"
	"github.com/hylla/todo/internal/config"
	"github.com/hylla/todo/internal/platform"
)

// runtimeResolution captures paths and config resolved from flags, env, and disk.
type runtimeResolution struct {
	appName    string
	paths      platform.Paths
	configPath string
	cfg        config.Config
	backend    config.Backend
	storePath  string
}

// resolveRuntime applies flag > env > config file > default precedence.
func resolveRuntime(opts *rootOptions) (runtimeResolution, error) {
	appName := strings.TrimSpace(opts.appName)
	if appName == "" {
		appName = "todo"
	}
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return runtimeResolution{}, err
	}

	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TODO_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dataPath := strings.TrimSpace(opts.dataPath)
	if dataPath == "" {
		dataPath = strings.TrimSpace(os.Getenv("TODO_DATA_PATH"))
	}

	cfg, err := config.Load(configPath, config.Default())
	if err != nil {
		return runtimeResolution{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dataPath != "" {
		cfg.Storage.Path = dataPath
	}
	switch {
	case opts.ephemeral:
		cfg.Storage.Backend = config.BackendNone
	case strings.TrimSpace(opts.backend) != "":
		cfg.Storage.Backend = config.Backend(strings.ToLower(strings.TrimSpace(opts.backend)))
	}
	if err := cfg.Validate(); err != nil {
		return runtimeResolution{}, err
	}

	return runtimeResolution{
		appName:    appName,
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		backend:    cfg.Storage.Backend,
		storePath:  cfg.StoragePath(paths.JSONPath, paths.DBPath),
	}, nil
}

// session bundles the logger and store opened for one command run.
type session struct {
	runtimeResolution
	logger     *runtimeLogger
	store      app.Store
	closeStore func() error
	stderr     io.Writer
}

// openSession resolves runtime state, configures logging, and opens the store.
func openSession(opts *rootOptions, stderr io.Writer) (*session, error) {
	res, err := resolveRuntime(opts)
	if err != nil {
		return nil, err
	}
	logger, err := newRuntimeLogger(stderr, res.appName, opts.devMode, res.cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.Debug("runtime paths resolved", "config_path", res.configPath, "data_dir", res.paths.DataDir, "store_path", res.storePath)
	logger.Info("configuration loaded", "config_path", res.configPath, "backend", res.backend, "log_level", res.cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	store, closeStore, err := openStore(res.backend, res.storePath, logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	return &session{
		runtimeResolution: res,
		logger:            logger,
		store:             store,
		closeStore:        closeStore,
		stderr:            stderr,
	}, nil
}

// Close releases the store and the optional dev-file sink.
func (s *session) Close() {
	if s == nil {
		return
	}
	if s.closeStore != nil {
		if err := s.closeStore(); err != nil {
			s.logger.Warn("store close failed", "backend", s.backend, "path", s.storePath, "err", err)
		}
	}
	if err := s.logger.Close(); err != nil && s.logger.shouldLogToSink(s.logger.consoleSink) {
		// Keep TUI shutdown quiet on the terminal when console logging is intentionally muted.
		_, _ = fmt.Fprintf(s.stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// openStore opens the app.Store for backend. BackendNone returns a nil store.
func openStore(backend config.Backend, path string, logger app.Logger) (app.Store, func() error, error) {
	switch backend {
	case config.BackendNone:
		logger.Info("persistence disabled", "backend", backend)
		return nil, nil, nil
	case config.BackendSQLite:
		logger.Info("opening sqlite repository", "db_path", path)
		repo, err := sqlite.Open(path)
		if err != nil {
			logger.Error("sqlite open failed", "db_path", path, "err", err)
			return nil, nil, fmt.Errorf("open sqlite repository: %w", err)
		}
		return repo, repo.Close, nil
	default:
		store, err := jsonfile.New(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open json store: %w", err)
		}
		logger.Info("json store ready", "path", store.Path())
		return store, nil, nil
	}
}
