// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/ptree/internal/adapters/cas"
	_ "go.trai.ch/ptree/internal/adapters/codec"
	_ "go.trai.ch/ptree/internal/adapters/config"
	_ "go.trai.ch/ptree/internal/adapters/fs"
	_ "go.trai.ch/ptree/internal/adapters/logger"
	_ "go.trai.ch/ptree/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/ptree/internal/app"
	_ "go.trai.ch/ptree/internal/engine/merger"
	_ "go.trai.ch/ptree/internal/engine/scanner"
	_ "go.trai.ch/ptree/internal/engine/sorter"
)
