// swarmsh - interactive shell for swarm agent orchestration.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/jeranaias/swarmsh/internal/commands"
	"github.com/jeranaias/swarmsh/internal/config"
	"github.com/jeranaias/swarmsh/internal/logging"
	"github.com/jeranaias/swarmsh/internal/memory"
	"github.com/jeranaias/swarmsh/internal/orchestrator"
	"github.com/jeranaias/swarmsh/internal/shell"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Printf("swarmsh %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		default:
			fmt.Fprintf(os.Stderr, "swarmsh: unknown argument %q\n\n", os.Args[1])
			printUsage()
			os.Exit(1)
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: swarmsh [version|help]")
	fmt.Println()
	fmt.Println("Running with no arguments starts the interactive shell.")
	fmt.Println("Inside the shell, type 'help' for the command list.")
}

// run wires the configuration, logger, memory bank, orchestrator, and
// shell together and drives the interactive session. Only startup
// failures exit non-zero; command failures inside the shell do not.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}

	logPath, err := cfg.LogFilePath()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{
		Level:       logging.ParseLevel(cfg.Logging.Level),
		Format:      logging.Format(cfg.Logging.Format),
		Destination: logging.Destination(cfg.Logging.Destination),
		FilePath:    logPath,
		MaxFileSize: cfg.Logging.MaxFileSize,
		MaxFiles:    cfg.Logging.MaxFiles,
	})
	if err != nil {
		return err
	}
	defer logger.Close()
	logger.Info("swarmsh starting", map[string]any{"version": Version})

	memPath, err := cfg.MemoryPath()
	if err != nil {
		return err
	}
	bank, err := memory.Open(memPath)
	if err != nil {
		return err
	}
	defer bank.Close()

	manager := orchestrator.NewManager(logger)
	registry := commands.NewRegistry(logger)
	orchestrator.RegisterCommands(registry, manager, bank, cfg)

	// Hot-reload logging settings when the config file changes.
	if tomlPath, err := config.ConfigPathTOML(); err == nil {
		watcher, err := config.NewWatcher(tomlPath, logger, func(next *config.Config) {
			nextPath, err := next.LogFilePath()
			if err != nil {
				return
			}
			_ = logger.Configure(logging.Config{
				Level:       logging.ParseLevel(next.Logging.Level),
				Format:      logging.Format(next.Logging.Format),
				Destination: logging.Destination(next.Logging.Destination),
				FilePath:    nextPath,
				MaxFileSize: next.Logging.MaxFileSize,
				MaxFiles:    next.Logging.MaxFiles,
			})
		})
		if err == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	if !shell.IsTTY() {
		return fmt.Errorf("stdin is not a terminal; swarmsh is interactive")
	}

	historyPath, err := cfg.HistoryFilePath()
	if err != nil {
		return err
	}
	sh := shell.New(cfg, logger, registry, manager, historyPath, Version)
	return sh.Run()
}
