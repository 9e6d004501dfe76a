// Command meshvault serves the 3D asset browser API.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"meshvault/internal/archive"
	"meshvault/internal/browser"
	"meshvault/internal/config"
	"meshvault/internal/server"
	"meshvault/internal/store"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	rootDir := flag.String("root", "", "Browse root directory (default: home)")
	addr := flag.String("addr", "", "Listen address (default: 127.0.0.1:8437)")
	workers := flag.Int("workers", 0, "Worker goroutines for batch jobs (default: NumCPU)")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		RootDir: *rootDir,
		Addr:    *addr,
		Workers: *workers,
	})

	inspector := archive.NewInspector()
	defer inspector.Cleanup()

	b, err := browser.New(cfg.RootDir, inspector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating cache dir: %v\n", err)
		os.Exit(1)
	}
	history, err := store.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: conversion history disabled: %v\n", err)
		history = nil
	} else {
		defer history.Close()
	}

	srv := server.New(cfg, b, inspector, history)
	httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv}

	// Clean up temp extractions on Ctrl-C.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		srv.Close()
		httpSrv.Close()
	}()

	fmt.Printf("MeshVault\n")
	fmt.Printf("Root: %s\n", cfg.RootDir)
	fmt.Printf("Listening on http://%s\n", cfg.Addr)

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
