package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/pkg/qmon"
)

func main() {
	cfg, err := qmon.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	rt, err := qmon.NewRuntime(cfg)
	if err != nil {
		log.Fatalf("init runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("runtime exited: %v", err)
	}
}
