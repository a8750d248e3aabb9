// Runs the pipeline against a simulated transport and prints every archived
// batch through a callback sink instead of a database.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/adapters/simulated"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/pkg/qmon"
)

func main() {
	cfg, err := qmon.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	transport := &simulated.Transport{
		Sensors: []simulated.Sensor{
			{ID: "TEMP", Min: 18, Max: 30},
			{ID: "PH", Min: 6.5, Max: 8.0},
		},
		MaxReads: 50,
	}

	sink := qmon.NewCallbackSink("stdout", func(batch []qmon.Reading) error {
		for _, r := range batch {
			fmt.Printf("%s conn=%s sensor=%s value=%.2f\n",
				r.Timestamp.Format(time.RFC3339Nano),
				r.ConnectionID,
				r.SensorID,
				r.Value,
			)
		}
		return nil
	})

	rt, err := qmon.NewRuntime(cfg,
		qmon.WithTransport(transport),
		qmon.WithArchiveSink(sink),
	)
	if err != nil {
		log.Fatalf("init runtime: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}
