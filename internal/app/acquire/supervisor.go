package acquire

import (
	"context"
	"errors"
	"sync"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/ports"
)

// ErrAllConnectionsFailed is returned when every acquisition loop terminated
// with an error before shutdown was requested.
var ErrAllConnectionsFailed = errors.New("all connections failed")

// Supervisor runs one acquisition loop per configured connection and waits
// for all of them to terminate. Connections are fully independent: one
// loop's failure never halts or restarts another.
type Supervisor struct {
	loops []*Loop
	obs   ports.Observability
}

func NewSupervisor(loops []*Loop, obs ports.Observability) *Supervisor {
	return &Supervisor{loops: loops, obs: obs}
}

// Run blocks until every loop has reached Terminated. It returns
// ErrAllConnectionsFailed (wrapping the per-connection errors) only when
// every loop failed on its own while ctx was still live; individual
// failures are reported through observability and swallowed here.
func (s *Supervisor) Run(ctx context.Context) error {
	errs := make([]error, len(s.loops))

	var wg sync.WaitGroup
	for i, loop := range s.loops {
		wg.Add(1)
		go func(i int, loop *Loop) {
			defer wg.Done()
			errs[i] = loop.Run(ctx)
		}(i, loop)
	}
	wg.Wait()

	s.obs.LogInfo("all acquisition loops terminated",
		ports.Field{Key: "connections", Value: len(s.loops)})

	if ctx.Err() != nil {
		return nil
	}
	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if len(s.loops) > 0 && failed == len(s.loops) {
		return errors.Join(append([]error{ErrAllConnectionsFailed}, errs...)...)
	}
	return nil
}
