package cerebro

import (
	"context"
	"sync"
)

// ParamSet is one parameter tuple in an optimization grid. Its shape
// is entirely up to the caller; Cerebro never inspects it directly.
type ParamSet map[string]any

// OptReturn is one parameter tuple's outcome: the finished instances,
// or Err if Run failed for that tuple.
type OptReturn struct {
	Params    ParamSet
	Instances []*Instance
	Err       error
}

// OptRun fans a parameter grid out across maxCPUs goroutines (1 = fully
// serial). build must return a fresh *Cerebro per call — its factories
// are what give each parameter tuple fully isolated data, broker,
// strategy, and analyzer instances, per spec §5's optimization model.
func OptRun(ctx context.Context, maxCPUs int, paramSets []ParamSet, build func(ParamSet) *Cerebro) []OptReturn {
	if maxCPUs < 1 {
		maxCPUs = 1
	}

	results := make([]OptReturn, len(paramSets))
	sem := make(chan struct{}, maxCPUs)
	var wg sync.WaitGroup

	for i, ps := range paramSets {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, ps ParamSet) {
			defer wg.Done()
			defer func() { <-sem }()

			c := build(ps)
			instances, err := c.Run(ctx)
			results[i] = OptReturn{Params: ps, Instances: instances, Err: err}
		}(i, ps)
	}

	wg.Wait()
	return results
}
