// internal/simulation/simulation.go
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
)

// MaxTargets is the number of targets a Simulation can compare against.
const MaxTargets = 3

// ErrRunning is returned by Run while another run is in progress.
var ErrRunning = errors.New("simulation: run already in progress")

// Evaluator answers whether the query window at a chunk start has an
// approximate match in one target. *compare.Session satisfies it.
type Evaluator interface {
	Evaluate(chunkStart int) bool
	QueryLen() int
	MaxChunkStart() int
}

// Target is a named comparison session.
type Target struct {
	Name    string
	Session Evaluator
}

// Outcome is the result of one sample.
type Outcome struct {
	ChunkStart int
	Matches    [MaxTargets]bool
}

// Category classifies the outcome; absent targets count as no match.
func (o Outcome) Category() Category {
	return Classify(o.Matches[0], o.Matches[1], o.Matches[2])
}

// RunOptions controls Run.
type RunOptions struct {
	Samples        int    // number of samples; <=0 runs until ctx is cancelled
	Workers        int    // worker goroutines; <=0 uses runtime.NumCPU()
	UpdateInterval int    // onUpdate cadence in recorded samples; <=0 only reports at the end
	Seed           uint64 // 0 picks a random seed
}

// Simulation draws random query windows and tallies which targets match.
type Simulation struct {
	targets  []Target
	counters *Counters
	maxStart int
	running  atomic.Bool
}

// New validates that every target shares one query and wires counters.
// A nil counters gets a fresh tally.
func New(targets []Target, counters *Counters) (*Simulation, error) {
	if len(targets) == 0 || len(targets) > MaxTargets {
		return nil, fmt.Errorf("simulation: need 1..%d targets, got %d", MaxTargets, len(targets))
	}
	if counters == nil {
		counters = NewCounters()
	}
	for _, t := range targets {
		if t.Session == nil {
			return nil, fmt.Errorf("simulation: target %q has no session", t.Name)
		}
	}
	qlen := targets[0].Session.QueryLen()
	maxStart := targets[0].Session.MaxChunkStart()
	for _, t := range targets {
		if t.Session.QueryLen() != qlen || t.Session.MaxChunkStart() != maxStart {
			return nil, fmt.Errorf("simulation: target %q was built for a different query", t.Name)
		}
	}
	if maxStart < 0 {
		return nil, fmt.Errorf("simulation: query too short to sample")
	}
	return &Simulation{targets: targets, counters: counters, maxStart: maxStart}, nil
}

// Counters returns the shared tally.
func (s *Simulation) Counters() *Counters { return s.counters }

// TargetNames lists target names in configuration order.
func (s *Simulation) TargetNames() []string {
	names := make([]string, len(s.targets))
	for i, t := range s.targets {
		names[i] = t.Name
	}
	return names
}

// Running reports whether Run is active.
func (s *Simulation) Running() bool { return s.running.Load() }

// Sample draws one chunk start uniformly from [0, MaxChunkStart] and
// evaluates every target at that start. It does not record the outcome.
func (s *Simulation) Sample(rng *rand.Rand) Outcome {
	out := Outcome{ChunkStart: rng.IntN(s.maxStart + 1)}
	for i, t := range s.targets {
		out.Matches[i] = t.Session.Evaluate(out.ChunkStart)
	}
	return out
}

// Step samples once, records the outcome and returns the new state.
// rng must not be shared across goroutines.
func (s *Simulation) Step(rng *rand.Rand) (Outcome, State) {
	out := s.Sample(rng)
	s.counters.Record(out.Category())
	return out, s.counters.Snapshot()
}

// NewRand returns a PCG source for one worker. A zero seed is replaced
// with a random one.
func NewRand(seed, stream uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, stream))
}

// Run fans samples across workers and records every outcome. onUpdate
// (optional) is called from a single goroutine every UpdateInterval
// recorded samples and once more when the run ends. It returns nil when
// all samples were recorded, or ctx's error if cancelled first.
func (s *Simulation) Run(ctx context.Context, o RunOptions, onUpdate func(State)) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer s.running.Store(false)

	workers := o.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if o.Samples > 0 && workers > o.Samples {
		workers = o.Samples
	}
	seed := o.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var issued atomic.Int64
	results := make(chan Outcome, workers*2)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(stream uint64) {
			defer wg.Done()
			rng := NewRand(seed, stream)
			for {
				if wctx.Err() != nil {
					return
				}
				if o.Samples > 0 && issued.Add(1) > int64(o.Samples) {
					return
				}
				out := s.Sample(rng)
				select {
				case results <- out:
				case <-wctx.Done():
					return
				}
			}
		}(uint64(w))
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	recorded := 0
	for out := range results {
		s.counters.Record(out.Category())
		recorded++
		if onUpdate != nil && o.UpdateInterval > 0 && recorded%o.UpdateInterval == 0 {
			onUpdate(s.counters.Snapshot())
		}
	}
	if onUpdate != nil && (o.UpdateInterval <= 0 || recorded%o.UpdateInterval != 0) {
		onUpdate(s.counters.Snapshot())
	}

	if o.Samples > 0 && recorded >= o.Samples {
		return nil
	}
	return ctx.Err()
}
