package renderer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	raytracer  *Raytracer
	numWorkers int
}

// Worker handles individual tile rendering tasks
type Worker struct {
	raytracer *Raytracer
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(raytracer *Raytracer, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{raytracer: raytracer, numWorkers: numWorkers}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run renders all tiles into sink and returns the merged stats. Tiles must
// come from NewTileGrid so IDs index the result slice. Tiles have
// non-overlapping bounds, so workers write to the sink without locking.
// Stats are merged in tile order so results do not depend on scheduling.
func (wp *WorkerPool) Run(ctx context.Context, tiles []*Tile, sink PixelSink) (RenderStats, error) {
	g, ctx := errgroup.WithContext(ctx)
	taskQueue := make(chan *Tile)
	results := make([]RenderStats, len(tiles))

	g.Go(func() error {
		defer close(taskQueue)
		for _, tile := range tiles {
			select {
			case taskQueue <- tile:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < wp.numWorkers; i++ {
		worker := &Worker{raytracer: wp.raytracer}
		g.Go(func() error {
			return worker.run(ctx, taskQueue, sink, results)
		})
	}

	if err := g.Wait(); err != nil {
		return RenderStats{}, err
	}

	stats := NewRenderStats()
	for _, result := range results {
		stats.Merge(result)
	}
	return stats, nil
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context, taskQueue <-chan *Tile, sink PixelSink, results []RenderStats) error {
	for tile := range taskQueue {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Each tile index is written by exactly one worker
		results[tile.ID] = w.raytracer.RenderBounds(tile.Bounds, sink)
	}
	return nil
}
