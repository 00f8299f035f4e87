package batch

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"Rodcalc/internal/calc/valve"
)

type Item struct {
	Name  string      `json:"name"`
	Input valve.Input `json:"input"`
}

type Input struct {
	Items []Item `json:"items"`
}

// Result of one item. Error is set instead of Output when the item failed.
type Result struct {
	Name   string        `json:"name"`
	Output *valve.Output `json:"output,omitempty"`
	Error  string        `json:"error,omitempty"`
}

var ErrNoItems = errors.New("no items")

// Run calculates the items on up to workers goroutines. A failing item does
// not stop the others; results keep the order of the items.
func Run(ctx context.Context, n *valve.Network, items []Item, workers int) ([]Result, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(items))
	calc := valve.Calculate
	if n != nil {
		calc = n.Calculate
	}

	out := make([]Result, len(items))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := Result{Name: items[i].Name}
				o, err := calc(items[i].Input)
				if err != nil {
					res.Error = err.Error()
				} else {
					res.Output = &o
				}
				out[i] = res
			}
		}()
	}

	var err error
feed:
	for i := range items {
		select {
		case jobs <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Failed counts the items that returned an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Error != "" {
			n++
		}
	}
	return n
}
