package climate

import (
	"context"
	"sync"
)

type fetchFunc func(ctx context.Context, d Device) (FetchResult, error)

type fetchOutcome struct {
	res FetchResult
	err error
}

// forEachDevice fetches every device and calls fold with each outcome in
// device order. With more than one worker the fetches overlap but fold
// still runs on the calling goroutine in list order, so tie-breaks match a
// sequential run.
func (s *Service) forEachDevice(ctx context.Context, devices []Device, fetch fetchFunc, fold func(Device, FetchResult, error)) {
	if s.opts.Workers <= 1 {
		for _, d := range devices {
			res, err := s.fetchOne(ctx, d, fetch)
			fold(d, res, err)
		}
		return
	}

	ready := make([]chan fetchOutcome, len(devices))
	for i := range ready {
		ready[i] = make(chan fetchOutcome, 1)
	}

	sem := make(chan struct{}, s.opts.Workers)
	var wg sync.WaitGroup
	go func() {
		for i, d := range devices {
			sem <- struct{}{}
			wg.Add(1)
			go func(i int, d Device) {
				defer wg.Done()
				defer func() { <-sem }()
				res, err := s.fetchOne(ctx, d, fetch)
				ready[i] <- fetchOutcome{res: res, err: err}
			}(i, d)
		}
	}()

	for i, d := range devices {
		out := <-ready[i]
		fold(d, out.res, out.err)
	}
	wg.Wait()
}

// fetchOne applies the per-call timeout; a timeout is an ordinary failure.
func (s *Service) fetchOne(ctx context.Context, d Device, fetch fetchFunc) (FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return FetchResult{}, err
	}
	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}
	return fetch(ctx, d)
}
