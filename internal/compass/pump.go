// ABOUTME: Channel pump feeding orientation samples into a Fusion
// ABOUTME: Used by hosts that deliver sensor events on a channel instead of callbacks

package compass

import (
	"context"
	"sync"
)

// Pump reads samples from a channel in its own goroutine.
type Pump struct {
	fusion   *Fusion
	onUpdate func(State)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPump creates a pump. onUpdate runs on the pump goroutine for every
// sample that changed the state.
func NewPump(f *Fusion, onUpdate func(State)) *Pump {
	return &Pump{fusion: f, onUpdate: onUpdate}
}

// Start begins reading samples until ctx is done, samples is closed, or
// Stop is called.
func (p *Pump) Start(ctx context.Context, samples <-chan Orientation) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(ctx, samples)
	}()
}

func (p *Pump) run(ctx context.Context, samples <-chan Orientation) {
	for {
		select {
		case <-ctx.Done():
			return
		case o, ok := <-samples:
			if !ok {
				return
			}
			if st, changed := p.fusion.Update(o); changed && p.onUpdate != nil {
				p.onUpdate(st)
			}
		}
	}
}

// Stop ends the pump and waits for its goroutine to exit.
func (p *Pump) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// Wait blocks until the pump goroutine exits on its own.
func (p *Pump) Wait() {
	p.wg.Wait()
}
