// Package host serializes access to kernel components for hosts that share
// them across goroutines. Kernel components hold no locks; an Actor funnels
// every call through one goroutine so their single-writer contract holds.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("actor closed")

type command struct {
	fn    func() error
	reply chan error
}

// Actor runs submitted closures one at a time, in submission order, on a
// single goroutine.
type Actor struct {
	cmds      chan command
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewActor starts the consumer goroutine. Call Close to stop it.
func NewActor() *Actor {
	a := &Actor{
		cmds: make(chan command),
		done: make(chan struct{}),
	}
	a.wg.Add(1)
	go a.loop()
	return a
}

func (a *Actor) loop() {
	defer a.wg.Done()
	for {
		select {
		case cmd := <-a.cmds:
			cmd.reply <- run(cmd.fn)
		case <-a.done:
			return
		}
	}
}

func run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("actor command panicked: %v", r)
		}
	}()
	return fn()
}

// Do submits fn and waits for its result. If ctx ends before fn is accepted,
// fn never runs. If ctx ends after acceptance, Do returns ctx.Err() but fn
// still runs to completion on the actor goroutine.
func (a *Actor) Do(ctx context.Context, fn func() error) error {
	cmd := command{fn: fn, reply: make(chan error, 1)}
	select {
	case a.cmds <- cmd:
	case <-a.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the actor and waits for the goroutine to exit. A command
// already accepted finishes first. Safe to call more than once.
func (a *Actor) Close() {
	a.closeOnce.Do(func() { close(a.done) })
	a.wg.Wait()
}
