package room

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Dealer runs a table
// Every table operation, timer expiry, and scheduled deal runs on the dealer's run loop, one at a time.
type Dealer struct {
	table *Table

	execInRunLoop chan func()
	close         chan bool
}

// NewDealer creates a new dealer for the table
func NewDealer(table *Table) *Dealer {
	d := &Dealer{
		table:         table,
		execInRunLoop: make(chan func(), 256),
		close:         make(chan bool),
	}

	table.enqueue = d.enqueue
	return d
}

// StartShift starts the run loop
func (d *Dealer) StartShift() {
	go d.runLoop()
}

func (d *Dealer) runLoop() {
	log := logrus.WithField("channelID", d.table.ChannelID)

	log.Debug("creating dealer run loop")
	for {
		select {
		case fn := <-d.execInRunLoop:
			fn()
		case <-d.close:
			log.Debug("terminating dealer run loop")
			return
		}

		// a closure may have ended the shift
		select {
		case <-d.close:
			log.Debug("terminating dealer run loop")
			return
		default:
		}
	}
}

// EndShift stops the run loop
// Closures still queued are dropped and anyone waiting on them gets ErrTableClosed.
func (d *Dealer) EndShift() {
	select {
	case <-d.close:
	default:
		close(d.close)
	}
}

// enqueue schedules fn on the run loop without waiting for it
func (d *Dealer) enqueue(fn func()) {
	select {
	case d.execInRunLoop <- fn:
	case <-d.close:
	}
}

// exec runs fn on the run loop and waits for it to finish
func (d *Dealer) exec(ctx context.Context, fn func()) error {
	var started atomic.Bool
	done := make(chan bool)
	task := func() {
		started.Store(true)
		defer close(done)
		fn()
	}

	select {
	case d.execInRunLoop <- task:
	case <-d.close:
		return ErrTableClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-d.close:
		// fn may be the closure that ended the shift
		if started.Load() {
			<-done
			return nil
		}

		return ErrTableClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
