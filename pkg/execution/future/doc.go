/*
Package future provides a write-once result channel split into a Promise
(producer half) and a Future (consumer half).

A pair shares a single cell that moves from pending to exactly one terminal
outcome, a value or an error. Setting an outcome twice is a programming error
and is reported as ErrAlreadySatisfied; the first outcome always wins.

Basic usage:

	p, f := future.New[int]()

	go func() {
		n, err := compute()
		if err != nil {
			p.Fail(err)
			return
		}
		p.Complete(n)
	}()

	n, err := f.Get(ctx)

Consumers can block, poll, or wait with a timeout:

	if f.Wait(100 * time.Millisecond) {
		n, err, _ := f.Poll()
		...
	}

	select {
	case <-f.Done():
		...
	case <-other:
		...
	}

Multiple goroutines may hold the same Future and read it independently;
reading never consumes the result.

A promise owner that can no longer produce an outcome must call Abandon,
which resolves the cell with ErrBrokenPromise so waiters are released rather
than blocked forever. Abandon on a resolved cell is a no-op, so the usual
pattern is to defer it:

	p, f := future.New[string]()
	defer p.Abandon()

Join waits for a batch of futures of the same type, failing fast on the
first error.
*/
package future
