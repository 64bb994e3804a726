package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/IDSolutions/ramdb/lib/util"
)

// localJob is one queued exec invocation of the LocalInvoker
type localJob struct {
	function string
	data     any
}

// LocalInvoker runs registry functions in the current process. The recipient is ignored.
type LocalInvoker struct {
	registry *Registry
	queue    *util.LockFreeMPSC[localJob]
	wg       sync.WaitGroup
}

// NewLocalInvoker creates an invoker for reg and starts its exec worker
func NewLocalInvoker(reg *Registry) *LocalInvoker {
	l := &LocalInvoker{registry: reg, queue: util.NewLockFreeMPSC[localJob]()}
	l.wg.Add(1)
	go l.worker()
	return l
}

// --------------------------------------------------------------------------
// Interface Methods (docu see ramdb.IRemoteInvoker)
// --------------------------------------------------------------------------

func (l *LocalInvoker) RemoteExecCall(function string, _ string, data any) error {
	if l.queue.IsClosed() {
		return ErrClosed
	}
	_, err := l.registry.Run(context.Background(), function, data)
	return err
}

func (l *LocalInvoker) RemoteExec(function string, _ string, data any) error {
	if _, ok := l.registry.Lookup(function); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFunction, function)
	}
	if !l.queue.Push(localJob{function: function, data: data}) {
		return ErrClosed
	}
	return nil
}

// Close stops accepting invocations and waits for queued ones
func (l *LocalInvoker) Close() {
	l.queue.Close()
	l.wg.Wait()
}

func (l *LocalInvoker) worker() {
	defer l.wg.Done()
	for j := range l.queue.Recv() {
		if _, err := l.registry.Run(context.Background(), j.function, j.data); err != nil {
			Logger.Warningf("exec %s failed: %v", j.function, err)
		}
	}
}
