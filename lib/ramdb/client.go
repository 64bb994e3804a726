package ramdb

import (
	"errors"
	"fmt"
	"sync"

	"github.com/IDSolutions/ramdb/lib/gate"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("ramdb")

// Client runs the database access protocol against an extension:
// build the request, call the extension inside the gate, classify and report
// the response, release the gate and dispatch the data.
type Client struct {
	ext        IExtension
	gate       gate.IGate
	dispatcher *Dispatcher
	diag       IDiagnostics

	mu       sync.Mutex // guards callback and held
	callback CallbackFunc
	held     *[]heldFrame // non-nil while a call of this client is in flight
}

// heldFrame is a callback frame emitted during a call, replayed after the gate is released
type heldFrame struct {
	name, function, data string
}

// NewClient creates a client that serializes its calls through gate.Default.
// invoker may be nil when no remote targets are used. A nil diag logs to the
// "ramdb" logger.
func NewClient(ext IExtension, invoker IRemoteInvoker, diag IDiagnostics) *Client {
	return NewClientWithGate(ext, invoker, diag, gate.Default)
}

// NewClientWithGate is like NewClient but uses g instead of the process wide gate.
func NewClientWithGate(ext IExtension, invoker IRemoteInvoker, diag IDiagnostics, g gate.IGate) *Client {
	if diag == nil {
		diag = NewLoggerDiagnostics("ramdb")
	}
	return &Client{
		ext:        ext,
		gate:       g,
		dispatcher: NewDispatcher(invoker),
		diag:       diag,
	}
}

// Dispatcher returns the dispatcher the client forwards data with.
func (c *Client) Dispatcher() *Dispatcher {
	return c.dispatcher
}

// RegisterCallback registers cb with the extension if it emits callback frames
// and reports whether it does. Frames emitted during a call of this client are
// held back and passed to cb after the gate is released, so cb may dispatch
// remotely or fetch again. Frames arriving outside a call are passed on directly.
func (c *Client) RegisterCallback(cb CallbackFunc) bool {
	src, ok := c.ext.(ICallbackSource)
	if !ok {
		return false
	}

	c.mu.Lock()
	c.callback = cb
	c.mu.Unlock()

	src.RegisterCallback(func(name, function, data string) {
		c.mu.Lock()
		if c.held != nil {
			*c.held = append(*c.held, heldFrame{name: name, function: function, data: data})
			c.mu.Unlock()
			return
		}
		cb := c.callback
		c.mu.Unlock()
		cb(name, function, data)
	})
	return true
}

// call invokes the extension and collects the frames it emits into frames.
// It must run inside the gate.
func (c *Client) call(function string, args []string, frames *[]heldFrame) ([]string, error) {
	c.mu.Lock()
	c.held = frames
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.held = nil
		c.mu.Unlock()
	}()
	return c.ext.Call(function, args)
}

// replay passes held frames to the registered callback in emission order
func (c *Client) replay(frames []heldFrame) {
	if len(frames) == 0 {
		return
	}
	c.mu.Lock()
	cb := c.callback
	c.mu.Unlock()

	for _, f := range frames {
		cb(f.name, f.function, f.data)
	}
}

// Fetch performs req and returns the decoded data.
//
// NotFound and Chunked outcomes return an empty []any and no error. If
// req.Target has a recipient the data is forwarded and Fetch returns nil.
// A chunked response is never forwarded here, the chunk assembler delivers it
// once all chunks arrived.
//
// Callback frames emitted by the call are handed to the registered callback
// after the gate is released and before Fetch returns.
//
// Errors match ErrChannelUnavailable or ErrDecodeFailure. The gate is
// released before Fetch returns in every case.
func (c *Client) Fetch(req Request) (any, error) {
	var out Outcome
	var frames []heldFrame

	err := c.gate.Do(func() error {
		resp, err := c.call(req.Operation, req.Args(), &frames)
		if err != nil {
			return Unavailable(err)
		}
		if out, err = Classify(resp); err != nil {
			return err
		}
		report(c.diag, req.Operation, req.Key, out)
		return nil
	})
	c.replay(frames)
	if err != nil {
		if errors.Is(err, ErrDecodeFailure) {
			fetchDecode.Inc()
		} else {
			fetchUnavailable.Inc()
		}
		log.Warningf("fetch %s '%s' failed: %v", req.Operation, req.Key, err)
		return nil, fmt.Errorf("ramdb: fetch %s %q: %w", req.Operation, req.Key, err)
	}
	countOutcome(out.Kind)

	if out.Kind == KindChunked && req.Target.Remote() {
		return nil, nil
	}
	return c.dispatcher.Dispatch(out.Data, req.Target)
}

// Call issues a raw extension call through the gate and returns the response
// unclassified. It is used for write operations whose result is a status.
func (c *Client) Call(function string, args []string) ([]string, error) {
	var resp []string
	var frames []heldFrame
	err := c.gate.Do(func() error {
		var err error
		if resp, err = c.call(function, args, &frames); err != nil {
			return Unavailable(err)
		}
		return nil
	})
	c.replay(frames)
	if err != nil {
		fetchUnavailable.Inc()
		return nil, fmt.Errorf("ramdb: call %s: %w", function, err)
	}
	return resp, nil
}
