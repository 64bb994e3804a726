package remote

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/IDSolutions/ramdb/lib/ramdb"
	"github.com/IDSolutions/ramdb/lib/util"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"golang.org/x/net/http2"
)

var Logger = logger.GetLogger("remote")

// ErrClosed is returned by invokers after Close
var ErrClosed = errors.New("remote: invoker closed")

// DefaultTimeout bounds a single POST of the HTTP invoker
const DefaultTimeout = 5 * time.Second

// maxReplySize limits the reply body read from a peer
const maxReplySize = 1 << 20

// InvokerConfig configures an HTTPInvoker
type InvokerConfig struct {
	// Timeout per request, <= 0 uses DefaultTimeout
	Timeout time.Duration
}

// job is one queued exec invocation
type job struct {
	url string
	inv *Invocation
}

// HTTPInvoker sends invocations to the peers of a peer table over cleartext HTTP/2.
type HTTPInvoker struct {
	peers  *Peers
	client *http.Client
	newID  func() string

	queue *util.LockFreeMPSC[job]
	wg    sync.WaitGroup
}

// NewHTTPInvoker creates an invoker and starts its exec worker
func NewHTTPInvoker(peers *Peers, cfg InvokerConfig) *HTTPInvoker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	inv := &HTTPInvoker{
		peers: peers,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http2.Transport{
				// h2c with prior knowledge, the receiver is wrapped with h2c.NewHandler
				AllowHTTP: true,
				DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, network, addr)
				},
			},
		},
		newID: uuid.NewString,
		queue: util.NewLockFreeMPSC[job](),
	}

	inv.wg.Add(1)
	go inv.worker()
	return inv
}

// --------------------------------------------------------------------------
// Interface Methods (docu see ramdb.IRemoteInvoker)
// --------------------------------------------------------------------------

func (h *HTTPInvoker) RemoteExecCall(function string, recipient string, data any) error {
	if h.queue.IsClosed() {
		return ErrClosed
	}
	urls, inv, err := h.prepare(function, recipient, ramdb.ModeCall, data)
	if err != nil {
		return err
	}

	var errs []error
	for _, u := range urls {
		sentCall.Inc()
		if err := h.post(u, inv); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *HTTPInvoker) RemoteExec(function string, recipient string, data any) error {
	urls, inv, err := h.prepare(function, recipient, ramdb.ModeExec, data)
	if err != nil {
		return err
	}

	for _, u := range urls {
		if !h.queue.Push(job{url: u, inv: inv}) {
			return ErrClosed
		}
	}
	return nil
}

// Pending returns the number of queued exec invocations
func (h *HTTPInvoker) Pending() int {
	return h.queue.Len()
}

// Close stops accepting invocations and waits until queued ones are sent
func (h *HTTPInvoker) Close() error {
	h.queue.Close()
	h.wg.Wait()
	h.client.CloseIdleConnections()
	return nil
}

// --------------------------------------------------------------------------
// Internal
// --------------------------------------------------------------------------

func (h *HTTPInvoker) prepare(function, recipient string, mode ramdb.Mode, data any) ([]string, *Invocation, error) {
	urls, err := h.peers.Resolve(recipient)
	if err != nil {
		return nil, nil, err
	}
	inv, err := newInvocation(h.newID(), function, mode, data)
	if err != nil {
		return nil, nil, fmt.Errorf("remote: encode data for %q: %w", function, err)
	}
	return urls, inv, nil
}

func (h *HTTPInvoker) worker() {
	defer h.wg.Done()
	for j := range h.queue.Recv() {
		sentExec.Inc()
		if err := h.post(j.url, j.inv); err != nil {
			Logger.Warningf("exec %s (%s) on %s failed: %v", j.inv.Function, j.inv.ID, j.url, err)
		}
	}
}

// post sends inv to the receiver at base. For call invocations the reply is checked for errors, its result is discarded.
func (h *HTTPInvoker) post(base string, inv *Invocation) error {
	start := time.Now()
	defer sendDuration.UpdateDuration(start)

	body, err := json.Marshal(inv)
	if err != nil {
		return err
	}

	resp, err := h.client.Post(base+InvokePath, "application/json", bytes.NewReader(body))
	if err != nil {
		sendFailed.Inc()
		return fmt.Errorf("remote: post to %s: %w", base, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		sendFailed.Inc()
		return fmt.Errorf("remote: read reply of %s: %w", base, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		sendFailed.Inc()
		var reply Reply
		if json.Unmarshal(raw, &reply) == nil && reply.Err != "" {
			return fmt.Errorf("remote: %s answered %d: %s", base, resp.StatusCode, reply.Err)
		}
		return fmt.Errorf("remote: %s answered %d", base, resp.StatusCode)
	}

	Logger.Debugf("%s %s (%s) delivered to %s", inv.Mode, inv.Function, inv.ID, base)
	return nil
}
