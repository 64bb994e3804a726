package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/IDSolutions/ramdb/lib/ramdb"
	"github.com/IDSolutions/ramdb/lib/sqf"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// maxInvocationSize limits the request body accepted by the receiver
const maxInvocationSize = 64 << 20

// ReceiverConfig configures the receiver
type ReceiverConfig struct {
	// ExecTimeout bounds asynchronous exec invocations, <= 0 means no limit
	ExecTimeout time.Duration
}

type receiver struct {
	registry *Registry
	cfg      ReceiverConfig
}

// NewReceiver returns the handler for POST /invoke. It accepts HTTP/1.1 and cleartext HTTP/2.
func NewReceiver(reg *Registry, cfg ReceiverConfig) http.Handler {
	r := &receiver{registry: reg, cfg: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+InvokePath, r.invoke)
	mux.HandleFunc("GET /functions", r.functions)
	return h2c.NewHandler(mux, &http2.Server{})
}

func (r *receiver) invoke(w http.ResponseWriter, req *http.Request) {
	received.Inc()

	raw, err := io.ReadAll(io.LimitReader(req.Body, maxInvocationSize))
	if err != nil {
		r.fail(w, http.StatusBadRequest, "", err.Error())
		return
	}

	var inv Invocation
	if err := json.Unmarshal(raw, &inv); err != nil {
		r.fail(w, http.StatusBadRequest, "", "invalid invocation: "+err.Error())
		return
	}
	if _, ok := r.registry.Lookup(inv.Function); !ok {
		r.fail(w, http.StatusNotFound, inv.ID, "function not bound: "+inv.Function)
		return
	}

	data, err := sqf.Parse(inv.Data)
	if err != nil {
		r.fail(w, http.StatusBadRequest, inv.ID, "invalid data: "+err.Error())
		return
	}

	if inv.mode() == ramdb.ModeExec {
		go r.exec(inv, data)
		writeReply(w, http.StatusAccepted, Reply{ID: inv.ID})
		return
	}

	result, err := r.registry.Run(req.Context(), inv.Function, data)
	if err != nil {
		r.fail(w, http.StatusInternalServerError, inv.ID, err.Error())
		return
	}

	reply := Reply{ID: inv.ID}
	if result != nil {
		if reply.Result, err = sqf.Format(result); err != nil {
			Logger.Warningf("result of %s (%s) cannot be encoded: %v", inv.Function, inv.ID, err)
		}
	}
	writeReply(w, http.StatusOK, reply)
}

func (r *receiver) exec(inv Invocation, data any) {
	ctx := context.Background()
	if r.cfg.ExecTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.ExecTimeout)
		defer cancel()
	}
	if _, err := r.registry.Run(ctx, inv.Function, data); err != nil {
		receiveFailed.Inc()
		Logger.Warningf("exec %s (%s) failed: %v", inv.Function, inv.ID, err)
	}
}

func (r *receiver) functions(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(r.registry.Names())
}

func (r *receiver) fail(w http.ResponseWriter, status int, id, msg string) {
	receiveFailed.Inc()
	Logger.Debugf("invocation %s rejected: %s", id, msg)
	writeReply(w, status, Reply{ID: id, Err: msg})
}

func writeReply(w http.ResponseWriter, status int, reply Reply) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(reply)
}
