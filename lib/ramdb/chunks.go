package ramdb

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/IDSolutions/ramdb/lib/sqf"
	"github.com/IDSolutions/ramdb/lib/util"
	"github.com/puzpuzpuz/xsync/v3"
)

// Callback identifiers of chunk frames.
const (
	CallbackName     = "ArmaRAMDb"
	CallbackFunction = "ramdb_db_fnc_fetch"
)

// DefaultTransferTTL is how long an incomplete transfer is kept after its last frame.
const DefaultTransferTTL = 2 * time.Minute

// ErrBadFrame is returned for chunk frames that do not have the expected shape.
var ErrBadFrame = errors.New("ramdb: malformed chunk frame")

// --------------------------------------------------------------------------
// Frame
// --------------------------------------------------------------------------

// Frame is one chunk of a payload that exceeded the extension output buffer.
//
// On the wire a frame is the literal
//
//	["<id>", "<function>", <index>, <total>, "<chunk>", <call>, "<entity>"]
//
// with a 1-based index.
type Frame struct {
	ID       string
	Function string
	Index    int
	Total    int
	Chunk    string
	Call     bool
	Entity   string
}

// Mode returns the dispatch mode requested by the frame.
func (f Frame) Mode() Mode {
	if f.Call {
		return ModeCall
	}
	return ModeExec
}

// String renders the frame in wire format.
func (f Frame) String() string {
	return fmt.Sprintf("[%s, %s, %d, %d, %s, %t, %s]",
		sqf.Quote(f.ID), sqf.Quote(f.Function), f.Index, f.Total, sqf.Quote(f.Chunk), f.Call, sqf.Quote(f.Entity))
}

// ParseFrame decodes a frame from its wire format.
func ParseFrame(data string) (Frame, error) {
	arr, err := sqf.ParseArray(data)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrBadFrame, err)
	}
	if len(arr) != 7 {
		return Frame{}, fmt.Errorf("%w: expected 7 elements, got %d", ErrBadFrame, len(arr))
	}

	var f Frame
	var ok [7]bool
	f.ID, ok[0] = arr[0].(string)
	f.Function, ok[1] = arr[1].(string)
	index, ok2 := arr[2].(float64)
	total, ok3 := arr[3].(float64)
	ok[2], ok[3] = ok2, ok3
	f.Chunk, ok[4] = arr[4].(string)
	f.Call, ok[5] = arr[5].(bool)
	f.Entity, ok[6] = arr[6].(string)
	for i, good := range ok {
		if !good {
			return Frame{}, fmt.Errorf("%w: element %d has type %s", ErrBadFrame, i, sqf.TypeName(arr[i]))
		}
	}

	f.Index, f.Total = int(index), int(total)
	if f.ID == "" || f.Total < 1 || f.Index < 1 || f.Index > f.Total {
		return Frame{}, fmt.Errorf("%w: id %q chunk %d of %d", ErrBadFrame, f.ID, f.Index, f.Total)
	}
	return f, nil
}

// --------------------------------------------------------------------------
// Assembler
// --------------------------------------------------------------------------

// CompletionHandler receives reassembled payloads of transfers without an entity.
type CompletionHandler func(id string, function string, data any)

type transfer struct {
	mu       sync.Mutex
	function string
	entity   string
	mode     Mode
	total    int
	parts    []string
	have     []bool
	received int
	// done is set by the frame completing the transfer. The transfer stays
	// in the map until its TTL passes so late duplicates are ignored.
	done bool
}

// Assembler reassembles chunk frames into payloads and delivers them.
//
// Frames of a transfer may arrive in any order. A complete payload is decoded
// and forwarded through the dispatcher to the frame's entity, or handed to
// the completion handler when the entity is empty. Transfers that do not
// complete within the TTL are dropped. Every payload is delivered at most once,
// duplicate frames arriving within the TTL after completion are ignored.
type Assembler struct {
	dispatcher *Dispatcher
	ttl        time.Duration
	transfers  *xsync.MapOf[string, *transfer]
	onComplete CompletionHandler

	mu     sync.Mutex // guards expiry
	expiry *util.MapHeap

	now func() time.Time
}

// NewAssembler creates an assembler forwarding through dispatcher.
// A ttl <= 0 selects DefaultTransferTTL.
func NewAssembler(dispatcher *Dispatcher, ttl time.Duration) *Assembler {
	if ttl <= 0 {
		ttl = DefaultTransferTTL
	}
	return &Assembler{
		dispatcher: dispatcher,
		ttl:        ttl,
		transfers:  xsync.NewMapOf[string, *transfer](),
		expiry:     util.NewMapHeap(),
		now:        time.Now,
	}
}

// OnComplete sets the handler for transfers without an entity.
func (a *Assembler) OnComplete(h CompletionHandler) {
	a.onComplete = h
}

// Callback returns a CallbackFunc feeding fetch frames into the assembler.
// Frames for other functions are ignored, failures are logged.
func (a *Assembler) Callback() CallbackFunc {
	return func(name, function, data string) {
		if function != CallbackFunction {
			return
		}
		if err := a.Feed(data); err != nil {
			log.Warningf("chunk frame from %s rejected: %v", name, err)
		}
	}
}

// Pending returns the number of incomplete transfers.
func (a *Assembler) Pending() int {
	n := 0
	a.transfers.Range(func(_ string, t *transfer) bool {
		t.mu.Lock()
		if !t.done {
			n++
		}
		t.mu.Unlock()
		return true
	})
	return n
}

// Feed adds one wire frame.
func (a *Assembler) Feed(data string) error {
	f, err := ParseFrame(data)
	if err != nil {
		return err
	}
	return a.Add(f)
}

// Add adds one decoded frame. When it completes its transfer the payload is
// decoded and delivered before Add returns.
func (a *Assembler) Add(f Frame) error {
	chunkFrames.Inc()
	now := a.now()
	a.Expire()

	t, _ := a.transfers.LoadOrCompute(f.ID, func() *transfer {
		return &transfer{
			function: f.Function,
			entity:   f.Entity,
			mode:     f.Mode(),
			total:    f.Total,
			parts:    make([]string, f.Total),
			have:     make([]bool, f.Total),
		}
	})

	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return nil
	}
	if t.total != f.Total {
		t.mu.Unlock()
		return fmt.Errorf("%w: transfer %s announced %d chunks, frame says %d", ErrBadFrame, f.ID, t.total, f.Total)
	}
	if !t.have[f.Index-1] {
		t.have[f.Index-1] = true
		t.parts[f.Index-1] = f.Chunk
		t.received++
	}

	var raw string
	complete := t.received == t.total
	if complete {
		t.done = true
		raw = strings.Join(t.parts, "")
		t.parts, t.have = nil, nil
	}
	t.mu.Unlock()

	a.mu.Lock()
	a.expiry.AddItem(f.ID, now.Add(a.ttl).UnixNano())
	a.mu.Unlock()

	if !complete {
		return nil
	}
	return a.deliver(f.ID, t, raw)
}

// Expire drops transfers whose TTL passed and returns how many incomplete
// transfers were dropped. Completed transfers are removed silently.
func (a *Assembler) Expire() int {
	a.mu.Lock()
	ids := a.expiry.PopExpired(a.now().UnixNano())
	a.mu.Unlock()

	expired := 0
	for _, id := range ids {
		t, ok := a.transfers.LoadAndDelete(id)
		if !ok {
			continue
		}
		t.mu.Lock()
		done := t.done
		t.mu.Unlock()
		if done {
			continue
		}
		expired++
		chunkExpired.Inc()
		log.Warningf("chunk transfer %s expired incomplete", id)
	}
	return expired
}

func (a *Assembler) deliver(id string, t *transfer, raw string) error {
	data, err := sqf.Parse(raw)
	if err != nil {
		chunkFailed.Inc()
		return &DecodeError{Raw: raw, Err: err}
	}
	chunkComplete.Inc()
	log.Debugf("chunk transfer %s complete (%d chunks, %d bytes)", id, t.total, len(raw))

	if t.entity == "" {
		if a.onComplete != nil {
			a.onComplete(id, t.function, data)
		}
		return nil
	}

	_, err = a.dispatcher.Dispatch(data, &RemoteTarget{Function: t.function, Recipient: t.entity, Mode: t.mode})
	return err
}
