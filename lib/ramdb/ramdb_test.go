package ramdb

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/IDSolutions/ramdb/lib/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Fakes
// --------------------------------------------------------------------------

type extCall struct {
	function string
	args     []string
}

type fakeExtension struct {
	mu       sync.Mutex
	calls    []extCall
	response []string
	err      error
	onCall   func()
}

func (f *fakeExtension) Call(function string, args []string) ([]string, error) {
	if f.onCall != nil {
		f.onCall()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, extCall{function: function, args: args})
	return f.response, f.err
}

type invocation struct {
	mode      Mode
	function  string
	recipient string
	data      any
}

type fakeInvoker struct {
	mu    sync.Mutex
	calls []invocation
	err   error
}

func (f *fakeInvoker) RemoteExecCall(function, recipient string, data any) error {
	return f.record(ModeCall, function, recipient, data)
}

func (f *fakeInvoker) RemoteExec(function, recipient string, data any) error {
	return f.record(ModeExec, function, recipient, data)
}

func (f *fakeInvoker) record(m Mode, function, recipient string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, invocation{m, function, recipient, data})
	return f.err
}

type fakeDiag struct {
	mu    sync.Mutex
	lines []string
}

func (f *fakeDiag) Logf(format string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, fmt.Sprintf(format, args...))
}

func newTestClient(t *testing.T, ext IExtension, inv IRemoteInvoker) (*Client, *fakeDiag, *gate.Gate) {
	t.Helper()
	diag := &fakeDiag{}
	g := gate.New(t.Name())
	return NewClientWithGate(ext, inv, diag, g), diag, g
}

// --------------------------------------------------------------------------
// Request Builder
// --------------------------------------------------------------------------

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		params []string
		target *RemoteTarget
		want   []string
	}{
		{"key only", "k", nil, nil, []string{"k"}},
		{"empty params", "k", []string{}, nil, []string{"k"}},
		{"params keep order", "k", []string{"b", "a", "c"}, nil, []string{"k", "b", "a", "c"}},
		{"no recipient ignores target", "k", []string{"p"}, &RemoteTarget{Function: "fn", Mode: ModeCall}, []string{"k", "p"}},
		{"remote call", "k", nil, &RemoteTarget{Function: "fn", Recipient: "2", Mode: ModeCall}, []string{"k", "fn", "2", "true"}},
		{"remote exec after params", "k", []string{"f1", "f2"}, &RemoteTarget{Function: "fn", Recipient: "obj", Mode: ModeExec},
			[]string{"k", "f1", "f2", "fn", "obj", "false"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildArgs(tt.key, tt.params, tt.target))
			assert.Equal(t, tt.want, Request{Key: tt.key, Params: tt.params, Target: tt.target}.Args())
		})
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeCall, ParseMode("true"))
	assert.Equal(t, ModeCall, ParseMode(`"True"`))
	assert.Equal(t, ModeExec, ParseMode("false"))
	assert.Equal(t, ModeExec, ParseMode("garbage"))
	assert.Equal(t, ModeCall, ParseMode(ModeCall.Arg()))
}

// --------------------------------------------------------------------------
// Response Classifier
// --------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		response []string
		kind     Kind
		data     any
	}{
		{"not found", []string{"NotFound", "200"}, KindNotFound, []any{}},
		{"empty array is not found", []string{"[]"}, KindNotFound, []any{}},
		{"empty array with aux", []string{"[]", "-1", "x"}, KindNotFound, []any{}},
		{"chunked", []string{"OK"}, KindChunked, []any{}},
		{"inline array", []string{"[1,2,3]", "200"}, KindInline, []any{1.0, 2.0, 3.0}},
		{"inline string", []string{`"hello"`}, KindInline, "hello"},
		{"inline nested", []string{`[["a",1],[true,nil]]`}, KindInline, []any{[]any{"a", 1.0}, []any{true, nil}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Classify(tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, out.Kind)
			assert.Equal(t, tt.data, out.Data)
			assert.Equal(t, tt.response[0], out.Raw)
		})
	}
}

func TestClassifyDecodeFailure(t *testing.T) {
	for _, raw := range []string{"[1,2", "notfound", "ok", "[1,,2]", `"open`} {
		_, err := Classify([]string{raw})
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, ErrDecodeFailure, raw)

		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, raw, de.Raw)
	}
}

func TestClassifyEmptyResponse(t *testing.T) {
	_, err := Classify(nil)
	assert.ErrorIs(t, err, ErrDecodeFailure)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

// TestDecodeErrorKeepsRunes checks the quoted raw result is cut on a rune boundary
func TestDecodeErrorKeepsRunes(t *testing.T) {
	raw := "[" + strings.Repeat("ä", 40)
	require.False(t, utf8.RuneStart(raw[maxErrorRaw]))

	msg := (&DecodeError{Raw: raw, Err: errors.New("unterminated array")}).Error()
	assert.True(t, utf8.ValidString(msg))
	assert.NotContains(t, msg, `\x`)
	assert.Contains(t, msg, "...")
	assert.NotContains(t, msg, raw)

	short := (&DecodeError{Raw: "[1,2", Err: errors.New("eof")}).Error()
	assert.Contains(t, short, "[1,2")
	assert.NotContains(t, short, "...")
}

// --------------------------------------------------------------------------
// Client
// --------------------------------------------------------------------------

// TestFetchEndToEnd fetches a key without params or recipient
func TestFetchEndToEnd(t *testing.T) {
	ext := &fakeExtension{response: []string{"[10,20,30]"}}
	c, diag, _ := newTestClient(t, ext, nil)

	data, err := c.Fetch(Request{Operation: "get", Key: "player_42"})
	require.NoError(t, err)
	assert.Equal(t, []any{10.0, 20.0, 30.0}, data)

	require.Len(t, ext.calls, 1)
	assert.Equal(t, "get", ext.calls[0].function)
	assert.Equal(t, []string{"player_42"}, ext.calls[0].args)

	require.Len(t, diag.lines, 1)
	assert.Contains(t, diag.lines[0], "player_42")
	assert.Contains(t, diag.lines[0], "Data")
	assert.Contains(t, diag.lines[0], "[10,20,30]")
}

func TestFetchNotFound(t *testing.T) {
	for _, raw := range []string{"NotFound", "[]"} {
		ext := &fakeExtension{response: []string{raw, "200"}}
		c, diag, _ := newTestClient(t, ext, nil)

		data, err := c.Fetch(Request{Operation: "hgetall", Key: "missing"})
		require.NoError(t, err)
		assert.Equal(t, []any{}, data)
		require.Len(t, diag.lines, 1)
		assert.Equal(t, "ArmaRAMDb: 'ramdb_db_fnc_hgetall' Can't find Key 'missing'", diag.lines[0])
	}
}

func TestFetchChunked(t *testing.T) {
	ext := &fakeExtension{response: []string{"OK"}}
	inv := &fakeInvoker{}
	c, diag, _ := newTestClient(t, ext, inv)

	data, err := c.Fetch(Request{Operation: "get", Key: "big"})
	require.NoError(t, err)
	assert.Equal(t, []any{}, data)
	require.Len(t, diag.lines, 1)
	assert.Contains(t, diag.lines[0], "is being sent in chunks")

	// with a recipient the assembler delivers, not the fetch
	data, err = c.Fetch(Request{Operation: "get", Key: "big", Target: &RemoteTarget{Function: "fn", Recipient: "7", Mode: ModeCall}})
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Empty(t, inv.calls)
}

// TestFetchRouting checks the three dispatch routes
func TestFetchRouting(t *testing.T) {
	tests := []struct {
		name   string
		target *RemoteTarget
		mode   Mode
		remote bool
	}{
		{"local", nil, 0, false},
		{"call", &RemoteTarget{Function: "client_fnc_load", Recipient: "3", Mode: ModeCall}, ModeCall, true},
		{"exec", &RemoteTarget{Function: "client_fnc_load", Recipient: "3", Mode: ModeExec}, ModeExec, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &fakeExtension{response: []string{`["a","b"]`}}
			inv := &fakeInvoker{}
			c, _, _ := newTestClient(t, ext, inv)

			data, err := c.Fetch(Request{Operation: "lrange", Key: "k", Params: []string{"0", "-1"}, Target: tt.target})
			require.NoError(t, err)

			if !tt.remote {
				assert.Equal(t, []any{"a", "b"}, data)
				assert.Empty(t, inv.calls)
				return
			}

			assert.Nil(t, data)
			require.Len(t, inv.calls, 1)
			assert.Equal(t, invocation{tt.mode, "client_fnc_load", "3", []any{"a", "b"}}, inv.calls[0])
			assert.Equal(t, []string{"k", "0", "-1", "client_fnc_load", "3", tt.mode.Arg()}, ext.calls[0].args)
		})
	}
}

func TestFetchRemoteWithoutInvoker(t *testing.T) {
	ext := &fakeExtension{response: []string{"[1]"}}
	c, _, _ := newTestClient(t, ext, nil)

	_, err := c.Fetch(Request{Operation: "get", Key: "k", Target: &RemoteTarget{Function: "f", Recipient: "r"}})
	assert.ErrorIs(t, err, ErrNoInvoker)
}

// TestFetchTransportErrorReleasesGate checks the gate is free after a transport error
func TestFetchTransportErrorReleasesGate(t *testing.T) {
	down := errors.New("connection refused")
	ext := &fakeExtension{err: down}
	c, diag, g := newTestClient(t, ext, nil)

	_, err := c.Fetch(Request{Operation: "get", Key: "k"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChannelUnavailable)
	assert.ErrorIs(t, err, down)
	assert.Empty(t, diag.lines)

	require.True(t, g.TryAcquire(), "gate must be released after a transport error")
	g.Release()
}

func TestFetchDecodeFailureReleasesGate(t *testing.T) {
	ext := &fakeExtension{response: []string{"[1,2"}}
	inv := &fakeInvoker{}
	c, _, g := newTestClient(t, ext, inv)

	data, err := c.Fetch(Request{Operation: "get", Key: "k", Target: &RemoteTarget{Function: "f", Recipient: "r"}})
	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrDecodeFailure)
	assert.False(t, errors.Is(err, ErrChannelUnavailable))
	assert.Empty(t, inv.calls, "corrupt data must not be forwarded")
	assert.False(t, g.Held())
}

// TestFetchSerialized checks concurrent fetches never overlap inside the extension
func TestFetchSerialized(t *testing.T) {
	var inFlight, overlaps atomic.Int32
	ext := &fakeExtension{response: []string{"[1]"}}
	ext.onCall = func() {
		if inFlight.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(50 * time.Microsecond)
		inFlight.Add(-1)
	}
	c, _, _ := newTestClient(t, ext, nil)

	const callers = 16
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, err := c.Fetch(Request{Operation: "get", Key: fmt.Sprintf("k%d", i)})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, overlaps.Load())
	assert.Len(t, ext.calls, callers*20)
}

func TestCallPassesThrough(t *testing.T) {
	ext := &fakeExtension{response: []string{"OK", "100"}}
	c, diag, _ := newTestClient(t, ext, nil)

	resp, err := c.Call("set", []string{"k", "v"})
	require.NoError(t, err)
	assert.Equal(t, []string{"OK", "100"}, resp)
	assert.Empty(t, diag.lines)

	ext.err = errors.New("broken pipe")
	_, err = c.Call("set", []string{"k", "v"})
	assert.ErrorIs(t, err, ErrChannelUnavailable)
}

// TestDiagnosticsPanicIgnored checks a failing sink does not fail the fetch
func TestDiagnosticsPanicIgnored(t *testing.T) {
	ext := &fakeExtension{response: []string{"[1]"}}
	c := NewClientWithGate(ext, nil, panicDiag{}, gate.New(t.Name()))

	data, err := c.Fetch(Request{Operation: "get", Key: "k"})
	require.NoError(t, err)
	assert.Equal(t, []any{1.0}, data)
}

type panicDiag struct{}

func (panicDiag) Logf(string, ...interface{}) { panic("sink down") }

// chunkingExtension answers its first call with OK and emits frames through
// the registered callback while the call is running, like the extension does
// for results too large for one response.
type chunkingExtension struct {
	mu       sync.Mutex
	cb       CallbackFunc
	frames   []Frame
	calls    int
	response []string
}

func (e *chunkingExtension) RegisterCallback(cb CallbackFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cb = cb
}

func (e *chunkingExtension) Call(_ string, _ []string) ([]string, error) {
	e.mu.Lock()
	e.calls++
	first, cb := e.calls == 1, e.cb
	e.mu.Unlock()

	if !first {
		return e.response, nil
	}
	for _, f := range e.frames {
		cb(CallbackName, CallbackFunction, f.String())
	}
	return []string{"OK"}, nil
}

func (e *chunkingExtension) emit(f Frame) {
	e.mu.Lock()
	cb := e.cb
	e.mu.Unlock()
	cb(CallbackName, CallbackFunction, f.String())
}

// reentrantInvoker fetches again from inside the remote call, as a receiving
// function that reads the database would.
type reentrantInvoker struct {
	client *Client
	gate   *gate.Gate

	mu         sync.Mutex
	gateHeld   []bool
	delivered  []any
	nested     []any
	nestedErrs []error
}

func (r *reentrantInvoker) RemoteExecCall(_ string, _ string, data any) error {
	held := r.gate.Held()
	nested, err := r.client.Fetch(Request{Operation: "get", Key: "follow_up"})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateHeld = append(r.gateHeld, held)
	r.delivered = append(r.delivered, data)
	r.nested = append(r.nested, nested)
	r.nestedErrs = append(r.nestedErrs, err)
	return nil
}

func (r *reentrantInvoker) RemoteExec(function, recipient string, data any) error {
	return r.RemoteExecCall(function, recipient, data)
}

// TestChunkDeliveryOutsideGate checks that chunk frames emitted during a call
// are delivered after the gate is released, so the receiver can fetch again
func TestChunkDeliveryOutsideGate(t *testing.T) {
	ext := &chunkingExtension{
		frames:   splitFrames("t7", "client_fnc_recv", "3", true, `[["cash",100],["bank",250]]`, 6),
		response: []string{"[7]"},
	}
	inv := &reentrantInvoker{}
	c, _, g := newTestClient(t, ext, inv)
	inv.client, inv.gate = c, g

	asm := NewAssembler(c.Dispatcher(), time.Minute)
	require.True(t, c.RegisterCallback(asm.Callback()))

	done := make(chan error, 1)
	go func() {
		_, err := c.Fetch(Request{
			Operation: "hgetall",
			Key:       "player_3",
			Target:    &RemoteTarget{Function: "client_fnc_recv", Recipient: "3", Mode: ModeCall},
		})
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not return, callback ran while the gate was held")
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	require.Len(t, inv.gateHeld, 1)
	assert.False(t, inv.gateHeld[0])
	assert.Equal(t, []any{[]any{"cash", 100.0}, []any{"bank", 250.0}}, inv.delivered[0])
	require.NoError(t, inv.nestedErrs[0])
	assert.Equal(t, []any{7.0}, inv.nested[0])
	assert.False(t, g.Held())
	assert.Zero(t, asm.Pending())
}

// TestCallbackOutsideCallPassesThrough checks frames arriving between calls
// reach the callback directly
func TestCallbackOutsideCallPassesThrough(t *testing.T) {
	ext := &chunkingExtension{}
	c, _, _ := newTestClient(t, ext, nil)

	var got []string
	require.True(t, c.RegisterCallback(func(_, _, data string) {
		got = append(got, data)
	}))

	f := Frame{ID: "t8", Function: "fn", Index: 1, Total: 1, Chunk: "[1]"}
	ext.emit(f)
	assert.Equal(t, []string{f.String()}, got)
}

func TestRegisterCallbackWithoutSource(t *testing.T) {
	c, _, _ := newTestClient(t, &fakeExtension{}, nil)
	assert.False(t, c.RegisterCallback(func(_, _, _ string) {}))
}

// --------------------------------------------------------------------------
// Chunk Assembler
// --------------------------------------------------------------------------

func splitFrames(id, function, entity string, call bool, payload string, size int) []Frame {
	var chunks []string
	for len(payload) > size {
		chunks = append(chunks, payload[:size])
		payload = payload[size:]
	}
	chunks = append(chunks, payload)

	frames := make([]Frame, len(chunks))
	for i, c := range chunks {
		frames[i] = Frame{ID: id, Function: function, Index: i + 1, Total: len(chunks), Chunk: c, Call: call, Entity: entity}
	}
	return frames
}

func TestFrameWireFormat(t *testing.T) {
	f := Frame{ID: "abc", Function: "fn", Index: 2, Total: 3, Chunk: `["x","y"]`, Call: true, Entity: "12"}
	wire := f.String()
	assert.Equal(t, `["abc", "fn", 2, 3, "[""x"",""y""]", true, "12"]`, wire)

	back, err := ParseFrame(wire)
	require.NoError(t, err)
	assert.Equal(t, f, back)
}

func TestParseFrameRejects(t *testing.T) {
	for _, wire := range []string{
		`["id", "fn", 1, 1, "x", true]`,
		`["id", "fn", 0, 1, "x", true, ""]`,
		`["id", "fn", 3, 2, "x", true, ""]`,
		`["", "fn", 1, 1, "x", true, ""]`,
		`["id", "fn", "1", 1, "x", true, ""]`,
		`not a frame`,
	} {
		_, err := ParseFrame(wire)
		assert.ErrorIs(t, err, ErrBadFrame, wire)
	}
}

// TestAssemblerOutOfOrder reassembles frames arriving in reverse order and dispatches them
func TestAssemblerOutOfOrder(t *testing.T) {
	inv := &fakeInvoker{}
	a := NewAssembler(NewDispatcher(inv), time.Minute)

	payload := `[["weapon","arifle_MX_F"],["ammo",30],["note","said ""hi"""]]`
	frames := splitFrames("t1", "client_fnc_loadout", "5", true, payload, 7)
	require.Greater(t, len(frames), 3)

	cb := a.Callback()
	for i := len(frames) - 1; i >= 0; i-- {
		cb(CallbackName, CallbackFunction, frames[i].String())
		if i > 0 {
			assert.Empty(t, inv.calls)
		}
	}

	require.Len(t, inv.calls, 1)
	assert.Equal(t, ModeCall, inv.calls[0].mode)
	assert.Equal(t, "client_fnc_loadout", inv.calls[0].function)
	assert.Equal(t, "5", inv.calls[0].recipient)
	assert.Equal(t, []any{
		[]any{"weapon", "arifle_MX_F"},
		[]any{"ammo", 30.0},
		[]any{"note", `said "hi"`},
	}, inv.calls[0].data)
	assert.Zero(t, a.Pending())
}

func TestAssemblerWithoutEntity(t *testing.T) {
	a := NewAssembler(NewDispatcher(nil), time.Minute)

	var gotID string
	var got any
	a.OnComplete(func(id, function string, data any) {
		gotID, got = id, data
	})

	for _, f := range splitFrames("t2", "", "", false, `["`+strings.Repeat("z", 40)+`"]`, 10) {
		require.NoError(t, a.Add(f))
	}
	assert.Equal(t, "t2", gotID)
	assert.Equal(t, []any{strings.Repeat("z", 40)}, got)
}

func TestAssemblerDuplicateFramesIgnored(t *testing.T) {
	inv := &fakeInvoker{}
	a := NewAssembler(NewDispatcher(inv), time.Minute)
	frames := splitFrames("t3", "fn", "1", false, "[1,2,3,4,5]", 4)

	require.NoError(t, a.Add(frames[0]))
	require.NoError(t, a.Add(frames[0]))
	assert.Equal(t, 1, a.Pending())

	for _, f := range frames[1:] {
		require.NoError(t, a.Add(f))
	}
	require.Len(t, inv.calls, 1)
	assert.Equal(t, ModeExec, inv.calls[0].mode)
}

func TestAssemblerDecodeFailure(t *testing.T) {
	a := NewAssembler(NewDispatcher(nil), time.Minute)
	var err error
	for _, f := range splitFrames("t4", "fn", "", false, "[1,2", 2) {
		err = a.Add(f)
	}
	assert.ErrorIs(t, err, ErrDecodeFailure)
	assert.Zero(t, a.Pending())
}

func TestAssemblerExpire(t *testing.T) {
	a := NewAssembler(NewDispatcher(nil), time.Second)
	now := time.Unix(1000, 0)
	a.now = func() time.Time { return now }

	frames := splitFrames("t5", "fn", "", false, "[1,2,3]", 2)
	require.NoError(t, a.Add(frames[0]))
	assert.Equal(t, 1, a.Pending())

	now = now.Add(500 * time.Millisecond)
	assert.Zero(t, a.Expire())

	now = now.Add(time.Second)
	assert.Equal(t, 1, a.Expire())
	assert.Zero(t, a.Pending())
}

// TestAssemblerLateDuplicateAfterCompletion checks a frame repeated after its
// transfer completed neither delivers again nor opens a new transfer
func TestAssemblerLateDuplicateAfterCompletion(t *testing.T) {
	inv := &fakeInvoker{}
	a := NewAssembler(NewDispatcher(inv), time.Second)
	now := time.Unix(1000, 0)
	a.now = func() time.Time { return now }

	frames := splitFrames("t9", "fn", "2", true, "[1,2,3,4,5]", 3)
	for _, f := range frames {
		require.NoError(t, a.Add(f))
	}
	require.Len(t, inv.calls, 1)

	now = now.Add(500 * time.Millisecond)
	require.NoError(t, a.Add(frames[0]))
	require.NoError(t, a.Add(frames[len(frames)-1]))
	assert.Len(t, inv.calls, 1)
	assert.Zero(t, a.Pending())

	now = now.Add(time.Second)
	assert.Zero(t, a.Expire())
}

// TestAssemblerConcurrentDuplicatesDeliverOnce races full copies of one
// transfer against each other
func TestAssemblerConcurrentDuplicatesDeliverOnce(t *testing.T) {
	a := NewAssembler(NewDispatcher(nil), time.Minute)
	var delivered atomic.Int32
	a.OnComplete(func(_, _ string, _ any) {
		delivered.Add(1)
	})

	for round := 0; round < 20; round++ {
		delivered.Store(0)
		frames := splitFrames(fmt.Sprintf("race-%d", round), "fn", "", false, `["a","b","c","d"]`, 4)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for _, f := range frames {
					assert.NoError(t, a.Add(f))
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), delivered.Load(), "round %d", round)
	}
	assert.Zero(t, a.Pending())
}

func TestDispatchNoRecipientReturnsData(t *testing.T) {
	d := NewDispatcher(nil)
	data, err := d.Dispatch("x", &RemoteTarget{Function: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "x", data)
}

func TestDispatchError(t *testing.T) {
	inv := &fakeInvoker{err: errors.New("peer offline")}
	_, err := NewDispatcher(inv).Dispatch(1.0, &RemoteTarget{Function: "f", Recipient: "r", Mode: ModeExec})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "peer offline")
}
