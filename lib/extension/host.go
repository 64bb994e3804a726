package extension

import (
	"strconv"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/IDSolutions/ramdb/lib/ramdb"
	"github.com/IDSolutions/ramdb/lib/store"
	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("extension")

// Version is reported by the "version" function.
const Version = "1.0.0"

// DefaultBufferSize is the output buffer size of the game's extension interface.
const DefaultBufferSize = 20480

// Status codes returned next to every result.
const (
	CodeWrite = 100
	CodeRead  = 200
	CodeError = -1
)

// Result strings shared by several functions.
const (
	ResultOK          = "OK"
	ResultNotFound    = "NotFound"
	ResultInvalidArgs = "Invalid number of arguments"
)

// Config configures a Host.
type Config struct {
	// BufferSize is the maximum result size in bytes including the terminating
	// zero of the native interface. 0 selects DefaultBufferSize.
	BufferSize int
	// ContextLog logs every SetContext call.
	ContextLog bool
}

// CallContext describes the game context of the caller.
type CallContext struct {
	SteamID             string
	FileSource          string
	MissionName         string
	ServerName          string
	RemoteExecutedOwner int
}

// Host is the extension. It implements ramdb.IExtension and ramdb.ICallbackSource.
type Host struct {
	store     store.IStore
	persister *store.Persister
	cfg       Config

	callback atomic.Pointer[ramdb.CallbackFunc]
	context  atomic.Pointer[CallContext]

	newID func() string
}

// NewHost creates a host on s. persister may be nil, "save" and "load" then fail.
func NewHost(s store.IStore, persister *store.Persister, cfg Config) *Host {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	h := &Host{
		store:     s,
		persister: persister,
		cfg:       cfg,
		newID:     uuid.NewString,
	}
	h.context.Store(&CallContext{})
	return h
}

// RegisterCallback sets the receiver of chunk frames.
func (h *Host) RegisterCallback(cb ramdb.CallbackFunc) {
	h.callback.Store(&cb)
}

// SetContext sets the context used by Call.
func (h *Host) SetContext(ctx CallContext) {
	h.context.Store(&ctx)
	if h.cfg.ContextLog {
		log.Infof("context: SteamID=%s, FileSource=%s, MissionName=%s, ServerName=%s, RemoteExecutedOwner=%d",
			ctx.SteamID, ctx.FileSource, ctx.MissionName, ctx.ServerName, ctx.RemoteExecutedOwner)
	}
}

// Context returns the context used by Call.
func (h *Host) Context() CallContext {
	return *h.context.Load()
}

// Call runs function with the current context and returns [result, code].
// It never fails, errors are reported in-band.
func (h *Host) Call(function string, args []string) ([]string, error) {
	result, code := h.CallWithContext(h.Context(), function, args)
	return []string{result, strconv.Itoa(code)}, nil
}

// CallWithContext runs function for the caller described by ctx.
func (h *Host) CallWithContext(ctx CallContext, function string, args []string) (string, int) {
	name := strings.ToLower(function)
	log.Debugf("function: %s, args: %s", name, strings.Join(args, ", "))

	op, ok := operations[name]
	if !ok {
		metrics.GetOrCreateCounter(`ramdb_extension_calls_total{function="unknown"}`).Inc()
		return h.output(availableFunctions()), CodeError
	}
	metrics.GetOrCreateCounter(`ramdb_extension_calls_total{function="` + name + `"}`).Inc()

	if len(args) < op.minArgs || (op.validate != nil && !op.validate(args)) {
		return ResultInvalidArgs, CodeError
	}

	c := &call{host: h, ctx: ctx, name: name, args: args}
	result, code := op.run(c)
	return h.output(result), code
}

// --------------------------------------------------------------------------
// Output
// --------------------------------------------------------------------------

// output truncates payload to the buffer (one byte is the terminating zero)
func (h *Host) output(payload string) string {
	limit := h.cfg.BufferSize - 1
	if len(payload) <= limit {
		return payload
	}
	log.Warningf("output truncated from %d to %d bytes", len(payload), limit)
	return truncateUTF8(payload, limit)
}

// deliver returns data inline if it fits, otherwise sends it as chunk frames
// to the registered callback and returns "OK". With wrap set, data that is not
// an array literal is wrapped into one first.
func (h *Host) deliver(c *call, data string, target remoteTarget, wrap bool) string {
	if wrap && !(strings.HasPrefix(data, "[") && strings.HasSuffix(data, "]")) {
		data = serializeList(strings.Split(data, ","))
	}
	if len(data) <= h.cfg.BufferSize-1 {
		return data
	}

	cb := h.callback.Load()
	if cb == nil {
		log.Warningf("%s result of %d bytes exceeds buffer and no callback is registered", c.name, len(data))
		return data
	}

	id := h.newID() + "_" + c.name
	chunks := splitChunks(data, h.cfg.BufferSize)
	for i, chunk := range chunks {
		frame := ramdb.Frame{
			ID:       id,
			Function: target.function,
			Index:    i + 1,
			Total:    len(chunks),
			Chunk:    chunk,
			Call:     target.call,
			Entity:   target.entity,
		}
		(*cb)(ramdb.CallbackName, ramdb.CallbackFunction, frame.String())
	}
	log.Debugf("%s result of %d bytes sent in %d chunks (%s)", c.name, len(data), len(chunks), id)
	return ResultOK
}

// splitChunks splits s into pieces of at most size bytes without cutting runes
func splitChunks(s string, size int) []string {
	var chunks []string
	for len(s) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			cut = size
		}
		chunks = append(chunks, s[:cut])
		s = s[cut:]
	}
	return append(chunks, s)
}

func truncateUTF8(s string, n int) string {
	if n <= 0 {
		return ""
	}
	for n > 0 && n < len(s) && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// --------------------------------------------------------------------------
// Keys
// --------------------------------------------------------------------------

const playerPlaceholder = "_SP_PLAYER_"

// resolveKey trims quotes and substitutes the player placeholder
func resolveKey(key string, ctx CallContext) string {
	if key == "" || key == `""` {
		return ctx.SteamID
	}
	key = strings.Trim(key, `"`)
	if key == playerPlaceholder {
		return ctx.SteamID
	}
	if strings.HasPrefix(key, playerPlaceholder+":") {
		return strings.Replace(key, playerPlaceholder, ctx.SteamID, 1)
	}
	return key
}
