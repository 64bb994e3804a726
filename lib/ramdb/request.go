package ramdb

import "strconv"

// --------------------------------------------------------------------------
// Remote Dispatch Descriptor
// --------------------------------------------------------------------------

// Mode selects the remote invocation semantic.
type Mode uint8

const (
	// ModeExec schedules the remote function without awaiting it.
	ModeExec Mode = iota
	// ModeCall invokes the remote function as a replicated call.
	ModeCall
)

// String returns the name of the mode.
func (m Mode) String() string {
	if m == ModeCall {
		return "call"
	}
	return "exec"
}

// Arg encodes the mode as the boolean argument the extension expects.
func (m Mode) Arg() string {
	return strconv.FormatBool(m == ModeCall)
}

// ParseMode decodes the boolean argument produced by Arg.
// Surrounding quotes and letter case are ignored.
func ParseMode(s string) Mode {
	if b, err := strconv.ParseBool(trimQuotes(s)); err == nil && b {
		return ModeCall
	}
	return ModeExec
}

// RemoteTarget describes where fetched data is forwarded to.
// A target with an empty Recipient means "return the data to the caller".
type RemoteTarget struct {
	Function  string
	Recipient string
	Mode      Mode
}

// Remote reports whether the target requests remote dispatch.
func (t *RemoteTarget) Remote() bool {
	return t != nil && t.Recipient != ""
}

// --------------------------------------------------------------------------
// Request
// --------------------------------------------------------------------------

// Request is one fetch from the extension.
type Request struct {
	// Operation is the extension function, e.g. "get" or "hgetall".
	Operation string
	// Key names the record.
	Key string
	// Params are appended after the key when non-empty.
	Params []string
	// Target is optional. See RemoteTarget.
	Target *RemoteTarget
}

// Args returns the argument vector of the request. See BuildArgs.
func (r Request) Args() []string {
	return BuildArgs(r.Key, r.Params, r.Target)
}

// BuildArgs assembles the argument vector
//
//	[key] ++ params ++ [function, recipient, mode]
//
// where params are appended only when non-empty and the remote triple only
// when the target has a recipient. It performs no validation.
func BuildArgs(key string, params []string, target *RemoteTarget) []string {
	n := 1 + len(params)
	if target.Remote() {
		n += 3
	}

	args := make([]string, 0, n)
	args = append(args, key)
	if len(params) > 0 {
		args = append(args, params...)
	}
	if target.Remote() {
		args = append(args, target.Function, target.Recipient, target.Mode.Arg())
	}
	return args
}

func trimQuotes(s string) string {
	for len(s) > 0 && s[0] == '"' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == '"' {
		s = s[:len(s)-1]
	}
	return s
}
