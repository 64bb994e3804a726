package extension

import (
	"strconv"
	"strings"
	"time"

	"github.com/IDSolutions/ramdb/lib/sqf"
	"github.com/IDSolutions/ramdb/lib/store/memstore"
)

// call carries one invocation through an operation
type call struct {
	host *Host
	ctx  CallContext
	name string
	args []string
}

func (c *call) key() string { return resolveKey(c.args[0], c.ctx) }

// intArg parses args[i] as integer, surrounding quotes are ignored
func (c *call) intArg(i int) (int, bool) {
	v, err := strconv.Atoi(strings.Trim(c.args[i], `"`))
	return v, err == nil
}

func (c *call) floatArg(i int) (float64, bool) {
	v, err := strconv.ParseFloat(strings.Trim(c.args[i], `"`), 64)
	return v, err == nil
}

func (c *call) boolArg(i int) (bool, bool) {
	v, err := strconv.ParseBool(strings.Trim(c.args[i], `"`))
	return v, err == nil
}

// target reads the optional [function, entity, call] triple starting at i
func (c *call) target(i int) remoteTarget {
	if len(c.args) < i+3 {
		return remoteTarget{}
	}
	isCall, _ := c.boolArg(i + 2)
	return remoteTarget{function: c.args[i], entity: c.args[i+1], call: isCall}
}

func (c *call) invalid(i int) (string, int) {
	return "Invalid argument '" + c.args[i] + "'", CodeError
}

// remoteTarget is where chunk frames ask the receiver to forward the payload
type remoteTarget struct {
	function string
	entity   string
	call     bool
}

type operation struct {
	minArgs  int
	validate func(args []string) bool
	run      func(c *call) (string, int)
}

// operationNames lists the functions in the order reported to callers of unknown functions
var operationNames = []string{
	"set", "get", "del", "exists",
	"hset", "hmset", "hget", "hgetall", "hdel", "hlen", "hkeys", "hvals", "hexists", "hincrby", "hincrbyfloat",
	"lindex", "llen", "linsert", "lpop", "lpush", "lrange", "lrem", "lset", "ltrim", "rpop", "rpush",
	"incrby", "incrbyfloat", "save", "load", "time", "version",
}

func availableFunctions() string {
	return "Available functions: " + strings.Join(operationNames, ", ")
}

var operations map[string]operation

func init() {
	operations = map[string]operation{
		// ---- generic ----
		"del": {minArgs: 1, run: func(c *call) (string, int) {
			return strconv.Itoa(c.host.store.Del(trimAll(c.args)...)), CodeWrite
		}},
		"exists": {minArgs: 1, run: func(c *call) (string, int) {
			return strconv.Itoa(c.host.store.Exists(trimAll(c.args)...)), CodeRead
		}},

		// ---- key-value ----
		"set": {minArgs: 2, run: func(c *call) (string, int) {
			c.host.store.Set(c.key(), c.args[1])
			return ResultOK, CodeWrite
		}},
		"get": {minArgs: 1, run: func(c *call) (string, int) {
			v, ok := c.host.store.Get(c.key())
			if !ok {
				return ResultNotFound, CodeError
			}
			return c.host.deliver(c, v, c.target(1), false), CodeRead
		}},
		"incrby": {minArgs: 2, run: func(c *call) (string, int) {
			d, ok := c.intArg(1)
			if !ok {
				return c.invalid(1)
			}
			return strconv.FormatInt(c.host.store.IncrBy(c.key(), int64(d)), 10), CodeRead
		}},
		"incrbyfloat": {minArgs: 2, run: func(c *call) (string, int) {
			d, ok := c.floatArg(1)
			if !ok {
				return c.invalid(1)
			}
			return memstore.FormatFloat(c.host.store.IncrByFloat(c.key(), d)), CodeRead
		}},

		// ---- hash ----
		"hset": {minArgs: 3, run: func(c *call) (string, int) {
			c.host.store.HSet(c.key(), c.args[1], c.args[2])
			return ResultOK, CodeWrite
		}},
		"hmset": {minArgs: 3, validate: func(args []string) bool { return (len(args)-1)%2 == 0 }, run: func(c *call) (string, int) {
			pairs := make(map[string]string, (len(c.args)-1)/2)
			for i := 1; i < len(c.args); i += 2 {
				pairs[c.args[i]] = c.args[i+1]
			}
			c.host.store.HMSet(c.key(), pairs)
			return ResultOK, CodeWrite
		}},
		"hget": {minArgs: 2, run: func(c *call) (string, int) {
			v, ok := c.host.store.HGet(c.key(), c.args[1])
			if !ok {
				return ResultNotFound, CodeError
			}
			return c.host.deliver(c, v, c.target(2), true), CodeRead
		}},
		"hgetall": {minArgs: 1, run: func(c *call) (string, int) {
			all := serializeList(c.host.store.HGetAll(c.key()))
			return c.host.deliver(c, all, c.target(1), true), CodeRead
		}},
		"hdel": {minArgs: 2, run: func(c *call) (string, int) {
			return strconv.Itoa(c.host.store.HDel(c.key(), c.args[1:]...)), CodeRead
		}},
		"hlen": {minArgs: 1, run: func(c *call) (string, int) {
			n := c.host.store.HLen(c.key())
			if n == 0 {
				return ResultNotFound, CodeError
			}
			return strconv.Itoa(n), CodeRead
		}},
		"hkeys": {minArgs: 1, run: func(c *call) (string, int) {
			return c.host.deliver(c, serializeList(c.host.store.HKeys(c.key())), c.target(1), true), CodeRead
		}},
		"hvals": {minArgs: 1, run: func(c *call) (string, int) {
			return c.host.deliver(c, serializeList(c.host.store.HVals(c.key())), c.target(1), true), CodeRead
		}},
		"hexists": {minArgs: 2, run: func(c *call) (string, int) {
			if c.host.store.HExists(c.key(), c.args[1]) {
				return "1", CodeRead
			}
			return "0", CodeRead
		}},
		"hincrby": {minArgs: 3, run: func(c *call) (string, int) {
			d, ok := c.intArg(2)
			if !ok {
				return c.invalid(2)
			}
			return strconv.FormatInt(c.host.store.HIncrBy(c.key(), c.args[1], int64(d)), 10), CodeRead
		}},
		"hincrbyfloat": {minArgs: 3, run: func(c *call) (string, int) {
			d, ok := c.floatArg(2)
			if !ok {
				return c.invalid(2)
			}
			return memstore.FormatFloat(c.host.store.HIncrByFloat(c.key(), c.args[1], d)), CodeRead
		}},

		// ---- list ----
		"lindex": {minArgs: 2, run: func(c *call) (string, int) {
			i, ok := c.intArg(1)
			if !ok {
				return c.invalid(1)
			}
			v, ok := c.host.store.LIndex(c.key(), i)
			if !ok {
				return ResultNotFound, CodeError
			}
			return c.host.deliver(c, v, c.target(2), true), CodeRead
		}},
		"llen": {minArgs: 1, run: func(c *call) (string, int) {
			return strconv.Itoa(c.host.store.LLen(c.key())), CodeRead
		}},
		"linsert": {minArgs: 4, run: func(c *call) (string, int) {
			before, ok := c.boolArg(1)
			if !ok {
				return c.invalid(1)
			}
			return strconv.Itoa(c.host.store.LInsert(c.key(), before, c.args[2], c.args[3])), CodeRead
		}},
		"lpop": {minArgs: 2, run: func(c *call) (string, int) {
			return pop(c, c.host.store.LPop)
		}},
		"rpop": {minArgs: 2, run: func(c *call) (string, int) {
			return pop(c, c.host.store.RPop)
		}},
		"lpush": {minArgs: 2, run: func(c *call) (string, int) {
			return strconv.Itoa(c.host.store.LPush(c.key(), c.args[1:]...)), CodeRead
		}},
		"rpush": {minArgs: 2, run: func(c *call) (string, int) {
			return strconv.Itoa(c.host.store.RPush(c.key(), c.args[1:]...)), CodeRead
		}},
		"lrange": {minArgs: 3, run: func(c *call) (string, int) {
			start, ok := c.intArg(1)
			if !ok {
				return c.invalid(1)
			}
			end, ok := c.intArg(2)
			if !ok {
				return c.invalid(2)
			}
			items := serializeList(c.host.store.LRange(c.key(), start, end))
			return c.host.deliver(c, items, c.target(3), true), CodeRead
		}},
		"lrem": {minArgs: 3, run: func(c *call) (string, int) {
			n, ok := c.intArg(1)
			if !ok {
				return c.invalid(1)
			}
			return strconv.Itoa(c.host.store.LRem(c.key(), n, c.args[2])), CodeRead
		}},
		"lset": {minArgs: 3, run: func(c *call) (string, int) {
			i, ok := c.intArg(1)
			if !ok {
				return c.invalid(1)
			}
			if !c.host.store.LSet(c.key(), i, c.args[2]) {
				return ResultNotFound, CodeError
			}
			return ResultOK, CodeRead
		}},
		"ltrim": {minArgs: 3, run: func(c *call) (string, int) {
			start, ok := c.intArg(1)
			if !ok {
				return c.invalid(1)
			}
			end, ok := c.intArg(2)
			if !ok {
				return c.invalid(2)
			}
			if !c.host.store.LTrim(c.key(), start, end) {
				return ResultNotFound, CodeError
			}
			return ResultOK, CodeRead
		}},

		// ---- persistence and info ----
		"save": {run: func(c *call) (string, int) {
			backup := false
			if len(c.args) > 0 {
				backup, _ = c.boolArg(0)
			}
			if c.host.persister == nil {
				return "Error saving to disc", CodeWrite
			}
			if _, err := c.host.persister.Save(backup); err != nil {
				return "Error saving to disc", CodeWrite
			}
			return "Saved data to disc", CodeWrite
		}},
		"load": {minArgs: 1, run: func(c *call) (string, int) {
			if c.host.persister == nil {
				return "Error loading from disc", CodeWrite
			}
			if err := c.host.persister.Load(strings.Trim(c.args[0], `"`)); err != nil {
				return "Error loading from disc", CodeWrite
			}
			return "Loaded data from disc", CodeWrite
		}},
		"time": {run: func(c *call) (string, int) {
			return time.Now().Format("02:01:2006 15:04:05"), CodeRead
		}},
		"version": {run: func(c *call) (string, int) {
			return Version, CodeWrite
		}},
	}
}

func pop(c *call, fn func(key string, count int) ([]string, bool)) (string, int) {
	n, ok := c.intArg(1)
	if !ok {
		return c.invalid(1)
	}
	values, ok := fn(c.key(), n)
	if !ok {
		return ResultNotFound, CodeError
	}
	return serializeList(values), CodeRead
}

func serializeList(items []string) string {
	return sqf.SerializeList(items)
}

func trimAll(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strings.Trim(a, `"`)
	}
	return out
}
