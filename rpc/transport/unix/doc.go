// Package unix implements the Unix domain socket transport of the ramdb RPC
// system on top of the base package. It is the natural choice when the game
// server and ramdb run on the same machine.
//
// The default server read buffer is 64 KB.
package unix
