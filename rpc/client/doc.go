// Package client implements the client side of the ramdb RPC system: the
// Extension Channel used when the extension runs in another process.
//
// RPCExtension implements ramdb.IExtension and ramdb.ICallbackSource, so it can
// be handed to ramdb.NewClient in place of an in-process extension.Host:
//
//	ext, err := client.NewRPCExtension(config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//	  return err
//	}
//	c := ramdb.NewClient(ext, invoker, nil)
//	assembler := ramdb.NewAssembler(c.Dispatcher(), ramdb.DefaultTransferTTL)
//	c.RegisterCallback(assembler.Callback())
//	data, err := c.Fetch(ramdb.Request{Operation: "hgetall", Key: "player_42"})
//
// Every transport, serialization or server side failure is reported as an
// error matching ramdb.ErrChannelUnavailable, never as a "NotFound" result.
// Calls are not idempotent, keep Transport.RetryCount at 1.
package client
