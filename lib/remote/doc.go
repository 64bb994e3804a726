// Package remote forwards fetched data to functions bound on other processes.
//
// The package focuses on:
//   - A Registry binding function names to Go handlers
//   - A LocalInvoker that runs registry functions in-process
//   - An HTTPInvoker that POSTs invocations to peers over cleartext HTTP/2
//   - A Receiver handler running the bound function for incoming invocations
//
// Key Components:
//
//   - Peers: the YAML peer table mapping recipient names to base URLs.
//     Groups bundle several peers under one name and "*" addresses every
//     peer of the table.
//
//	peers:
//	  server: http://10.0.0.2:8090
//	  hc1: http://10.0.0.3:8090
//	groups:
//	  headless: [hc1]
//
//   - Invocation: the body of POST /invoke. Data travels as a game literal
//     (see package sqf) so numbers, booleans and nested arrays keep their type.
//
//   - Modes: call invocations are answered after the function returned, the
//     reply is discarded by the invoker. Exec invocations are queued by the
//     invoker and run asynchronously by the receiver.
//
// Both invokers implement ramdb.IRemoteInvoker and plug into ramdb.Dispatcher.
package remote
