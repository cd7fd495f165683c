// Package id generates run identifiers used to correlate the log lines of
// one consume invocation.
//
// A RunID is 16 bytes big-endian: [8 bytes ms timestamp][4 bytes pid][4 bytes
// counter]. Byte-wise order follows creation order within a process, and the
// pid keeps concurrent invocations on one host apart.
//
//	g := id.NewGenerator()
//	run := g.Next()
//	logger = logger.With(log.Str("run", run.String()))
package id
