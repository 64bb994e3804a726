package ramdb

import (
	"github.com/VictoriaMetrics/metrics"
)

var (
	fetchNotFound = metrics.NewCounter(`ramdb_fetch_total{outcome="not_found"}`)
	fetchChunked  = metrics.NewCounter(`ramdb_fetch_total{outcome="chunked"}`)
	fetchInline   = metrics.NewCounter(`ramdb_fetch_total{outcome="inline"}`)

	fetchUnavailable = metrics.NewCounter(`ramdb_fetch_errors_total{kind="unavailable"}`)
	fetchDecode      = metrics.NewCounter(`ramdb_fetch_errors_total{kind="decode"}`)

	dispatchCall = metrics.NewCounter(`ramdb_dispatch_total{mode="call"}`)
	dispatchExec = metrics.NewCounter(`ramdb_dispatch_total{mode="exec"}`)

	chunkFrames   = metrics.NewCounter(`ramdb_chunk_frames_total`)
	chunkComplete = metrics.NewCounter(`ramdb_chunk_transfers_total{state="complete"}`)
	chunkExpired  = metrics.NewCounter(`ramdb_chunk_transfers_total{state="expired"}`)
	chunkFailed   = metrics.NewCounter(`ramdb_chunk_transfers_total{state="failed"}`)
)

func countOutcome(k Kind) {
	switch k {
	case KindNotFound:
		fetchNotFound.Inc()
	case KindChunked:
		fetchChunked.Inc()
	default:
		fetchInline.Inc()
	}
}
