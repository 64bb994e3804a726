package remote

import "github.com/VictoriaMetrics/metrics"

var (
	sentCall   = metrics.NewCounter(`ramdb_remote_sent_total{mode="call"}`)
	sentExec   = metrics.NewCounter(`ramdb_remote_sent_total{mode="exec"}`)
	sendFailed = metrics.NewCounter(`ramdb_remote_send_errors_total`)

	received      = metrics.NewCounter(`ramdb_remote_received_total`)
	receiveFailed = metrics.NewCounter(`ramdb_remote_receive_errors_total`)

	sendDuration = metrics.NewHistogram(`ramdb_remote_send_duration_seconds`)
)
