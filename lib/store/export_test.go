package store

import "time"

// SetPersisterClock replaces the clock used to name backups.
func SetPersisterClock(p *Persister, now func() time.Time) {
	p.now = now
}
