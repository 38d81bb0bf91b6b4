// Package core defines the fundamental types shared across loadsmith.
package core

import "time"

// Record is a single synthetic key/value pair flowing through the step
// chain. Records are immutable once produced; ownership passes from
// producer to consumer stage by stage.
type Record struct {
	Key   []byte
	Value []byte
}

// Size returns the total payload size of the record in bytes.
func (r Record) Size() int64 {
	return int64(len(r.Key) + len(r.Value))
}

// Sample is a single metric observation, produced once per terminal record
// (or per bundle) and consumed exclusively by the aggregator.
type Sample struct {
	Elapsed time.Duration
	Records int64
	Errors  int64
	Bytes   int64
}
