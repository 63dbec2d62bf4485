// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"expvar"
	"sync"
	"time"
)

var (
	initOnce sync.Once

	compileTotal     *expvar.Int
	compileFailures  *expvar.Int
	compileLatencyMS *expvar.Int

	decodeTotal     *expvar.Int
	decodeFailures  *expvar.Int
	decodeRecords   *expvar.Int
	decodeLatencyMS *expvar.Int

	normalizeTotal *expvar.Int
	normalizeBytes *expvar.Int
)

func ensureInit() {
	initOnce.Do(func() {
		compileTotal = expvar.NewInt("copybookd_compile_total")
		compileFailures = expvar.NewInt("copybookd_compile_failures")
		compileLatencyMS = expvar.NewInt("copybookd_compile_latency_ms")

		decodeTotal = expvar.NewInt("copybookd_decode_total")
		decodeFailures = expvar.NewInt("copybookd_decode_failures")
		decodeRecords = expvar.NewInt("copybookd_decode_records_total")
		decodeLatencyMS = expvar.NewInt("copybookd_decode_latency_ms")

		normalizeTotal = expvar.NewInt("copybookd_normalize_total")
		normalizeBytes = expvar.NewInt("copybookd_normalize_bytes_trimmed")
	})
}

// RecordCompile tracks one copybook compilation attempt.
func RecordCompile(duration time.Duration, err error) {
	ensureInit()
	compileTotal.Add(1)
	compileLatencyMS.Set(duration.Milliseconds())
	if err != nil {
		compileFailures.Add(1)
	}
}

// RecordDecode tracks one decode run and the records it produced.
func RecordDecode(duration time.Duration, records int, err error) {
	ensureInit()
	decodeTotal.Add(1)
	decodeLatencyMS.Set(duration.Milliseconds())
	if err != nil {
		decodeFailures.Add(1)
		return
	}
	decodeRecords.Add(int64(records))
}

// RecordNormalize tracks bytes trimmed while preparing a transfer file.
func RecordNormalize(trimmed int) {
	ensureInit()
	normalizeTotal.Add(1)
	normalizeBytes.Add(int64(trimmed))
}
