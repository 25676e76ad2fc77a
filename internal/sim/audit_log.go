package sim

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	auditBufferSize    = 4096                   // circular buffer size
	auditMaxPerSec     = 20000                  // global rate limit
	auditBatchSize     = 128                    // events per batch write
	auditFlushInterval = 100 * time.Millisecond // how often to flush
)

// auditRecord is the NDJSON row written for each event.
type auditRecord struct {
	Event
	Kind      string `json:"kind"`
	Sequence  uint64 `json:"sequence"`
	Timestamp int64  `json:"timestamp"`
}

// AuditLog persists the engine's event stream as append-only NDJSON for
// replay verification and debugging. Writes go through a bounded circular
// buffer and a global rate limiter, so a pathological tick can never stall
// the simulation loop; overflow drops the oldest events and counts them.
type AuditLog struct {
	// circular buffer (single producer: the tick loop)
	buffer    [auditBufferSize]auditRecord
	writeHead uint64 // atomic - producer position
	readHead  uint64 // atomic - consumer position

	limiter *rate.Limiter

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	filePath string
	file     *os.File
	fileMu   sync.Mutex

	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
}

// NewAuditLog creates a stopped audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{
		limiter:  rate.NewLimiter(auditMaxPerSec, auditMaxPerSec/10),
		stopChan: make(chan struct{}),
	}
}

// Start opens the output file and begins the async writer goroutine. An
// empty path keeps the log running without file output (events are counted
// and discarded).
func (al *AuditLog) Start(filePath string) error {
	if al.running.Load() {
		return nil
	}

	al.filePath = filePath
	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		al.file = file
	}

	al.running.Store(true)
	al.writerWg.Add(1)
	go al.writerLoop()
	return nil
}

// Stop flushes and shuts the log down. Safe to call more than once.
func (al *AuditLog) Stop() {
	al.stopOnce.Do(func() {
		al.running.Store(false)
		close(al.stopChan)
		al.writerWg.Wait()

		al.fileMu.Lock()
		if al.file != nil {
			al.file.Close()
		}
		al.fileMu.Unlock()
	})
}

// Emit queues an event for persistence. Returns false when rate limited or
// not running; the simulation does not care either way.
func (al *AuditLog) Emit(ev Event) bool {
	if !al.running.Load() {
		return false
	}
	if !al.limiter.Allow() {
		atomic.AddUint64(&al.droppedCount, 1)
		return false
	}

	// The counter is post-incremented, so this record's slot and sequence
	// are head-1. The reader consumes [tail, head).
	head := atomic.AddUint64(&al.writeHead, 1)
	seq := head - 1
	tail := atomic.LoadUint64(&al.readHead)
	if head-tail >= auditBufferSize {
		// Rolling window: drop the oldest record under pressure.
		atomic.AddUint64(&al.readHead, 1)
		atomic.AddUint64(&al.droppedCount, 1)
	}

	al.buffer[seq%auditBufferSize] = auditRecord{
		Event:     ev,
		Kind:      ev.Type.String(),
		Sequence:  seq,
		Timestamp: time.Now().UnixNano(),
	}
	atomic.AddUint64(&al.totalCount, 1)
	return true
}

// EmitAll queues a whole tick's event slice.
func (al *AuditLog) EmitAll(events []Event) {
	for _, ev := range events {
		al.Emit(ev)
	}
}

// writerLoop batches and writes records to disk asynchronously.
func (al *AuditLog) writerLoop() {
	defer al.writerWg.Done()

	ticker := time.NewTicker(auditFlushInterval)
	defer ticker.Stop()

	batch := make([]auditRecord, 0, auditBatchSize)
	for {
		select {
		case <-al.stopChan:
			for {
				batch = al.collectBatch(batch[:0])
				if len(batch) == 0 {
					return
				}
				al.flushBatch(batch)
			}
		case <-ticker.C:
			batch = al.collectBatch(batch[:0])
			if len(batch) > 0 {
				al.flushBatch(batch)
			}
		}
	}
}

// collectBatch reads available records from the circular buffer.
func (al *AuditLog) collectBatch(batch []auditRecord) []auditRecord {
	head := atomic.LoadUint64(&al.writeHead)
	tail := atomic.LoadUint64(&al.readHead)

	for i := tail; i < head && len(batch) < auditBatchSize; i++ {
		batch = append(batch, al.buffer[i%auditBufferSize])
	}
	if len(batch) > 0 {
		atomic.AddUint64(&al.readHead, uint64(len(batch)))
	}
	return batch
}

// flushBatch writes records to disk as newline-delimited JSON.
func (al *AuditLog) flushBatch(batch []auditRecord) {
	al.fileMu.Lock()
	defer al.fileMu.Unlock()

	if al.file == nil {
		return
	}
	for _, rec := range batch {
		data, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		al.file.Write(data)
		al.file.Write([]byte("\n"))
	}
}

// Stats returns counters for monitoring.
func (al *AuditLog) Stats() map[string]uint64 {
	head := atomic.LoadUint64(&al.writeHead)
	tail := atomic.LoadUint64(&al.readHead)
	return map[string]uint64{
		"total":   atomic.LoadUint64(&al.totalCount),
		"dropped": atomic.LoadUint64(&al.droppedCount),
		"pending": head - tail,
	}
}
