package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RecorderConfig contains configuration for the async recorder.
type RecorderConfig struct {
	// Enabled enables audit recording.
	Enabled bool `yaml:"enabled"`

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder implements Sink by buffering records on a channel and draining
// them to storage from a background worker, so evaluations never block on
// storage writes.
type Recorder struct {
	storage    Storage
	config     RecorderConfig
	recordChan chan Record
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger
}

// NewRecorder creates a recorder over the given storage backend and starts
// its background worker.
func NewRecorder(storage Storage, config RecorderConfig) *Recorder {
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)
	return r
}

// RecordDecision implements Sink. It enqueues without blocking; when the
// buffer is full the record is dropped and logged, because audit pressure
// must never stall decision composition.
func (r *Recorder) RecordDecision(ctx context.Context, rec Record) error {
	if !r.config.Enabled {
		return nil
	}

	select {
	case r.recordChan <- rec:
		return nil
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record", "record_id", rec.ID)
		return nil
	default:
		r.logger.Error("audit channel full, dropping record",
			"record_id", rec.ID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return nil
	}
}

// Close drains the channel and waits for pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down audit recorder")
	close(r.done)
	r.wg.Wait()
	r.logger.Info("audit recorder shut down complete")
	return nil
}

// worker drains the record channel and writes to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case rec := <-r.recordChan:
			r.writeRecord(rec)

		case <-r.done:
			r.logger.Info("draining audit channel before shutdown",
				"pending_count", len(r.recordChan),
			)
			for {
				select {
				case rec := <-r.recordChan:
					r.writeRecord(rec)
				default:
					r.logger.Info("audit channel drained")
					return
				}
			}
		}
	}
}

// writeRecord writes a single record to storage.
func (r *Recorder) writeRecord(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, &rec); err != nil {
		r.logger.Error("failed to store audit record",
			"record_id", rec.ID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)
	r.logger.Debug("audit record stored",
		"record_id", rec.ID,
		"action", rec.Decision.Action,
		"duration_ms", duration.Milliseconds(),
	)
	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"record_id", rec.ID,
			"duration_ms", duration.Milliseconds(),
		)
	}
}
