package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type resultWriter interface {
	RecordResult(ctx context.Context, r GameResult) (string, error)
}

// Recorder archives results off the caller's goroutine. Record never blocks;
// a full queue drops the result.
type Recorder struct {
	w       resultWriter
	queue   chan GameResult
	timeout time.Duration

	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

func NewRecorder(w resultWriter, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Recorder{
		w:       w,
		queue:   make(chan GameResult, queueSize),
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
}

func (r *Recorder) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.worker(ctx)
	}()
}

func (r *Recorder) Record(res GameResult) {
	select {
	case <-r.done:
		metricResultsDropped.Add(1)
		return
	default:
	}
	select {
	case r.queue <- res:
		metricResultsQueueLen.Set(int64(len(r.queue)))
	default:
		metricResultsDropped.Add(1)
		log.Warn().Str("room_id", res.RoomID).Msg("result_queue_full")
	}
}

// Close stops the worker after draining what is already queued.
func (r *Recorder) Close() {
	r.once.Do(func() { close(r.done) })
	r.wg.Wait()
}

func (r *Recorder) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			for {
				select {
				case res := <-r.queue:
					r.write(ctx, res)
				default:
					return
				}
			}
		case res := <-r.queue:
			metricResultsQueueLen.Set(int64(len(r.queue)))
			r.write(ctx, res)
		}
	}
}

func (r *Recorder) write(ctx context.Context, res GameResult) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	id, err := r.w.RecordResult(ctx, res)
	if err != nil {
		metricResultsFailed.Add(1)
		log.Error().Err(err).Str("room_id", res.RoomID).Msg("record result failed")
		return
	}
	metricResultsRecorded.Add(1)
	log.Debug().Str("result_id", id).Str("room_id", res.RoomID).Str("winner", res.Winner).Msg("result_recorded")
}
