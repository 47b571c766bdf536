package notifier

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/xox-backend/internal/entity"
	"github.com/rocketscienceinc/xox-backend/internal/metrics"
)

const (
	defaultWorkers          = 4
	defaultQueueSize        = 256
	defaultBroadcastTimeout = 2 * time.Second
)

// Broadcaster delivers a payload to every subscriber of channel.
type Broadcaster interface {
	Broadcast(ctx context.Context, channel string, payload []byte) error
}

type notificationMetrics interface {
	Notification(result string)
}

type Options struct {
	Workers          int
	QueueSize        int
	BroadcastTimeout time.Duration
}

// Dispatcher fans session views out to a Broadcaster off the request path.
// Views of one session always land on the same worker, so they are sent in
// the order they were dispatched, and a view older than one already sent for
// that session is dropped.
type Dispatcher struct {
	logger      *slog.Logger
	broadcaster Broadcaster
	metrics     notificationMetrics
	timeout     time.Duration

	shards []chan *entity.SessionView
	wg     sync.WaitGroup
}

func NewDispatcher(logger *slog.Logger, broadcaster Broadcaster, metrics notificationMetrics, opts Options) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}

	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}

	if opts.BroadcastTimeout <= 0 {
		opts.BroadcastTimeout = defaultBroadcastTimeout
	}

	shards := make([]chan *entity.SessionView, opts.Workers)
	for i := range shards {
		shards[i] = make(chan *entity.SessionView, opts.QueueSize)
	}

	return &Dispatcher{
		logger:      logger.With("component", "notifier"),
		broadcaster: broadcaster,
		metrics:     metrics,
		timeout:     opts.BroadcastTimeout,
		shards:      shards,
	}
}

// Run - starts the workers and blocks until ctx is done and queued views are flushed.
func (that *Dispatcher) Run(ctx context.Context) {
	for _, shard := range that.shards {
		that.wg.Add(1)
		go that.work(ctx, shard)
	}

	that.wg.Wait()
}

// Dispatch - queues view for broadcast. It never blocks: a full queue drops the view.
func (that *Dispatcher) Dispatch(view *entity.SessionView) {
	channel := entity.ChannelKey(view.ID)

	select {
	case that.shards[that.shardOf(channel)] <- view:
	default:
		that.metrics.Notification(metrics.ResultDropped)
		that.logger.Warn("notification queue is full, view dropped",
			"channel", channel, "version", view.Version)
	}
}

func (that *Dispatcher) shardOf(channel string) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(channel))

	return int(hash.Sum32() % uint32(len(that.shards)))
}

func (that *Dispatcher) work(ctx context.Context, shard chan *entity.SessionView) {
	defer that.wg.Done()

	lastSent := make(map[string]int64)

	for {
		select {
		case view := <-shard:
			that.send(ctx, lastSent, view)
		case <-ctx.Done():
			for {
				select {
				case view := <-shard:
					that.send(ctx, lastSent, view)
				default:
					return
				}
			}
		}
	}
}

func (that *Dispatcher) send(ctx context.Context, lastSent map[string]int64, view *entity.SessionView) {
	channel := entity.ChannelKey(view.ID)
	log := that.logger.With("channel", channel, "version", view.Version)

	if view.Version <= lastSent[channel] {
		that.metrics.Notification(metrics.ResultDropped)
		log.Debug("stale view skipped", "sent", lastSent[channel])
		return
	}

	payload, err := json.Marshal(view)
	if err != nil {
		that.metrics.Notification(metrics.ResultFailed)
		log.Error("could not marshal view", "error", err)
		return
	}

	// queued views are still flushed after shutdown starts
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), that.timeout)
	defer cancel()

	// terminal views end tracking of the channel
	if view.State == entity.StateFinished || view.State == entity.StateDraw {
		delete(lastSent, channel)
	} else {
		lastSent[channel] = view.Version
	}

	if err = that.broadcaster.Broadcast(ctx, channel, payload); err != nil {
		that.metrics.Notification(metrics.ResultFailed)
		log.Error("broadcast failed", "error", err)
		return
	}

	that.metrics.Notification(metrics.ResultOK)
}
