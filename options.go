package arena

import "go.uber.org/zap"

// Option configures optional arena behaviour at creation.
type Option func(*options)

type options struct {
	slotSize    int
	heap        bool
	zeroOnReset *bool
	logger      *zap.Logger
}

// WithSlotSize sets the fixed slot size of a Pool arena. Without it a Pool
// arena has a single slot spanning the whole capacity. Other kinds ignore it.
func WithSlotSize(n int) Option {
	return func(o *options) { o.slotSize = n }
}

// WithHeapBacking takes the region from the Go heap instead of mapping
// anonymous memory.
func WithHeapBacking() Option {
	return func(o *options) { o.heap = true }
}

// WithZeroOnReset overrides whether Reset clears the bytes handed out since
// the previous reset. It defaults to true for every kind except Scratch.
func WithZeroOnReset(zero bool) Option {
	return func(o *options) { o.zeroOnReset = &zero }
}

// WithLogger sets the logger for lifecycle events. The default discards.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
