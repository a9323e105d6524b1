package arena

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// Config is the file form of an arena's creation parameters.
//
//	kind = "pool"
//	alignment = 8
//	capacity = 4096
//	slot_size = 64
//	backing = "mmap"
type Config struct {
	Kind      Kind   `toml:"kind"`
	Alignment int    `toml:"alignment"`
	Capacity  int    `toml:"capacity"`
	SlotSize  int    `toml:"slot_size"`
	Backing   string `toml:"backing"`

	// ZeroOnReset overrides the per-kind default when set.
	ZeroOnReset *bool `toml:"zero_on_reset"`
}

const (
	BackingMmap = "mmap"
	BackingHeap = "heap"
)

// DefaultConfig is a 64 KiB linear arena with minimum alignment.
var DefaultConfig = Config{
	Kind:      Linear,
	Alignment: MinAlignment,
	Capacity:  64 * 1024, // 64 KB
	Backing:   BackingMmap,
}

// LoadConfig reads a TOML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("arena/config: %w", err)
	}
	return cfg, cfg.Validate()
}

// DecodeConfig parses TOML text on top of DefaultConfig.
func DecodeConfig(text string) (Config, error) {
	cfg := DefaultConfig
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("arena/config: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("arena/config: unknown key %q", undec[0].String())
	}
	return cfg, cfg.Validate()
}

// Validate checks the parameters New would reject, so bad files are caught
// before any memory is acquired.
func (c Config) Validate() error {
	if err := checkParams(c.Kind, c.Alignment, c.Capacity); err != nil {
		return fmt.Errorf("arena/config: %w", err)
	}
	if c.Kind == Pool && c.SlotSize < 0 {
		return fmt.Errorf("arena/config: %w: slot size %d", ErrZeroSize, c.SlotSize)
	}
	if c.Kind == Pool && c.SlotSize > c.Capacity {
		return fmt.Errorf("arena/config: %w: slot size %d exceeds capacity %d", ErrSlotTooLarge, c.SlotSize, c.Capacity)
	}
	switch c.Backing {
	case "", BackingMmap, BackingHeap:
	default:
		return errors.New("arena/config: backing must be \"mmap\" or \"heap\"")
	}
	return nil
}

// Options converts the config into creation options.
func (c Config) Options() []Option {
	var opts []Option
	if c.SlotSize > 0 {
		opts = append(opts, WithSlotSize(c.SlotSize))
	}
	if c.Backing == BackingHeap {
		opts = append(opts, WithHeapBacking())
	}
	if c.ZeroOnReset != nil {
		opts = append(opts, WithZeroOnReset(*c.ZeroOnReset))
	}
	return opts
}

// NewFromConfig creates an arena from cfg. Extra options are applied after
// the ones derived from cfg.
func NewFromConfig(cfg Config, opts ...Option) (*Arena, error) {
	all := append(cfg.Options(), opts...)
	a, err := New(cfg.Kind, cfg.Alignment, cfg.Capacity, all...)
	if err != nil {
		o := options{logger: zap.NewNop()}
		for _, opt := range all {
			opt(&o)
		}
		o.logger.Warn("arena creation failed",
			zap.Stringer("kind", cfg.Kind),
			zap.Int("capacity", cfg.Capacity),
			zap.Int("alignment", cfg.Alignment),
			zap.Error(err),
		)
		return nil, err
	}
	return a, nil
}
