package microfolio

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config is the explicit configuration of the engine: the ordered symbol
// universe, the per-symbol stop-loss thresholds, and the seed state used
// on the very first run. It is passed in at construction and never read
// from ambient process state.
type Config struct {
	Symbols  []string
	StopLoss map[string]Money
	Seed     State
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbol universe is empty")
	}
	seen := make(map[string]struct{}, len(c.Symbols))
	for _, symbol := range c.Symbols {
		if symbol == "" {
			return fmt.Errorf("symbol universe contains an empty symbol")
		}
		if _, dup := seen[symbol]; dup {
			return fmt.Errorf("symbol %q appears twice in the universe", symbol)
		}
		seen[symbol] = struct{}{}
	}
	for symbol, threshold := range c.StopLoss {
		if !slices.Contains(c.Symbols, symbol) {
			return fmt.Errorf("stop-loss threshold for %q which is not in the symbol universe", symbol)
		}
		if !threshold.IsPositive() {
			return fmt.Errorf("stop-loss threshold for %q must be positive, got %s", symbol, threshold)
		}
	}
	if err := c.Seed.Check(); err != nil {
		return fmt.Errorf("invalid seed state: %w", err)
	}
	for symbol := range c.Seed.Symbols() {
		if !slices.Contains(c.Symbols, symbol) {
			return fmt.Errorf("seed holds %q which is not in the symbol universe", symbol)
		}
	}
	return nil
}

// jconfig is the YAML-facing form of a Config. Amounts are decimal strings
// so a hand-written file never goes through binary floating point.
type jconfig struct {
	Symbols  []string          `yaml:"symbols"`
	StopLoss map[string]string `yaml:"stop_loss"`
	Seed     struct {
		Cash     string           `yaml:"cash"`
		Holdings map[string]int64 `yaml:"holdings"`
	} `yaml:"seed"`
}

// ParseConfig parses a YAML configuration document.
func ParseConfig(data []byte) (Config, error) {
	var j jconfig
	if err := yaml.Unmarshal(data, &j); err != nil {
		return Config{}, fmt.Errorf("cannot parse configuration: %w", err)
	}

	cfg := Config{
		Symbols:  j.Symbols,
		StopLoss: make(map[string]Money, len(j.StopLoss)),
	}
	for symbol, s := range j.StopLoss {
		threshold, err := ParseMoney(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid stop-loss threshold for %q: %w", symbol, err)
		}
		cfg.StopLoss[symbol] = threshold
	}

	cash := M(0)
	if j.Seed.Cash != "" {
		var err error
		cash, err = ParseMoney(j.Seed.Cash)
		if err != nil {
			return Config{}, fmt.Errorf("invalid seed cash: %w", err)
		}
	}
	holdings := make(map[string]Quantity, len(j.Seed.Holdings))
	for symbol, n := range j.Seed.Holdings {
		holdings[symbol] = Q(n)
	}
	cfg.Seed = NewState(cash, holdings, Date{})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read configuration file %q: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("configuration file %q: %w", path, err)
	}
	return cfg, nil
}
