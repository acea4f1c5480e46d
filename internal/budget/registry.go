package budget

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

const (
	StrategyRatio    = "ratio"
	StrategyAbsolute = "absolute"
)

var ErrUnknownClassifier = errors.New("unknown classifier")

// Options carries the settings any registered strategy may need.
type Options struct {
	NearThreshold float64
	NearMargin    decimal.Decimal
}

// Factory builds a classifier from options.
type Factory func(Options) (Classifier, error)

var (
	registryMu sync.RWMutex
	// strategies maps strategy names to their factories.
	strategies = map[string]Factory{
		StrategyRatio: func(o Options) (Classifier, error) {
			return NewRatioClassifier(o.NearThreshold)
		},
		StrategyAbsolute: func(o Options) (Classifier, error) {
			return NewAbsoluteClassifier(o.NearMargin)
		},
	}
)

// NewClassifier returns the classifier registered under name.
func NewClassifier(name string, opts Options) (Classifier, error) {
	registryMu.RLock()
	factory, ok := strategies[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClassifier, name)
	}
	return factory(opts)
}

// RegisterClassifier adds or replaces a named strategy.
func RegisterClassifier(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	strategies[name] = factory
}

// Strategies lists registered strategy names in sorted order.
func Strategies() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
