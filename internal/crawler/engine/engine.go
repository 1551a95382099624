package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Processor defines how to scrape a single page into data items (T).
type Processor[T any] interface {
	Process(ctx context.Context, url string) ([]T, error)
}

// Sink defines how to persist the data.
type Sink[T any] interface {
	Save(batch []T) error
}

// Guard can veto a URL before it is fetched. A non-nil error skips the page.
type Guard interface {
	Check(ctx context.Context, url string) error
}

// Politeness is the fixed pause taken after every successful page.
// Failed pages are not followed by a pause.
type Politeness struct {
	Delay time.Duration

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPoliteness(delay time.Duration) Politeness {
	return Politeness{Delay: delay}
}

// Pause blocks for Delay, or until ctx is done.
func (p Politeness) Pause(ctx context.Context) error {
	if p.Delay <= 0 {
		return nil
	}
	if p.sleep != nil {
		return p.sleep(ctx, p.Delay)
	}

	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Config holds engine settings.
type Config struct {
	Politeness Politeness
	Guard      Guard
	Logger     *zap.Logger
}

// Engine scrapes a list of URLs one after another and hands the
// collected items to its sinks.
type Engine[T any] struct {
	config    Config
	processor Processor[T]
	sinks     []Sink[T]
	logger    *zap.Logger
}

func NewEngine[T any](cfg Config, proc Processor[T], sinks ...Sink[T]) *Engine[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine[T]{
		config:    cfg,
		processor: proc,
		sinks:     sinks,
		logger:    logger,
	}
}

// Collect scrapes every URL in order and returns the items of the pages that
// succeeded, in URL order. A failing page is logged and contributes nothing.
func (engine *Engine[T]) Collect(ctx context.Context, urls []string) []T {
	var collected []T
	for _, link := range urls {
		items, ok := engine.scrape(ctx, link)
		if !ok {
			continue
		}
		collected = append(collected, items...)

		if err := engine.config.Politeness.Pause(ctx); err != nil {
			engine.logger.Warn("politeness pause interrupted", zap.String("url", link), zap.Error(err))
		}
	}
	return collected
}

// scrape runs one page under its own error boundary. ok is false when the
// page failed and was logged.
func (engine *Engine[T]) scrape(ctx context.Context, link string) (items []T, ok bool) {
	engine.logger.Info(fmt.Sprintf("scraping page: %s", link), zap.String("url", link))

	err := engine.check(ctx, link)
	if err == nil {
		items, err = engine.processor.Process(ctx, link)
	}
	if err != nil {
		engine.logger.Warn(fmt.Sprintf("error scraping page: %s. %v", link, err),
			zap.String("url", link), zap.Error(err))
		return nil, false
	}
	return items, true
}

func (engine *Engine[T]) check(ctx context.Context, link string) error {
	if engine.config.Guard == nil {
		return nil
	}
	return engine.config.Guard.Check(ctx, link)
}

// Run collects all URLs and then saves the result to every sink in order.
// Sink errors are returned as-is; there is no partial-output recovery.
func (engine *Engine[T]) Run(ctx context.Context, urls ...string) error {
	collected := engine.Collect(ctx, urls)
	engine.logger.Info("scrape finished",
		zap.Int("pages", len(urls)), zap.Int("items", len(collected)))

	for _, sink := range engine.sinks {
		if err := sink.Save(collected); err != nil {
			return err
		}
	}
	return nil
}
