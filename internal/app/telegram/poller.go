package telegram

import (
	"context"
	"time"

	"github.com/Mrhacklx/Terabis/internal/app/logger"
)

const retryDelay = 3 * time.Second

// Poller крутит цикл getUpdates и складывает обновления в Processor
type Poller struct {
	source      UpdateSource
	processor   *Processor
	pollTimeout int
}

func NewPoller(source UpdateSource, processor *Processor, pollTimeout int) *Poller {
	return &Poller{
		source:      source,
		processor:   processor,
		pollTimeout: pollTimeout,
	}
}

// Run блокируется до отмены ctx. Ошибки getUpdates временные: цикл
// логирует их и продолжает после паузы.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := p.source.GetUpdates(ctx, offset, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error().Err(err).Msg("get updates failed")
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			p.processor.Submit(update)
		}
	}
}
