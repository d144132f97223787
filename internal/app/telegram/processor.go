package telegram

import (
	"context"
	"sync"

	"github.com/Mrhacklx/Terabis/internal/app/logger"
	"github.com/Mrhacklx/Terabis/internal/app/usecase"
)

const (
	defaultQueueSize = 64
)

// Handler обрабатывает одно входящее сообщение до конца
type Handler interface {
	Handle(ctx context.Context, msg usecase.InboundMessage) ([]usecase.Reply, error)
}

// Processor распределяет обновления по фиксированному пулу воркеров.
// Шард выбирается по идентификатору пользователя, поэтому события одного
// пользователя обрабатываются строго по порядку, а события разных
// пользователей — параллельно, в пределах числа воркеров.
type Processor struct {
	handler Handler
	sender  Sender
	queues  []chan Update
	wg      sync.WaitGroup
}

func NewProcessor(handler Handler, sender Sender, workers int) *Processor {
	if workers <= 0 {
		workers = 1
	}

	queues := make([]chan Update, workers)
	for i := range queues {
		queues[i] = make(chan Update, defaultQueueSize)
	}

	return &Processor{
		handler: handler,
		sender:  sender,
		queues:  queues,
	}
}

// Run запускает воркеры; ctx отменяет сетевые вызовы в обработке
func (p *Processor) Run(ctx context.Context) {
	for i := range p.queues {
		p.wg.Add(1)
		go func(queue chan Update) {
			defer p.wg.Done()
			for update := range queue {
				p.process(ctx, update)
			}
		}(p.queues[i])
	}
}

// Stop закрывает очереди и дожидается, пока воркеры дообработают остаток.
// Submit после Stop недопустим.
func (p *Processor) Stop() {
	for _, queue := range p.queues {
		close(queue)
	}
	p.wg.Wait()
}

// Submit ставит обновление в очередь своего шарда. Переполненная очередь
// роняет обновление с предупреждением: транспорт доставляет как минимум
// однажды, а все операции бота безопасны при повторной доставке.
func (p *Processor) Submit(update Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	shard := update.Message.From.ID % int64(len(p.queues))
	if shard < 0 {
		shard = -shard
	}

	select {
	case p.queues[shard] <- update:
	default:
		logger.Warn().
			Int64("user_id", update.Message.From.ID).
			Int64("update_id", update.UpdateID).
			Msg("update queue overflow, dropping update")
	}
}

func (p *Processor) process(ctx context.Context, update Update) {
	msg := usecase.InboundMessage{
		UserID:    update.Message.From.ID,
		ChatID:    update.Message.Chat.ID,
		FirstName: update.Message.From.FirstName,
		Text:      update.Message.Text,
	}

	replies, err := p.handler.Handle(ctx, msg)
	if err != nil {
		logger.Error().
			Err(err).
			Int64("user_id", msg.UserID).
			Msg("command failed")
		replies = []usecase.Reply{{ChatID: msg.ChatID, Text: usecase.MsgInternalError}}
	}

	for _, reply := range replies {
		if err := p.sender.SendMessage(ctx, reply.ChatID, reply.Text, reply.Markdown); err != nil {
			logger.Error().
				Err(err).
				Int64("chat_id", reply.ChatID).
				Msg("send reply failed")
		}
	}
}
