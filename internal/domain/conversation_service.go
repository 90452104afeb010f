package domain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Vovarama1992/companion/internal/models"
	"github.com/Vovarama1992/companion/internal/ports"
	"go.uber.org/zap"
)

const (
	BotSender  = "Bot"
	UserSender = "You"

	GreetingText  = "Hello! Let's chat.\nYou can type 'bye', 'exit', or 'end' to stop the conversation."
	FarewellText  = "Goodbye! Have a great day!"
	AmbiguousText = "It seems there are multiple possibilities. Can you be more specific?"
	NotFoundText  = "Sorry, I couldn't find any information on that topic."
)

var (
	ErrSessionEnded = errors.New("conversation has ended")
	ErrQueueFull    = errors.New("conversation queue is full")
	ErrEmptyInput   = errors.New("empty input")
)

type State int

const (
	StateAwaitingInput State = iota
	StateProcessing
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateProcessing:
		return "processing"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

type turnRunner interface {
	Run(ctx context.Context, sessionID, query string) (*models.Turn, error)
}

type ConversationOptions struct {
	FarewellDelay time.Duration
	QueueSize     int
}

// Conversation owns one chat session. Turns run one at a time on its worker,
// in submission order; results reach the display only through Events.
type Conversation struct {
	id     string
	runner turnRunner
	repo   ports.AssetRepository
	log    *zap.Logger
	delay  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	state State
	timer *time.Timer

	queue chan string

	emitMu sync.Mutex
	closed bool
	events chan ports.ConversationEvent

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewConversation(
	id string,
	runner turnRunner,
	repo ports.AssetRepository,
	opts ConversationOptions,
	log *zap.Logger,
) *Conversation {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Conversation{
		id:     id,
		runner: runner,
		repo:   repo,
		log:    log.With(zap.String("session", id)),
		delay:  opts.FarewellDelay,
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan string, opts.QueueSize),
		// greeting + farewell + three events per queued turn
		events: make(chan ports.ConversationEvent, 3*opts.QueueSize+8),
		done:   make(chan struct{}),
	}

	c.emit(ports.ConversationEvent{Kind: ports.EventMessage, Sender: BotSender, Text: GreetingText})

	c.wg.Add(1)
	go c.work()

	c.log.Info("[CONV][START]")
	return c
}

func (c *Conversation) ID() string { return c.id }

// Events is closed once the conversation is torn down.
func (c *Conversation) Events() <-chan ports.ConversationEvent { return c.events }

// Done is closed after teardown, when Events has been closed.
func (c *Conversation) Done() <-chan struct{} { return c.done }

func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsTermination reports whether text ends the conversation.
// Matching is exact after lowering; surrounding spaces are not stripped.
func IsTermination(text string) bool {
	switch strings.ToLower(text) {
	case "bye", "exit", "end":
		return true
	}
	return false
}

func (c *Conversation) Submit(text string) error {
	c.mu.Lock()
	if c.state == StateEnded {
		c.mu.Unlock()
		return ErrSessionEnded
	}

	if IsTermination(text) {
		c.state = StateEnded
		c.mu.Unlock()

		c.log.Info("[CONV][END] farewell", zap.Duration("teardown_in", c.delay))
		c.emit(ports.ConversationEvent{Kind: ports.EventMessage, Sender: BotSender, Text: FarewellText})

		c.mu.Lock()
		c.timer = time.AfterFunc(c.delay, c.teardown)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}

	select {
	case c.queue <- text:
		return nil
	default:
		c.log.Warn("[CONV][QUEUE-FULL]", zap.String("query", text))
		return ErrQueueFull
	}
}

// Close ends the conversation right away, without a farewell.
func (c *Conversation) Close() {
	c.mu.Lock()
	c.state = StateEnded
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	c.teardown()
}

func (c *Conversation) teardown() {
	c.stopOnce.Do(func() {
		c.cancel()
		c.wg.Wait()

		c.emitMu.Lock()
		c.closed = true
		close(c.events)
		c.emitMu.Unlock()

		close(c.done)
		c.log.Info("[CONV][CLOSED]")
	})
}

func (c *Conversation) emit(ev ports.ConversationEvent) {
	ev.SessionID = c.id

	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.events <- ev:
	case <-c.ctx.Done():
		c.log.Debug("[CONV][DROP] event after cancel", zap.String("kind", string(ev.Kind)))
	}
}

func (c *Conversation) work() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		case query := <-c.queue:
			if !c.transition(StateAwaitingInput, StateProcessing) {
				c.log.Debug("[CONV][DROP] turn after end", zap.String("query", query))
				continue
			}
			c.process(query)
			c.transition(StateProcessing, StateAwaitingInput)
		}
	}
}

func (c *Conversation) transition(from, to State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != from {
		return false
	}
	c.state = to
	return true
}

func (c *Conversation) process(query string) {
	turn, err := c.runner.Run(c.ctx, c.id, query)
	if err != nil {
		c.log.Warn("[CONV][ABORT] turn not run", zap.String("query", query), zap.Error(err))
		return
	}

	c.record(turn)

	if turn.ImageErr != nil && !errors.Is(turn.ImageErr, ports.ErrNoImage) {
		c.log.Warn("[CONV] no image produced", zap.String("query", query), zap.Error(turn.ImageErr))
	}
	if turn.VideoErr != nil && !errors.Is(turn.VideoErr, ports.ErrNoSourceImage) {
		c.log.Warn("[CONV] no video produced", zap.String("query", query), zap.Error(turn.VideoErr))
	}

	c.emit(ports.ConversationEvent{
		Kind:   ports.EventMessage,
		Sender: BotSender,
		Text:   ReplyText(turn.Summary, turn.LookupErr),
		Query:  query,
	})
	if turn.Image != nil {
		c.emit(ports.ConversationEvent{Kind: ports.EventImage, Path: turn.Image.Path, Query: query})
	}
	if turn.Video != nil {
		c.emit(ports.ConversationEvent{Kind: ports.EventVideo, Path: turn.Video.Path, Query: query})
	}
}

func (c *Conversation) record(turn *models.Turn) {
	if c.repo == nil {
		return
	}
	for _, a := range turn.Assets() {
		if err := c.repo.InsertAsset(c.ctx, a); err != nil {
			c.log.Error("[CONV][LEDGER] insert asset", zap.String("path", a.Path), zap.Error(err))
		}
	}
}

// ReplyText is the single place where a lookup outcome becomes user-facing text.
func ReplyText(summary string, err error) string {
	switch {
	case err == nil && strings.TrimSpace(summary) != "":
		return summary
	case err == nil:
		return NotFoundText
	case errors.Is(err, ports.ErrLookupAmbiguous):
		return AmbiguousText
	case errors.Is(err, ports.ErrLookupNotFound):
		return NotFoundText
	default:
		return "An error occurred: " + err.Error()
	}
}
