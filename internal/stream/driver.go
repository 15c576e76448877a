// Package stream runs one chat turn at a time: it sends the user's question,
// reads the streamed answer, frames it into JSON objects and folds their
// content into the conversation.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"chatstream/internal/conversation"
	"chatstream/internal/framing"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Opener sends a question and returns the streamed response body.
type Opener interface {
	Open(ctx context.Context, content string) (io.ReadCloser, error)
}

type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Hooks are called on the goroutine running Submit. Any of them may be nil.
type Hooks struct {
	// OnUpdate receives the conversation after every change.
	OnUpdate func(conversation.Conversation)
	// OnParseError receives each candidate that was skipped.
	OnParseError func(error)
	// OnState receives every state transition.
	OnState func(State)
}

type Options struct {
	Framing      string
	Charset      string
	ReadSize     int
	StrictSchema bool
	Greeting     string
	Logger       *slog.Logger
	Hooks        Hooks
}

type TurnResult struct {
	ID       uuid.UUID
	Bytes    int64
	Chunks   int
	Objects  int
	Failures int
	Content  string
	Duration time.Duration
}

type Driver struct {
	opener Opener
	opts   Options
	log    *slog.Logger

	mu    sync.Mutex
	conv  conversation.Conversation
	state State
	last  TurnResult
}

func NewDriver(opener Opener, opts Options) (*Driver, error) {
	if opener == nil {
		return nil, errors.New("stream opener is required")
	}
	if _, err := framing.New(opts.Framing); err != nil {
		return nil, err
	}
	if _, err := NewTextDecoder(opts.Charset); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Driver{
		opener: opener,
		opts:   opts,
		log:    logger,
		conv:   conversation.New(opts.Greeting),
	}, nil
}

func (d *Driver) Conversation() conversation.Conversation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conv
}

func (d *Driver) Messages() []conversation.Message {
	return d.Conversation().Messages()
}

func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// InFlight reports whether a turn is being sent or streamed. New submissions
// are rejected while it is true.
func (d *Driver) InFlight() bool {
	return d.State() != StateIdle
}

func (d *Driver) LastTurn() TurnResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Reset drops the conversation back to the greeting.
func (d *Driver) Reset() error {
	d.mu.Lock()
	if d.state != StateIdle {
		d.mu.Unlock()
		return ErrTurnInProgress
	}
	d.conv = conversation.New(d.opts.Greeting)
	conv := d.conv
	d.mu.Unlock()
	d.notifyUpdate(conv)
	return nil
}

// Submit appends the user's message as typed and runs the turn until the
// response stream ends. It returns ErrTurnInProgress without touching the
// conversation when another turn is in flight. Parse failures are reported
// through the hooks and do not fail the turn; a *TransportError does, leaving
// the messages rendered so far in place.
func (d *Driver) Submit(ctx context.Context, text string) (TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return TurnResult{}, ErrEmptyInput
	}

	d.mu.Lock()
	if d.state != StateIdle {
		d.mu.Unlock()
		return TurnResult{}, ErrTurnInProgress
	}
	d.state = StateSending
	d.conv = d.conv.AddUser(text)
	conv := d.conv
	d.mu.Unlock()
	defer d.setState(StateIdle)

	d.notifyState(StateSending)
	d.notifyUpdate(conv)

	result := TurnResult{ID: uuid.New()}
	start := time.Now()
	err := d.run(ctx, text, &result)
	result.Duration = time.Since(start)

	d.mu.Lock()
	d.last = result
	d.mu.Unlock()

	if err != nil {
		d.log.Error("turn failed",
			"turn", result.ID,
			"received", humanize.Bytes(uint64(result.Bytes)),
			"error", err,
		)
		return result, err
	}
	d.log.Info("turn complete",
		"turn", result.ID,
		"received", humanize.Bytes(uint64(result.Bytes)),
		"chunks", result.Chunks,
		"objects", result.Objects,
		"failures", result.Failures,
		"duration", result.Duration,
	)
	return result, nil
}

func (d *Driver) run(ctx context.Context, text string, result *TurnResult) error {
	splitter, err := framing.New(d.opts.Framing)
	if err != nil {
		return err
	}
	decoder, err := NewTextDecoder(d.opts.Charset)
	if err != nil {
		return err
	}

	body, err := d.opener.Open(ctx, text)
	if err != nil {
		return &TransportError{Op: "open", Err: err}
	}
	defer body.Close()

	var turn conversation.Turn
	source := NewReaderSource(body, d.opts.ReadSize)
	for {
		chunk, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &TransportError{Op: "read", Err: err}
		}
		if len(chunk) == 0 {
			continue
		}
		if result.Chunks == 0 {
			d.setState(StateStreaming)
		}
		result.Chunks++
		result.Bytes += int64(len(chunk))

		fragment, err := decoder.Decode(chunk)
		if err != nil {
			return &TransportError{Op: "decode", Err: err}
		}
		d.log.Debug("fragment", "turn", result.ID, "bytes", len(chunk), "text", len(fragment))
		d.fold(splitter.Split(fragment), &turn, result)
	}

	tail, err := decoder.Finish()
	if err != nil {
		return &TransportError{Op: "decode", Err: err}
	}
	d.fold(splitter.Split(tail), &turn, result)
	d.fold(splitter.Flush(), &turn, result)
	result.Content = turn.Text()
	return nil
}

// fold parses each candidate in order and applies its content to the
// assistant message of this turn.
func (d *Driver) fold(candidates []string, turn *conversation.Turn, result *TurnResult) {
	for _, candidate := range candidates {
		content, err := ParseObject(candidate)
		var schemaErr *SchemaError
		switch {
		case err == nil:
		case errors.As(err, &schemaErr) && !d.opts.StrictSchema:
			d.log.Debug("object without content", "turn", result.ID, "reason", schemaErr.Reason)
		default:
			result.Failures++
			d.log.Warn("skipping candidate", "turn", result.ID, "error", err)
			if d.opts.Hooks.OnParseError != nil {
				d.opts.Hooks.OnParseError(err)
			}
			continue
		}

		result.Objects++
		cumulative := turn.Add(content)
		d.mu.Lock()
		d.conv = d.conv.FoldAssistant(cumulative)
		conv := d.conv
		d.mu.Unlock()
		d.notifyUpdate(conv)
	}
}

func (d *Driver) setState(state State) {
	d.mu.Lock()
	changed := d.state != state
	d.state = state
	d.mu.Unlock()
	if changed {
		d.notifyState(state)
	}
}

func (d *Driver) notifyState(state State) {
	if d.opts.Hooks.OnState != nil {
		d.opts.Hooks.OnState(state)
	}
}

func (d *Driver) notifyUpdate(conv conversation.Conversation) {
	if d.opts.Hooks.OnUpdate != nil {
		d.opts.Hooks.OnUpdate(conv)
	}
}
