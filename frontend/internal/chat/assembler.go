package chat

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/itchan-dev/parley/shared/domain"
	"github.com/itchan-dev/parley/shared/logger"
)

// ErrorText replaces the assistant message when the answer could not be read.
const ErrorText = "Error: Unable to get response."

var (
	ErrSubmissionInFlight = errors.New("a message is already being answered")
	ErrEmptySubmission    = errors.New("type a message or attach a file")
)

type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateDone
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Transport sends one chat submission. history holds the messages before
// this turn, implementations may drop it.
type Transport interface {
	Send(ctx context.Context, prompt string, files []File, history []domain.Message) (*http.Response, error)
}

// Event is published on every state change and every content update.
type Event struct {
	State     State
	MessageID domain.MsgId
	Content   string
}

type Observer func(Event)

// Assembler turns a streamed answer into updates of the session.
type Assembler struct {
	session   *Session
	transport Transport
	observer  Observer
}

// NewAssembler wires the assembler to its session. observer may be nil.
func NewAssembler(session *Session, transport Transport, observer Observer) *Assembler {
	if observer == nil {
		observer = func(Event) {}
	}
	return &Assembler{session: session, transport: transport, observer: observer}
}

// Submit sends prompt and files and streams the answer into the session.
// It returns the terminal state. Only ErrEmptySubmission and
// ErrSubmissionInFlight are returned as errors, both leave the session as is.
// Transport problems end in StateFailed with ErrorText as the answer.
func (a *Assembler) Submit(ctx context.Context, prompt string, files []File) (State, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" && len(files) == 0 {
		return StateIdle, ErrEmptySubmission
	}
	if !a.session.TryBegin() {
		return StateIdle, ErrSubmissionInFlight
	}
	defer a.session.End()

	history := a.session.Messages()

	userContent := prompt
	if userContent == "" {
		userContent = domain.AttachmentPlaceholder
	}
	assistantID := uuid.NewString()
	a.session.Append(domain.Message{Id: uuid.NewString(), Role: domain.RoleUser, Content: userContent})
	a.session.Append(domain.Message{Id: assistantID, Role: domain.RoleAssistant})
	a.observer(Event{State: StateSending, MessageID: assistantID})

	resp, err := a.transport.Send(ctx, prompt, files, history)
	if err != nil {
		if ctx.Err() != nil {
			return a.finish(StateCancelled, assistantID, "")
		}
		logger.Log.Warn("chat request failed", "error", err)
		return a.fail(assistantID)
	}
	if resp.Body == nil {
		return a.fail(assistantID)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Log.Warn("chat request rejected", "status", resp.StatusCode, "body", string(msg))
		return a.fail(assistantID)
	}

	a.observer(Event{State: StateStreaming, MessageID: assistantID})
	return a.stream(ctx, resp.Body, assistantID)
}

// stream reads the body until EOF. Multi-byte characters split between
// chunks are held back until complete, invalid bytes become U+FFFD.
func (a *Assembler) stream(ctx context.Context, body io.Reader, id domain.MsgId) (State, error) {
	decoded := transform.NewReader(body, unicode.UTF8.NewDecoder())
	var acc strings.Builder
	buf := make([]byte, 4096)

	for {
		n, err := decoded.Read(buf)
		if n > 0 {
			acc.Write(buf[:n])
			content := acc.String()
			if !a.session.Update(id, content) {
				logger.Log.Debug("answer target removed, stop reading", "id", id)
				return StateCancelled, nil
			}
			a.observer(Event{State: StateStreaming, MessageID: id, Content: content})
		}
		if errors.Is(err, io.EOF) {
			return a.finish(StateDone, id, acc.String())
		}
		if err != nil {
			if ctx.Err() != nil {
				return a.finish(StateCancelled, id, acc.String())
			}
			logger.Log.Warn("chat stream broken", "read", acc.Len(), "error", err)
			return a.fail(id)
		}
	}
}

func (a *Assembler) fail(id domain.MsgId) (State, error) {
	a.session.Update(id, ErrorText)
	return a.finish(StateFailed, id, ErrorText)
}

func (a *Assembler) finish(state State, id domain.MsgId, content string) (State, error) {
	a.observer(Event{State: state, MessageID: id, Content: content})
	return state, nil
}
