// Package chat runs one conversational turn: quota check, prompt assembly,
// model call, action parsing and execution, and history bookkeeping.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/notechat/internal/action"
	"github.com/starford/notechat/internal/apperr"
	"github.com/starford/notechat/internal/executor"
	"github.com/starford/notechat/internal/models"
	"github.com/starford/notechat/internal/oracle"
	"github.com/starford/notechat/internal/parser"
	"github.com/starford/notechat/internal/prompt"
	"github.com/starford/notechat/internal/storage"
	"github.com/starford/notechat/internal/usage"
)

// DefaultHistoryLimit is how many prior messages are replayed into the prompt.
const DefaultHistoryLimit = 50

// Store is the persistence the chat service needs.
type Store interface {
	storage.NoteStore
	storage.MessageStore
}

// Notifier is told about every note change made by a chat action.
type Notifier func(owner string, kind action.Kind, noteID string)

// Outcome is the result of one executed action.
type Outcome struct {
	Message string `json:"message"`
	Action  any    `json:"action"`
}

// Reply is the answer to a chat message. Action is the last non-null action
// result of the turn.
type Reply struct {
	Content string    `json:"content"`
	Action  any       `json:"action"`
	Results []Outcome `json:"results,omitempty"`
}

// Service handles chat turns.
type Service struct {
	store        Store
	exec         *executor.Executor
	oracle       oracle.Oracle
	prompts      *prompt.Builder
	limiter      *usage.Limiter
	notify       Notifier
	historyLimit int
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLimiter enforces daily quotas before each turn.
func WithLimiter(l *usage.Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithNotifier registers a change listener.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notify = n }
}

// WithHistoryLimit sets how many prior messages feed the prompt.
func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a chat service.
func NewService(store Store, exec *executor.Executor, orc oracle.Oracle, prompts *prompt.Builder, opts ...Option) *Service {
	s := &Service{
		store:        store,
		exec:         exec,
		oracle:       orc,
		prompts:      prompts,
		historyLimit: DefaultHistoryLimit,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History returns owner's full conversation, oldest first.
func (s *Service) History(ctx context.Context, owner string) ([]models.ChatMessage, error) {
	msgs, err := s.store.RecentMessages(ctx, owner, 0)
	if err != nil {
		return nil, fmt.Errorf("chat: history: %w", err)
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	return msgs, nil
}

// Send processes one user message for owner.
//
// A bare number answering a pending disambiguation is resolved directly,
// without a model call. Anything else drops the pending choice and goes to
// the model.
func (s *Service) Send(ctx context.Context, owner, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.ErrEmptyMessage
	}

	if s.limiter != nil {
		if err := s.limiter.Check(ctx, owner); err != nil {
			return nil, err
		}
	}

	history, err := s.store.RecentMessages(ctx, owner, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("chat: load history: %w", err)
	}

	if session := s.pendingSession(history); session != nil && executor.IsChoice(message) {
		return s.resolveChoice(ctx, owner, message, session)
	}

	notes, err := s.store.List(ctx, owner, storage.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("chat: load notes: %w", err)
	}
	text, err := s.prompts.Chat(notes, history, message)
	if err != nil {
		return nil, err
	}

	if err := s.appendMessage(ctx, owner, models.RoleUser, message, nil); err != nil {
		return nil, err
	}

	completion, err := s.oracle.Complete(ctx, text)
	if err != nil {
		s.logger.Error("chat: oracle failed",
			slog.String("owner", owner),
			slog.String("error", err.Error()))
		if !errors.Is(err, apperr.ErrOracleFailure) {
			err = fmt.Errorf("%w: %v", apperr.ErrOracleFailure, err)
		}
		return nil, err
	}

	// A failed action still leaves the completion billed and earlier actions
	// applied, so the partial reply is saved before the error is returned.
	reply, session, runErr := s.run(ctx, owner, completion.Text)
	if err := s.finish(ctx, owner, reply, session, completion.Tokens); err != nil {
		return nil, err
	}
	if runErr != nil {
		return nil, runErr
	}
	return reply, nil
}

func (s *Service) pendingSession(history []models.ChatMessage) *executor.Session {
	if len(history) == 0 {
		return nil
	}
	last := history[len(history)-1]
	if last.Role != models.RoleAssistant || last.Pending == "" {
		return nil
	}
	session, err := executor.DecodeSession(last.Pending)
	if err != nil {
		s.logger.Warn("chat: dropping unreadable pending choice", slog.String("error", err.Error()))
		return nil
	}
	return session
}

func (s *Service) resolveChoice(ctx context.Context, owner, message string, session *executor.Session) (*Reply, error) {
	if err := s.appendMessage(ctx, owner, models.RoleUser, message, nil); err != nil {
		return nil, err
	}
	res, err := s.exec.Execute(ctx, owner, session.Reply(message))
	if err != nil {
		return nil, err
	}
	s.changed(owner, res)

	reply := &Reply{
		Content: res.Message,
		Action:  res.ActionResult(),
		Results: []Outcome{{Message: res.Message, Action: res.ActionResult()}},
	}
	if err := s.finish(ctx, owner, reply, res.Session, 0); err != nil {
		return nil, err
	}
	return reply, nil
}

// run parses the model output and executes its actions in order. Actions
// after one that needs disambiguation are skipped, since they may refer to
// the note still being chosen. When an action fails, the reply built so far
// is returned with the error and the remaining actions are not run.
func (s *Service) run(ctx context.Context, owner, text string) (*Reply, *executor.Session, error) {
	text = strings.TrimSpace(text)
	descriptors := parser.Parse(text)
	if len(descriptors) == 0 {
		return &Reply{Content: text}, nil, nil
	}

	reply := &Reply{}
	var messages []string
	var session *executor.Session
	for i, d := range descriptors {
		res, err := s.exec.Execute(ctx, owner, d)
		if err != nil {
			s.logger.Error("chat: action failed",
				slog.String("owner", owner),
				slog.String("kind", string(d.Kind)),
				slog.String("error", err.Error()))
			msg := actionFailed(d.Kind)
			reply.Results = append(reply.Results, Outcome{Message: msg})
			reply.Content = strings.Join(append(messages, msg), "\n\n")
			return reply, nil, err
		}
		s.changed(owner, res)

		outcome := Outcome{Message: res.Message, Action: res.ActionResult()}
		reply.Results = append(reply.Results, outcome)
		messages = append(messages, res.Message)
		if outcome.Action != nil {
			reply.Action = outcome.Action
		}

		if res.State == executor.StateDisambiguating {
			session = res.Session
			if rest := len(descriptors) - i - 1; rest > 0 {
				messages = append(messages, skipped(rest))
			}
			break
		}
	}
	reply.Content = strings.Join(messages, "\n\n")
	return reply, session, nil
}

func actionFailed(kind action.Kind) string {
	return fmt.Sprintf("Could not finish %s: the assistant is unavailable.", kind)
}

func skipped(n int) string {
	if n == 1 {
		return "1 more action was skipped until you choose a note."
	}
	return fmt.Sprintf("%d more actions were skipped until you choose a note.", n)
}

func (s *Service) changed(owner string, res executor.Result) {
	if s.notify != nil && res.Changed() {
		s.notify(owner, res.Kind, res.NoteID)
	}
}

func (s *Service) finish(ctx context.Context, owner string, reply *Reply, session *executor.Session, tokens int) error {
	if err := s.appendMessage(ctx, owner, models.RoleAssistant, reply.Content, session); err != nil {
		return err
	}
	if s.limiter != nil {
		if err := s.limiter.Record(ctx, owner, tokens); err != nil {
			s.logger.Warn("chat: record usage failed",
				slog.String("owner", owner),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func (s *Service) appendMessage(ctx context.Context, owner, role, content string, session *executor.Session) error {
	msg := &models.ChatMessage{OwnerID: owner, Role: role, Content: content}
	if session != nil {
		pending, err := session.Encode()
		if err != nil {
			return err
		}
		msg.Pending = pending
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return fmt.Errorf("chat: save message: %w", err)
	}
	return nil
}
