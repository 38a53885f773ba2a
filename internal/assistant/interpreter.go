package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-caltemp/internal/config"
	"github.com/tartampluch/go-caltemp/internal/engine"
)

// Completer sends a dialogue to a remote text-generation service and
// returns the reply text.
type Completer interface {
	Complete(ctx context.Context, creds Credentials, messages []Message) (string, error)
}

// Interpreter turns a free-form message into an EventIntent or a reply.
// It holds no conversation state; callers must not run two Interpret calls
// for the same conversation concurrently.
type Interpreter struct {
	Clock     engine.Clock
	Completer Completer
}

// NewInterpreter creates an Interpreter using the wall clock.
func NewInterpreter(c Completer) *Interpreter {
	return &Interpreter{
		Clock:     engine.RealClock{},
		Completer: c,
	}
}

// Interpret tries the local command pattern first, then the remote
// fallback when creds carries an API key. It never returns an error:
// failures are folded into a KindRemoteError result with displayable text.
func (in *Interpreter) Interpret(ctx context.Context, text string, history []Message, creds Credentials) Result {
	log := slog.With(config.LogKeyComponent, config.CompAssistant)
	now := in.Clock.Now()

	if intent, ok := ParseCommand(text, now); ok {
		log.Info(config.MsgLocalMatch,
			config.LogKeyTitle, intent.Title,
			config.LogKeyDate, intent.Date)
		return Result{Kind: KindLocalIntent, Intent: &intent}
	}

	if creds.APIKey == "" {
		log.Debug(config.MsgNoCredential)
		return Result{Kind: KindGuidance, Text: config.GuidanceReply}
	}

	if in.Completer == nil {
		return remoteFailure(errors.New(config.ErrCompleterAbsent))
	}

	messages := BuildMessages(history, text, now)
	log.Info(config.MsgRemoteCall,
		config.LogKeyModel, creds.ModelOrDefault(),
		config.LogKeyHistory, len(messages))

	start := time.Now()
	reply, err := in.Completer.Complete(ctx, creds, messages)
	if err != nil {
		log.Error(config.MsgRemoteFailed, config.LogKeyError, err)
		return remoteFailure(err)
	}
	log.Debug(config.MsgRemoteCall, config.LogKeyDuration, time.Since(start).Milliseconds())

	if intent, ok := ExtractAction(reply); ok {
		log.Info(config.MsgRemoteIntent,
			config.LogKeyTitle, intent.Title,
			config.LogKeyDate, intent.Date)
		return Result{Kind: KindRemoteIntent, Intent: &intent, Text: reply}
	}

	return Result{Kind: KindRemoteText, Text: reply}
}

func remoteFailure(err error) Result {
	return Result{
		Kind: KindRemoteError,
		Text: fmt.Sprintf(config.FormatRemoteError, err.Error()),
		Err:  err,
	}
}
