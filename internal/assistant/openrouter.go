package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tartampluch/go-caltemp/internal/config"
)

// RemoteError is a failed completion. Message is what the conversation shows.
type RemoteError struct {
	Status  int // HTTP status, 0 for transport failures
	Message string
	Err     error
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() error { return e.Err }

// OpenRouterClient implements Completer against the OpenRouter
// OpenAI-compatible chat completion endpoint.
type OpenRouterClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewOpenRouterClient creates a client with the configured timeout and the
// attribution headers OpenRouter expects.
func NewOpenRouterClient() *OpenRouterClient {
	return &OpenRouterClient{
		BaseURL: config.OpenRouterBaseURL,
		HTTPClient: &http.Client{
			Timeout:   config.HTTPTimeout,
			Transport: &headerTransport{base: http.DefaultTransport},
		},
	}
}

// Complete sends one non-streaming chat completion request and returns the
// content of the first choice.
func (c *OpenRouterClient) Complete(ctx context.Context, creds Credentials, messages []Message) (string, error) {
	if creds.APIKey == "" {
		return "", &RemoteError{Message: config.ErrMissingAPIKey}
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompRemote),
		slog.String(config.LogKeyURL, c.BaseURL),
		slog.String(config.LogKeyModel, creds.ModelOrDefault()),
	)

	cfg := openai.DefaultConfig(creds.APIKey)
	cfg.BaseURL = c.BaseURL
	if c.HTTPClient != nil {
		cfg.HTTPClient = c.HTTPClient
	}
	client := openai.NewClientWithConfig(cfg)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       creds.ModelOrDefault(),
		Messages:    toChatMessages(messages),
		Temperature: config.DefaultTemperature,
		MaxTokens:   config.DefaultMaxTokens,
	})
	if err != nil {
		rerr := mapError(err)
		log.Warn(config.MsgRemoteFailed,
			slog.Int(config.LogKeyStatus, rerr.Status),
			slog.String(config.LogKeyError, err.Error()))
		return "", rerr
	}

	if len(resp.Choices) == 0 {
		return "", &RemoteError{Message: config.ErrEmptyChoices}
	}

	log.Debug(config.MsgRemoteCall, slog.Int(config.LogKeySizeBytes, len(resp.Choices[0].Message.Content)))
	return resp.Choices[0].Message.Content, nil
}

func toChatMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

// mapError turns a go-openai failure into the message shown to the user:
// the API error text when the body carried one, else the HTTP status.
func mapError(err error) *RemoteError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf(config.FormatHTTPStatus, apiErr.HTTPStatusCode)
		}
		return &RemoteError{Status: apiErr.HTTPStatusCode, Message: msg, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &RemoteError{
			Status:  reqErr.HTTPStatusCode,
			Message: fmt.Sprintf(config.FormatHTTPStatus, reqErr.HTTPStatusCode),
			Err:     err,
		}
	}

	return &RemoteError{Message: err.Error(), Err: err}
}

// headerTransport adds the OpenRouter attribution headers to every request.
type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set(config.HeaderReferer, config.RefererValue)
	r.Header.Set(config.HeaderTitle, config.TitleValue)
	r.Header.Set(config.HeaderUserAgent, config.UserAgent)
	return t.base.RoundTrip(r)
}
