package textgen

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/baseball-stats/internal/platform/logging"
	"github.com/riskibarqy/baseball-stats/internal/platform/tracing"
	"github.com/riskibarqy/baseball-stats/internal/platform/resilience"
)

var tracer = otel.Tracer("github.com/riskibarqy/baseball-stats/external/textgen")

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4-turbo"
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.7
	chatCompletionPath = "/chat/completions"
)

var errTransient = crerr.New("text generation transient failure")

type ClientConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	MaxTokens      int
	Temperature    float64
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client calls an OpenAI-compatible chat completions endpoint and returns the
// first choice.
type Client struct {
	http        *fasthttp.Client
	endpoint    string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	logger      *logging.Logger
	breaker     *resilience.CircuitBreaker
}

func NewClient(cfg ClientConfig) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL, err := validateHTTPBaseURL(baseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid TEXTGEN_BASE_URL")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                "baseball-stats",
			MaxIdleConnDuration: 30 * time.Second,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		},
		endpoint:    baseURL + chatCompletionPath,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
		logger:      logger,
		breaker:     newBreaker(cfg.CircuitBreaker, logger),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	N           int           `json:"n"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends prompt as a single user message.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := sonic.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.maxTokens,
		N:           1,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", crerr.Wrap(err, "marshal chat request")
	}

	ctx, span := tracing.StartChild(ctx, tracer, "textgen.Client.Generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("textgen.model", c.model),
			attribute.Int("textgen.prompt_length", len(prompt)),
		),
	)
	defer span.End()

	var out string
	err = c.breaker.Do(ctx, func(ctx context.Context) error {
		var callErr error
		out, callErr = c.do(ctx, body)
		return callErr
	}, func(err error) bool { return crerr.Is(err, errTransient) })
	if err != nil {
		return "", err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, body []byte) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.SetBodyRaw(body)

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", crerr.Mark(crerr.Wrap(err, "send chat request"), errTransient)
	}

	status := resp.StatusCode()
	raw := resp.Body()
	c.logger.DebugContext(ctx, "text generation response",
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	var decoded chatResponse
	decodeErr := sonic.Unmarshal(raw, &decoded)

	if status < 200 || status >= 300 {
		msg := abbreviateBody(raw)
		if decodeErr == nil && decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		err := crerr.Newf("text generation status=%d: %s", status, msg)
		if status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError {
			return "", crerr.Mark(err, errTransient)
		}
		return "", err
	}
	if decodeErr != nil {
		return "", crerr.Wrap(decodeErr, "decode chat response")
	}
	if len(decoded.Choices) == 0 {
		return "", crerr.New("chat response has no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}

func validateHTTPBaseURL(candidate string) (string, error) {
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return strings.TrimRight(candidate, "/"), nil
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func newBreaker(cfg resilience.CircuitBreakerConfig, logger *logging.Logger) *resilience.CircuitBreaker {
	cfg.OnStateChange = func(from, to resilience.CircuitState) {
		logger.Warn("text generation circuit breaker state changed", "from", from, "to", to)
	}
	return cfg.Build()
}
