package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/baseball-stats/internal/domain/playerstat"
	"github.com/riskibarqy/baseball-stats/internal/platform/logging"
)

const defaultGenerateTimeout = 60 * time.Second

// TextGenerator forwards a prompt to a text-generation service.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type SummaryService struct {
	repo      playerstat.Repository
	generator TextGenerator
	logger    *logging.Logger
	timeout   time.Duration
}

func NewSummaryService(repo playerstat.Repository, generator TextGenerator, logger *logging.Logger, timeout time.Duration) *SummaryService {
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SummaryService{repo: repo, generator: generator, logger: logger, timeout: timeout}
}

// Prompt forwards free text verbatim and returns the first completion.
func (s *SummaryService) Prompt(ctx context.Context, prompt string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SummaryService.Prompt")
	defer span.End()

	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt is required", ErrInvalidInput)
	}
	return s.generate(ctx, prompt)
}

// SummarizePlayer asks the generator to describe one stored player.
func (s *SummaryService) SummarizePlayer(ctx context.Context, id int64) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SummaryService.SummarizePlayer")
	defer span.End()

	rec, exists, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get player stat: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("%w: player id=%d", ErrNotFound, id)
	}

	prompt, err := playerSummaryPrompt(rec)
	if err != nil {
		return "", err
	}
	return s.generate(ctx, prompt)
}

func playerSummaryPrompt(rec playerstat.Record) (string, error) {
	stats, err := sonic.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode player stats: %w", err)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("Tell me about ")
	_, _ = buf.WriteString(rec.PlayerName)
	_, _ = buf.WriteString(". Stats: ")
	_, _ = buf.Write(stats)
	return buf.String(), nil
}

func (s *SummaryService) generate(ctx context.Context, prompt string) (string, error) {
	if s.generator == nil {
		return "", fmt.Errorf("%w: text generation is not configured", ErrDependencyUnavailable)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	out, err := s.generator.Generate(genCtx, prompt)
	if err != nil {
		s.logger.WarnContext(ctx, "text generation failed",
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return "", wrapDependencyError("generate text", err)
	}
	return out, nil
}
