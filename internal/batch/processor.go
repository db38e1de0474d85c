// Package batch replays recorded chat messages through the agent, for bulk
// imports of historical expenses and income.
package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gmsas95/finbot/internal/agent"
	"github.com/gmsas95/finbot/internal/dates"
	apperrors "github.com/gmsas95/finbot/internal/errors"
)

// Handler is implemented by *agent.Agent
type Handler interface {
	Handle(ctx context.Context, req agent.Request) (agent.Result, error)
}

type Config struct {
	MaxConcurrency int
	Timeout        time.Duration
	RetryCount     int
	RetryDelay     time.Duration
	SkipInvalid    bool
	// RPM caps agent calls per minute across all workers (0 = unlimited)
	RPM          int
	DefaultOwner string
	Location     *time.Location
}

// InputItem is one recorded message. Date, when set, is the DD/MM/YYYY day
// the message was originally sent and becomes the reference for relative
// dates such as "ontem". Category, when set, replaces classification.
type InputItem struct {
	ID       string `json:"id"`
	Owner    string `json:"owner"`
	Message  string `json:"message"`
	Date     string `json:"date,omitempty"`
	Category string `json:"category,omitempty"`
}

type OutputItem struct {
	ID           string        `json:"id"`
	Owner        string        `json:"owner"`
	Input        string        `json:"input"`
	Reply        string        `json:"reply"`
	Handler      string        `json:"handler,omitempty"`
	Matched      bool          `json:"matched"`
	RejectCode   string        `json:"reject_code,omitempty"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
	Attempts     int           `json:"attempts"`
	ResponseTime time.Duration `json:"response_time"`
}

type Result struct {
	Total     int
	Success   int
	Failed    int
	Unmatched int
	Duration  time.Duration
	Items     []OutputItem
	StartTime time.Time
	EndTime   time.Time
}

func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 3,
		Timeout:        30 * time.Second,
		RetryCount:     2,
		RetryDelay:     time.Second,
		SkipInvalid:    true,
		DefaultOwner:   "cli:local",
	}
}

type Processor struct {
	handler Handler
	config  Config
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewProcessor(h Handler, cfg Config, logger *zap.Logger) *Processor {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.DefaultOwner == "" {
		cfg.DefaultOwner = "cli:local"
	}

	p := &Processor{handler: h, config: cfg, logger: logger}
	if cfg.RPM > 0 {
		burst := cfg.RPM / 60
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RPM)/60.0), burst)
	}
	return p
}

func (p *Processor) ProcessFile(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	items, err := p.loadInputFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load input file: %w", err)
	}

	result := p.Process(ctx, items)

	if outputPath != "" {
		if err := p.saveOutputFile(outputPath, result); err != nil {
			return result, fmt.Errorf("failed to save output file: %w", err)
		}
	}

	return result, nil
}

// Process runs items through the handler. Items of one owner always land on
// the same worker, so each owner's messages are applied in input order while
// different owners proceed in parallel. Result items keep the input order.
func (p *Processor) Process(ctx context.Context, items []InputItem) *Result {
	result := &Result{
		Total:     len(items),
		StartTime: time.Now(),
		Items:     make([]OutputItem, len(items)),
	}

	queues := make([]chan int, p.config.MaxConcurrency)
	for i := range queues {
		queues[i] = make(chan int, len(items))
	}

	var wg sync.WaitGroup
	for _, q := range queues {
		wg.Add(1)
		go func(q <-chan int) {
			defer wg.Done()
			for idx := range q {
				result.Items[idx] = p.processItem(ctx, items[idx])
			}
		}(q)
	}

	for idx := range items {
		if items[idx].Owner == "" {
			items[idx].Owner = p.config.DefaultOwner
		}
		queues[p.shard(items[idx].Owner)] <- idx
	}
	for _, q := range queues {
		close(q)
	}
	wg.Wait()

	for _, out := range result.Items {
		switch {
		case !out.Success:
			result.Failed++
		case !out.Matched:
			result.Success++
			result.Unmatched++
		default:
			result.Success++
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	p.logger.Info("Batch finished",
		zap.Int("total", result.Total),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", result.Duration),
	)
	return result
}

func (p *Processor) shard(owner string) int {
	h := fnv.New32a()
	h.Write([]byte(owner))
	return int(h.Sum32() % uint32(p.config.MaxConcurrency))
}

func (p *Processor) processItem(ctx context.Context, item InputItem) OutputItem {
	output := OutputItem{
		ID:    item.ID,
		Owner: item.Owner,
		Input: item.Message,
	}

	now := time.Now().In(p.config.Location)
	if item.Date != "" {
		day, err := dates.ParseDeadline(item.Date, p.config.Location)
		if err != nil {
			output.Error = fmt.Sprintf("invalid date %q", item.Date)
			return output
		}
		now = day.Add(12 * time.Hour)
	}

	var (
		res agent.Result
		err error
	)
	for attempt := 0; attempt <= p.config.RetryCount; attempt++ {
		output.Attempts = attempt + 1

		if p.limiter != nil {
			if err = p.limiter.Wait(ctx); err != nil {
				break
			}
		}

		processCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
		start := time.Now()
		res, err = p.handler.Handle(processCtx, agent.Request{
			Owner:    item.Owner,
			Text:     item.Message,
			Now:      now,
			Channel:  "batch",
			Category: item.Category,
		})
		output.ResponseTime = time.Since(start)
		cancel()

		// only an unavailable ledger is worth retrying
		if err == nil || !errors.Is(err, apperrors.ErrLedgerUnavailable) {
			break
		}
		if attempt < p.config.RetryCount {
			select {
			case <-time.After(p.config.RetryDelay):
				continue
			case <-ctx.Done():
				err = ctx.Err()
			}
			break
		}
	}

	if err != nil {
		output.Error = err.Error()
		output.Reply = agent.UserMessage(err)
		return output
	}

	output.Reply = res.Reply
	output.Handler = res.Handler
	output.Matched = res.Matched
	if res.Rejected != nil {
		output.RejectCode = apperrors.GetCode(res.Rejected)
	}
	output.Success = true
	return output
}

func (p *Processor) loadInputFile(path string) ([]InputItem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".json") || strings.HasSuffix(lower, ".jsonl") {
		return p.loadJSON(file)
	}
	return p.loadText(file)
}

func (p *Processor) loadJSON(r io.Reader) ([]InputItem, error) {
	var items []InputItem
	decoder := json.NewDecoder(r)

	for decoder.More() {
		var item InputItem
		if err := decoder.Decode(&item); err != nil {
			if p.config.SkipInvalid {
				p.logger.Warn("Skipping invalid batch item", zap.Error(err))
				// the decoder cannot resync after a syntax error
				var syntaxErr *json.SyntaxError
				if errors.As(err, &syntaxErr) {
					break
				}
				continue
			}
			return nil, fmt.Errorf("failed to decode JSON: %w", err)
		}
		if strings.TrimSpace(item.Message) == "" {
			continue
		}
		if item.ID == "" {
			item.ID = fmt.Sprintf("item-%d", len(items)+1)
		}
		items = append(items, item)
	}

	return items, nil
}

func (p *Processor) loadText(r io.Reader) ([]InputItem, error) {
	var items []InputItem
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		items = append(items, InputItem{
			ID:      fmt.Sprintf("line-%d", lineNum),
			Message: line,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return items, nil
}

func (p *Processor) saveOutputFile(path string, result *Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if strings.HasSuffix(strings.ToLower(path), ".jsonl") {
		encoder := json.NewEncoder(file)
		for _, item := range result.Items {
			if err := encoder.Encode(item); err != nil {
				return err
			}
		}
		return nil
	}

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	for _, item := range result.Items {
		fmt.Fprintf(file, "=== %s (%s) ===\n", item.ID, item.Owner)
		fmt.Fprintf(file, "Input: %s\n", item.Input)
		fmt.Fprintf(file, "Reply: %s\n", item.Reply)
		if item.Error != "" {
			fmt.Fprintf(file, "Error: %s\n", item.Error)
		}
		fmt.Fprintf(file, "Attempts: %d | Time: %v\n\n", item.Attempts, item.ResponseTime)
	}

	return nil
}

func (r *Result) Summary() string {
	var sb strings.Builder
	sb.WriteString("=== Batch Import Summary ===\n")
	sb.WriteString(fmt.Sprintf("Total:     %d\n", r.Total))
	sb.WriteString(fmt.Sprintf("Success:   %d\n", r.Success))
	sb.WriteString(fmt.Sprintf("Unmatched: %d\n", r.Unmatched))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", r.Failed))
	sb.WriteString(fmt.Sprintf("Duration:  %v\n", r.Duration))
	return sb.String()
}
