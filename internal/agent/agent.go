// Package agent routes each incoming message through the chain of
// interpreters and turns the first match into a reply.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/gmsas95/finbot/internal/errors"
	"github.com/gmsas95/finbot/internal/goals"
	"github.com/gmsas95/finbot/internal/ledger"
	"github.com/gmsas95/finbot/internal/metrics"
	"github.com/gmsas95/finbot/internal/onboarding"
	"github.com/gmsas95/finbot/internal/security"
)

// inputHandler labels messages rejected before reaching the chain
const inputHandler = "input"

// Request is one inbound chat message
type Request struct {
	Owner   string
	Text    string
	Now     time.Time
	Channel string
	// Category optionally overrides classification of extracted transactions
	Category string
}

// Result is the outcome of one interpreter. Rejected carries the typed error
// when the message was recognized but its content failed validation.
type Result struct {
	Matched  bool
	Reply    string
	Handler  string
	Rejected error
}

// NotMatched tells the agent to try the next interpreter
var NotMatched = Result{}

// Matched wraps a successful reply
func Matched(reply string) Result {
	return Result{Matched: true, Reply: reply}
}

// Interpreter is one link in the chain. Handle returns NotMatched when the
// message is not for it. Typed user errors may be returned as errors; the
// agent turns them into corrective replies.
type Interpreter interface {
	Name() string
	Handle(ctx context.Context, req Request) (Result, error)
}

// Agent handles conversation turns
type Agent struct {
	chain     []Interpreter
	ledger    ledger.Ledger
	goals     *goals.Service
	validator *security.InputValidator
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// Deps are the collaborators of the default chain
type Deps struct {
	Ledger     ledger.Ledger
	Goals      *goals.Service
	Onboarding *onboarding.Machine
	Goal       *goals.Interpreter
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// New creates an agent with the default chain: onboarding, expense, income,
// goals. A nil Onboarding machine drops the first link.
func New(d Deps) *Agent {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Default()
	}
	if d.Goal == nil {
		d.Goal = goals.NewInterpreter(nil)
	}

	var chain []Interpreter
	if d.Onboarding != nil {
		chain = append(chain, &onboardingInterpreter{machine: d.Onboarding, metrics: d.Metrics})
	}
	chain = append(chain,
		&expenseInterpreter{ledger: d.Ledger, metrics: d.Metrics},
		&incomeInterpreter{ledger: d.Ledger, metrics: d.Metrics},
		&goalInterpreter{interp: d.Goal, service: d.Goals, metrics: d.Metrics},
	)

	return NewWithChain(d.Ledger, d.Goals, d.Logger, d.Metrics, chain...)
}

// NewWithChain creates an agent over an explicit interpreter chain
func NewWithChain(l ledger.Ledger, svc *goals.Service, logger *zap.Logger, m *metrics.Metrics, chain ...Interpreter) *Agent {
	return &Agent{
		chain:     chain,
		ledger:    l,
		goals:     svc,
		validator: security.NewInputValidator(),
		logger:    logger,
		metrics:   m,
	}
}

// Handle runs the chain and returns the first match. When nothing matches
// the result is not matched and carries the help hint as reply.
func (a *Agent) Handle(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	if req.Now.IsZero() {
		req.Now = time.Now()
	}
	defer func() {
		a.metrics.RecordHandleDuration(req.Channel, time.Since(start))
	}()

	if err := a.validator.Validate(req.Text); err != nil {
		rejected := apperrors.New(apperrors.ErrInvalidInput.Code,
			"Mensagem inválida: muito longa ou com caracteres não permitidos.", err)
		a.metrics.RecordMessage(inputHandler, metrics.OutcomeRejected)
		a.metrics.RecordParseError(rejected.Code)
		a.logger.Warn("Message failed input validation",
			zap.String("owner", req.Owner),
			zap.Error(err),
		)
		return Result{Matched: true, Reply: UserMessage(rejected), Handler: inputHandler, Rejected: rejected}, nil
	}

	for _, interp := range a.chain {
		res, err := interp.Handle(ctx, req)
		res.Handler = interp.Name()

		if err != nil {
			if !IsUserError(err) {
				a.metrics.RecordMessage(interp.Name(), metrics.OutcomeError)
				a.logger.Error("Interpreter failed",
					zap.String("owner", req.Owner),
					zap.String("handler", interp.Name()),
					zap.String("text", security.Redact(req.Text)),
					zap.Error(err),
				)
				return Result{Handler: interp.Name()}, fmt.Errorf("%s: %w", interp.Name(), err)
			}
			res = Result{Matched: true, Reply: UserMessage(err), Handler: interp.Name(), Rejected: err}
		}

		if !res.Matched {
			continue
		}

		if res.Rejected != nil {
			code := apperrors.GetCode(res.Rejected)
			a.metrics.RecordMessage(interp.Name(), metrics.OutcomeRejected)
			a.metrics.RecordParseError(code)
			a.logger.Info("Message rejected",
				zap.String("owner", req.Owner),
				zap.String("handler", interp.Name()),
				zap.String("code", code),
				zap.String("text", security.Redact(req.Text)),
			)
		} else {
			a.metrics.RecordMessage(interp.Name(), metrics.OutcomeMatched)
			a.logger.Debug("Message handled",
				zap.String("owner", req.Owner),
				zap.String("handler", interp.Name()),
			)
		}
		return res, nil
	}

	a.metrics.RecordMessage("none", metrics.OutcomeNotMatched)
	return Result{Reply: NotUnderstoodMessage}, nil
}

// IsUserError reports whether err should be shown to the user as a
// corrective message rather than treated as a failure.
func IsUserError(err error) bool {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code == apperrors.ErrLedgerUnavailable.Code {
		return false
	}
	_, ok := userMessages[appErr.Code]
	return ok
}
