package agent

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/gmsas95/finbot/internal/errors"
	"github.com/gmsas95/finbot/internal/finance"
	"github.com/gmsas95/finbot/internal/goals"
	"github.com/gmsas95/finbot/internal/ledger"
	"github.com/gmsas95/finbot/internal/metrics"
	"github.com/gmsas95/finbot/internal/onboarding"
)

type onboardingInterpreter struct {
	machine *onboarding.Machine
	metrics *metrics.Metrics
}

func (o *onboardingInterpreter) Name() string { return "onboarding" }

func (o *onboardingInterpreter) Handle(ctx context.Context, req Request) (Result, error) {
	st, err := o.machine.Load(req.Owner)
	if err != nil {
		return NotMatched, err
	}

	if st == nil {
		needs, err := o.machine.NeedsOnboarding(ctx, req.Owner)
		if err != nil || !needs {
			return NotMatched, err
		}
		reply, err := o.machine.Begin(ctx, req.Owner)
		if err != nil {
			return NotMatched, err
		}
		return Matched(reply.Text), nil
	}

	reply, err := o.machine.Step(ctx, req.Owner, req.Text)
	if err != nil {
		return NotMatched, err
	}
	o.metrics.RecordOnboardingStep(string(reply.Stage))
	return Result{Matched: true, Reply: reply.Text, Rejected: reply.Err}, nil
}

type expenseInterpreter struct {
	ledger  ledger.Ledger
	metrics *metrics.Metrics
}

func (e *expenseInterpreter) Name() string { return "expense" }

func (e *expenseInterpreter) Handle(ctx context.Context, req Request) (Result, error) {
	tx, err := finance.NewExtractor().WithReference(req.Now).WithCategory(req.Category).ExtractExpense(req.Text)
	return appendExtracted(ctx, e.ledger, e.metrics, req, tx, err)
}

type incomeInterpreter struct {
	ledger  ledger.Ledger
	metrics *metrics.Metrics
}

func (i *incomeInterpreter) Name() string { return "income" }

func (i *incomeInterpreter) Handle(ctx context.Context, req Request) (Result, error) {
	tx, err := finance.NewExtractor().WithReference(req.Now).WithCategory(req.Category).ExtractIncome(req.Text)
	return appendExtracted(ctx, i.ledger, i.metrics, req, tx, err)
}

func appendExtracted(ctx context.Context, l ledger.Ledger, m *metrics.Metrics, req Request, tx *ledger.Transaction, err error) (Result, error) {
	if errors.Is(err, apperrors.ErrUnrecognizedFormat) {
		return NotMatched, nil
	}
	if err != nil {
		return NotMatched, err
	}

	tx.Owner = req.Owner
	if err := l.AppendTransaction(ctx, tx); err != nil {
		return NotMatched, fmt.Errorf("failed to append transaction: %w", err)
	}
	m.RecordTransaction(string(tx.Kind), tx.Category)

	return Matched(finance.Describe(tx)), nil
}

type goalInterpreter struct {
	interp  *goals.Interpreter
	service *goals.Service
	metrics *metrics.Metrics
}

func (g *goalInterpreter) Name() string { return "goals" }

func (g *goalInterpreter) Handle(ctx context.Context, req Request) (Result, error) {
	switch intent := g.interp.Interpret(req.Text).(type) {
	case goals.ContributeIntent:
		res, err := g.service.Contribute(ctx, req.Owner, intent.GoalName, intent.Amount)
		if err != nil {
			return NotMatched, err
		}
		g.metrics.RecordGoalEvent("contribution")
		if res.Completed {
			g.metrics.RecordGoalEvent("completed")
		}
		return Matched(goals.FormatContribution(res)), nil

	case goals.CreateIntent:
		goal, err := g.service.Create(ctx, req.Owner, intent)
		if err != nil {
			return NotMatched, err
		}
		g.metrics.RecordGoalEvent("created")
		return Matched(goals.FormatCreated(goal)), nil

	case goals.ListIntent:
		list, err := g.service.List(ctx, req.Owner)
		if err != nil {
			return NotMatched, err
		}
		return Matched(goals.FormatList(list)), nil

	case goals.InvalidIntent:
		return NotMatched, intent.Err
	}

	return NotMatched, nil
}
