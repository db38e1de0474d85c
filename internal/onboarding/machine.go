// Package onboarding runs the first-use conversation that collects the
// user's name, salary and first goal.
package onboarding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gmsas95/finbot/internal/dates"
	apperrors "github.com/gmsas95/finbot/internal/errors"
	"github.com/gmsas95/finbot/internal/goals"
	"github.com/gmsas95/finbot/internal/ledger"
	"github.com/gmsas95/finbot/internal/money"
	"github.com/gmsas95/finbot/internal/textnorm"
)

// Stage is the point of the conversation a user is in
type Stage string

const (
	StageAwaitingName         Stage = "awaiting_name"
	StageAwaitingSalary       Stage = "awaiting_salary"
	StageAwaitingGoalName     Stage = "awaiting_first_goal_name"
	StageAwaitingGoalAmount   Stage = "awaiting_first_goal_amount"
	StageAwaitingGoalDeadline Stage = "awaiting_first_goal_deadline"
	StageNone                 Stage = "none"
)

// PartialGoal accumulates the first goal across turns
type PartialGoal struct {
	Name     string           `json:"name,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Deadline *time.Time       `json:"deadline,omitempty"`
}

// State is the per-user onboarding session
type State struct {
	Stage       Stage       `json:"stage"`
	UserName    string      `json:"user_name,omitempty"`
	PartialGoal PartialGoal `json:"partial_goal"`
	StartedAt   time.Time   `json:"started_at"`
}

// SessionStore persists onboarding sessions. A missing key is reported as
// apperrors.ErrNotFound. Implemented by store.Store.
type SessionStore interface {
	GetSession(key string) ([]byte, error)
	SetSession(key string, value []byte, ttl time.Duration) error
	DeleteSession(key string) error
}

// Reply is what the user sees after one onboarding turn. Err is set when
// the input was rejected; the stage is then unchanged.
type Reply struct {
	Text  string
	Stage Stage
	Done  bool
	Err   error
}

// Machine drives onboarding conversations
type Machine struct {
	sessions SessionStore
	ledger   ledger.Ledger
	goals    *goals.Service
	ttl      time.Duration
	location *time.Location
	logger   *zap.Logger
	done     *template.Template
}

type Options struct {
	TTL      time.Duration
	Location *time.Location
	Logger   *zap.Logger
}

func NewMachine(sessions SessionStore, l ledger.Ledger, svc *goals.Service, opts Options) *Machine {
	if opts.TTL <= 0 {
		opts.TTL = 72 * time.Hour
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Machine{
		sessions: sessions,
		ledger:   l,
		goals:    svc,
		ttl:      opts.TTL,
		location: opts.Location,
		logger:   opts.Logger,
		done:     template.Must(template.New("completion").Parse(CompletionTemplate)),
	}
}

func sessionKey(owner string) string {
	return "onboarding:" + owner
}

// Load returns the owner's session, or nil when there is none
func (m *Machine) Load(owner string) (*State, error) {
	data, err := m.sessions.GetSession(sessionKey(owner))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding session: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode onboarding session: %w", err)
	}
	return &st, nil
}

func (m *Machine) save(owner string, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode onboarding session: %w", err)
	}
	if err := m.sessions.SetSession(sessionKey(owner), data, m.ttl); err != nil {
		return fmt.Errorf("failed to save onboarding session: %w", err)
	}
	return nil
}

// NeedsOnboarding reports whether the next message from owner belongs to the
// onboarding conversation: either a session is in progress, or the user is
// brand new (no name on record).
func (m *Machine) NeedsOnboarding(ctx context.Context, owner string) (bool, error) {
	st, err := m.Load(owner)
	if err != nil {
		return false, err
	}
	if st != nil {
		return true, nil
	}

	_, found, err := m.ledger.GetSetting(ctx, owner, ledger.SettingUserName)
	if err != nil {
		return false, fmt.Errorf("failed to read user name: %w", err)
	}
	return !found, nil
}

// Begin starts a session at awaiting_name. The message that triggered it is
// not interpreted.
func (m *Machine) Begin(ctx context.Context, owner string) (*Reply, error) {
	st := &State{Stage: StageAwaitingName, StartedAt: time.Now()}
	if err := m.save(owner, st); err != nil {
		return nil, err
	}

	m.logger.Info("Onboarding started", zap.String("owner", owner))
	return &Reply{Text: WelcomePrompt, Stage: st.Stage}, nil
}

// Step consumes one message for the owner's current stage
func (m *Machine) Step(ctx context.Context, owner, text string) (*Reply, error) {
	st, err := m.Load(owner)
	if err != nil {
		return nil, err
	}
	if st == nil || st.Stage == StageNone {
		return nil, apperrors.WithDetail(apperrors.ErrNotFound, "no onboarding session for owner")
	}

	input := strings.TrimSpace(text)

	switch st.Stage {
	case StageAwaitingName:
		if input == "" {
			return m.reject(st, "Por favor, me diga seu nome.", WelcomePrompt, nil), nil
		}
		if err := m.ledger.SetSetting(ctx, owner, ledger.SettingUserName, input); err != nil {
			return nil, fmt.Errorf("failed to save user name: %w", err)
		}
		st.UserName = input
		st.Stage = StageAwaitingSalary
		return m.advance(owner, st, fmt.Sprintf(SalaryPrompt, input))

	case StageAwaitingSalary:
		salary, err := money.ParseAmount(input)
		if err != nil {
			return m.reject(st, amountMessage(err), "Qual é o seu salário mensal? (ex: 3500)", err), nil
		}
		if err := m.ledger.SetSetting(ctx, owner, ledger.SettingSalary, money.Canonical(salary)); err != nil {
			return nil, fmt.Errorf("failed to save salary: %w", err)
		}
		st.Stage = StageAwaitingGoalName
		return m.advance(owner, st, FirstGoalNamePrompt)

	case StageAwaitingGoalName:
		if input == "" {
			return m.reject(st, "O nome da meta não pode ficar vazio.", FirstGoalNamePrompt, nil), nil
		}
		st.PartialGoal.Name = input
		st.Stage = StageAwaitingGoalAmount
		return m.advance(owner, st, fmt.Sprintf(FirstGoalAmountPrompt, input))

	case StageAwaitingGoalAmount:
		amount, err := money.ParseAmount(input)
		if err != nil {
			return m.reject(st, amountMessage(err), fmt.Sprintf(FirstGoalAmountPrompt, st.PartialGoal.Name), err), nil
		}
		st.PartialGoal.Amount = &amount
		st.Stage = StageAwaitingGoalDeadline
		return m.advance(owner, st, FirstGoalDeadlinePrompt)

	case StageAwaitingGoalDeadline:
		if textnorm.Normalize(input) != "sem data" {
			deadline, err := dates.ParseDeadline(input, m.location)
			if err != nil {
				return m.reject(st, "Data inválida. Use o formato DD/MM/AAAA.", FirstGoalDeadlinePrompt, err), nil
			}
			st.PartialGoal.Deadline = &deadline
		}
		return m.finish(ctx, owner, st)
	}

	return nil, fmt.Errorf("unknown onboarding stage %q", st.Stage)
}

func (m *Machine) advance(owner string, st *State, prompt string) (*Reply, error) {
	if err := m.save(owner, st); err != nil {
		return nil, err
	}
	m.logger.Debug("Onboarding advanced", zap.String("owner", owner), zap.String("stage", string(st.Stage)))
	return &Reply{Text: prompt, Stage: st.Stage}, nil
}

// reject leaves the session untouched and re-prompts the same stage
func (m *Machine) reject(st *State, message, prompt string, cause error) *Reply {
	return &Reply{
		Text:  "❌ " + message + "\n\n" + prompt,
		Stage: st.Stage,
		Err:   apperrors.New(apperrors.ErrInvalidInput.Code, message, cause),
	}
}

func (m *Machine) finish(ctx context.Context, owner string, st *State) (*Reply, error) {
	goal, err := m.goals.Create(ctx, owner, goals.CreateIntent{
		Name:     st.PartialGoal.Name,
		Amount:   *st.PartialGoal.Amount,
		Deadline: st.PartialGoal.Deadline,
	})
	if err != nil {
		return nil, err
	}

	if err := m.sessions.DeleteSession(sessionKey(owner)); err != nil {
		return nil, fmt.Errorf("failed to close onboarding session: %w", err)
	}

	userName := st.UserName
	if userName == "" {
		userName, _, _ = m.ledger.GetSetting(ctx, owner, ledger.SettingUserName)
	}

	var b bytes.Buffer
	err = m.done.Execute(&b, map[string]string{
		"UserName":    userName,
		"GoalName":    goal.Name,
		"GoalSummary": goals.FormatCreated(goal),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render completion: %w", err)
	}

	m.logger.Info("Onboarding completed", zap.String("owner", owner), zap.Uint("goal_id", goal.ID))
	return &Reply{Text: b.String(), Stage: StageNone, Done: true}, nil
}

func amountMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Valor inválido."
}
