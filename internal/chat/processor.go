package chat

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/devaqn/financeira-bot/internal/category"
	"github.com/devaqn/financeira-bot/internal/domain"
	apperrors "github.com/devaqn/financeira-bot/internal/errors"
	"github.com/devaqn/financeira-bot/internal/ledger"
	"github.com/devaqn/financeira-bot/internal/nlp"
	"github.com/devaqn/financeira-bot/internal/render"
	"github.com/devaqn/financeira-bot/pkg/metrics"
)

// Ledger is the slice of the ledger engine the processor drives.
type Ledger interface {
	RecordExpense(ctx context.Context, accountID int64, amount float64, categoryID int64, description, chatID, messageID string) (*ledger.Result, error)
	SetInitialBalance(ctx context.Context, accountID int64, amount float64) (*ledger.Result, error)
	AddBalance(ctx context.Context, accountID int64, amount float64) (*ledger.Result, error)
	TransferToSavings(ctx context.Context, accountID int64, amount float64) (*ledger.Result, error)
	TransferFromSavings(ctx context.Context, accountID int64, amount float64) (*ledger.Result, error)
	TransferToEmergency(ctx context.Context, accountID int64, amount float64) (*ledger.Result, error)
	TransferFromEmergency(ctx context.Context, accountID int64, amount float64) (*ledger.Result, error)
	TotalsByCategory(ctx context.Context, accountID int64, from, to time.Time) ([]domain.CategoryTotal, error)
	ExpenseStats(ctx context.Context, accountID int64) (*domain.ExpenseStats, error)
}

// Accounts resolves Telegram senders to ledger accounts.
type Accounts interface {
	Resolve(ctx context.Context, telegramID int64, name string) (*domain.Account, error)
	Current(ctx context.Context, telegramID int64) (*domain.Account, error)
}

// Processor handles one inbound message at a time per account.
type Processor struct {
	accounts Accounts
	engine   Ledger
	cats     *category.Table
	errs     *apperrors.Handler
	log      *slog.Logger
	perAcct  *keyedMutex
	now      func() time.Time
}

// NewProcessor wires the orchestration layer.
func NewProcessor(accounts Accounts, engine Ledger, cats *category.Table, errs *apperrors.Handler, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}

	return &Processor{
		accounts: accounts,
		engine:   engine,
		cats:     cats,
		errs:     errs,
		log:      log,
		perAcct:  newKeyedMutex(),
		now:      time.Now,
	}
}

// Process classifies msg, executes the matching operation and returns the
// reply text. It never returns an empty reply: infrastructure failures come
// back as the user-facing message of the error taxonomy.
func (p *Processor) Process(ctx context.Context, msg InboundMessage) string {
	started := p.now()

	acct, err := p.accounts.Resolve(ctx, msg.TelegramID, msg.SenderName)
	if err != nil {
		reply, _ := p.errs.Handle(ctx, apperrors.NewDatabaseError(err))
		metrics.RecordMessage("unknown", "error", p.now().Sub(started))
		return reply
	}

	unlock := p.perAcct.Lock(acct.ID)
	defer unlock()

	res := nlp.Classify(msg.Text)

	var reply string
	var status string

	switch res.Kind {
	case nlp.KindCommand:
		reply, status = p.handleCommand(ctx, acct, msg, res)
	case nlp.KindExpense:
		reply, status = p.handleExpense(ctx, acct, msg, res)
	default:
		reply, status = render.Unknown(), "unknown_intent"
	}

	metrics.RecordMessage(string(res.Kind), status, p.now().Sub(started))

	p.log.Info("message processed",
		slog.Int64("account_id", acct.ID),
		slog.String("kind", string(res.Kind)),
		slog.String("command", string(res.Command)),
		slog.String("status", status),
	)

	return reply
}

func (p *Processor) handleExpense(ctx context.Context, acct *domain.Account, msg InboundMessage, res nlp.Result) (string, string) {
	categories := p.cats.Snapshot()
	categoryID := category.Classify(res.Description, categories)

	out, err := p.engine.RecordExpense(ctx, acct.ID, res.Amount, categoryID, res.Description, msg.ChatID, msg.MessageID)
	if err != nil {
		return p.operationFailed(ctx, "record_expense", err)
	}
	if out.Declined {
		metrics.RecordDecline(string(out.Reason))
		return render.Declined(out), "declined"
	}

	metrics.RecordOperation("record_expense", "ok")

	var cat domain.Category
	for _, c := range categories {
		if c.ID == categoryID {
			cat = c
			break
		}
	}

	return render.ExpenseRecorded(out, cat), "ok"
}

func (p *Processor) handleCommand(ctx context.Context, acct *domain.Account, msg InboundMessage, res nlp.Result) (string, string) {
	switch res.Command {
	case nlp.CmdGetBalance:
		return p.showBalance(ctx, msg.TelegramID, render.Balance)
	case nlp.CmdGetSavings:
		return p.showBalance(ctx, msg.TelegramID, render.Savings)
	case nlp.CmdGetEmergency:
		return p.showBalance(ctx, msg.TelegramID, render.Emergency)

	case nlp.CmdSetBalance:
		return p.mutate(ctx, "set_balance", func() (*ledger.Result, error) {
			return p.engine.SetInitialBalance(ctx, acct.ID, res.Amount)
		}, func(out *ledger.Result) string {
			return render.BalanceSet(out.Account)
		})
	case nlp.CmdAddBalance:
		return p.mutate(ctx, "add_balance", func() (*ledger.Result, error) {
			return p.engine.AddBalance(ctx, acct.ID, res.Amount)
		}, func(out *ledger.Result) string {
			return render.BalanceAdded(res.Amount, out.Account)
		})
	case nlp.CmdDepositSavings:
		return p.mutate(ctx, "savings_deposit", func() (*ledger.Result, error) {
			return p.engine.TransferToSavings(ctx, acct.ID, res.Amount)
		}, func(out *ledger.Result) string {
			return render.SavingsDeposited(res.Amount, out.Account)
		})
	case nlp.CmdWithdrawSavings:
		return p.mutate(ctx, "savings_withdrawal", func() (*ledger.Result, error) {
			return p.engine.TransferFromSavings(ctx, acct.ID, res.Amount)
		}, func(out *ledger.Result) string {
			return render.SavingsWithdrawn(res.Amount, out.Account)
		})
	case nlp.CmdDepositEmergency:
		return p.mutate(ctx, "emergency_deposit", func() (*ledger.Result, error) {
			return p.engine.TransferToEmergency(ctx, acct.ID, res.Amount)
		}, func(out *ledger.Result) string {
			return render.EmergencyDeposited(res.Amount, out.Account)
		})
	case nlp.CmdWithdrawEmergency:
		return p.mutate(ctx, "emergency_withdrawal", func() (*ledger.Result, error) {
			return p.engine.TransferFromEmergency(ctx, acct.ID, res.Amount)
		}, func(out *ledger.Result) string {
			return render.EmergencyWithdrawn(res.Amount, out.Account)
		})

	case nlp.CmdReportDaily:
		from, to := dailyWindow(p.now())
		return p.report(ctx, acct.ID, "de hoje", from, to)
	case nlp.CmdReportWeekly:
		from, to := weeklyWindow(p.now())
		return p.report(ctx, acct.ID, "semanal", from, to)
	case nlp.CmdReportMonthly:
		from, to := monthlyWindow(p.now())
		return p.report(ctx, acct.ID, "mensal", from, to)

	case nlp.CmdStart:
		return render.Start(acct.Name), "ok"
	case nlp.CmdHelp:
		return render.Help(), "ok"
	}

	return render.Unknown(), "unknown_intent"
}

func (p *Processor) showBalance(ctx context.Context, telegramID int64, view func(*domain.Account) string) (string, string) {
	acct, err := p.accounts.Current(ctx, telegramID)
	if err != nil {
		return p.operationFailed(ctx, "show_balance", err)
	}

	return view(acct), "ok"
}

func (p *Processor) mutate(ctx context.Context, operation string, run func() (*ledger.Result, error), view func(*ledger.Result) string) (string, string) {
	out, err := run()
	if err != nil {
		return p.operationFailed(ctx, operation, err)
	}
	if out.Declined {
		metrics.RecordDecline(string(out.Reason))
		return render.Declined(out), "declined"
	}

	metrics.RecordOperation(operation, "ok")

	return view(out), "ok"
}

func (p *Processor) report(ctx context.Context, accountID int64, label string, from, to time.Time) (string, string) {
	totals, err := p.engine.TotalsByCategory(ctx, accountID, from, to)
	if err != nil {
		return p.operationFailed(ctx, "report", err)
	}

	stats, err := p.engine.ExpenseStats(ctx, accountID)
	if err != nil {
		return p.operationFailed(ctx, "report", err)
	}

	title := render.PeriodTitle(from, to, label)

	return render.Report(title, totals, stats), "ok"
}

func (p *Processor) operationFailed(ctx context.Context, operation string, err error) (string, string) {
	metrics.RecordOperation(operation, "error")

	var appErr *apperrors.AppError
	if !stderrors.As(err, &appErr) {
		err = apperrors.NewDatabaseError(err)
	}

	reply, _ := p.errs.Handle(ctx, err)
	return reply, "error"
}

func dailyWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, now
}

func weeklyWindow(now time.Time) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, -6), now
}

func monthlyWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, now
}
