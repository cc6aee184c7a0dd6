package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/devaqn/financeira-bot/internal/category"
	"github.com/devaqn/financeira-bot/internal/domain"
	apperrors "github.com/devaqn/financeira-bot/internal/errors"
	"github.com/devaqn/financeira-bot/internal/ledger"
)

type fakeAccounts struct {
	mu       sync.Mutex
	account  *domain.Account
	resolves int
	err      error
}

func (f *fakeAccounts) Resolve(_ context.Context, _ int64, _ string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves++
	if f.err != nil {
		return nil, f.err
	}
	return f.account, nil
}

func (f *fakeAccounts) Current(_ context.Context, _ int64) (*domain.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.account, nil
}

type fakeLedger struct {
	lastOp     string
	lastAmount float64
	lastCatID  int64
	lastDesc   string
	result     *ledger.Result
	totals     []domain.CategoryTotal
	stats      *domain.ExpenseStats
	err        error
}

func (f *fakeLedger) op(name string, amount float64) (*ledger.Result, error) {
	f.lastOp = name
	f.lastAmount = amount
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeLedger) RecordExpense(_ context.Context, _ int64, amount float64, categoryID int64, description, _, _ string) (*ledger.Result, error) {
	f.lastCatID = categoryID
	f.lastDesc = description
	return f.op("record_expense", amount)
}

func (f *fakeLedger) SetInitialBalance(_ context.Context, _ int64, amount float64) (*ledger.Result, error) {
	return f.op("set_balance", amount)
}

func (f *fakeLedger) AddBalance(_ context.Context, _ int64, amount float64) (*ledger.Result, error) {
	return f.op("add_balance", amount)
}

func (f *fakeLedger) TransferToSavings(_ context.Context, _ int64, amount float64) (*ledger.Result, error) {
	return f.op("savings_deposit", amount)
}

func (f *fakeLedger) TransferFromSavings(_ context.Context, _ int64, amount float64) (*ledger.Result, error) {
	return f.op("savings_withdrawal", amount)
}

func (f *fakeLedger) TransferToEmergency(_ context.Context, _ int64, amount float64) (*ledger.Result, error) {
	return f.op("emergency_deposit", amount)
}

func (f *fakeLedger) TransferFromEmergency(_ context.Context, _ int64, amount float64) (*ledger.Result, error) {
	return f.op("emergency_withdrawal", amount)
}

func (f *fakeLedger) TotalsByCategory(_ context.Context, _ int64, _, _ time.Time) ([]domain.CategoryTotal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.totals, nil
}

func (f *fakeLedger) ExpenseStats(_ context.Context, _ int64) (*domain.ExpenseStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

func testProcessor(accounts *fakeAccounts, eng *fakeLedger) *Processor {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	table := category.NewTable([]domain.Category{
		{ID: 1, Name: "Mercado", Emoji: "🛒", Keywords: []string{"mercado", "feira"}},
		{ID: 2, Name: "Transporte", Emoji: "🚗", Keywords: []string{"uber", "taxi"}},
		{ID: 9, Name: "Outros", Emoji: "📦", Keywords: []string{"outro"}},
	})

	return NewProcessor(accounts, eng, table, apperrors.NewHandler(log, false), log)
}

func testAccount() *domain.Account {
	return &domain.Account{ID: 7, TelegramID: 42, Name: "Ana", CheckingBalance: 300}
}

func msg(text string) InboundMessage {
	return InboundMessage{TelegramID: 42, ChatID: "42", MessageID: "1", SenderName: "Ana", Text: text}
}

func TestProcessExpense(t *testing.T) {
	accounts := &fakeAccounts{account: testAccount()}
	eng := &fakeLedger{
		result: &ledger.Result{
			Account:     &domain.Account{ID: 7, CheckingBalance: 250.1},
			Transaction: &domain.Transaction{Amount: 49.9, Description: "mercado"},
		},
	}
	p := testProcessor(accounts, eng)

	reply := p.Process(context.Background(), msg("gastei 49,90 no mercado"))

	assert.Equal(t, "record_expense", eng.lastOp)
	assert.Equal(t, 49.9, eng.lastAmount)
	assert.Equal(t, int64(1), eng.lastCatID)
	assert.Equal(t, "mercado", eng.lastDesc)
	assert.Contains(t, reply, "Gasto registrado")
	assert.Contains(t, reply, "🛒 Mercado")
}

func TestProcessCommands(t *testing.T) {
	tests := []struct {
		text       string
		wantOp     string
		wantAmount float64
		wantReply  string
	}{
		{"/saldo 1500", "set_balance", 1500, "Saldo definido"},
		{"/adicionar 200", "add_balance", 200, "adicionados"},
		{"/guardar 100", "savings_deposit", 100, "guardados na poupança"},
		{"/retirar 50", "savings_withdrawal", 50, "retirados da poupança"},
		{"/reservar 80", "emergency_deposit", 80, "reservados"},
		{"/usar 30", "emergency_withdrawal", 30, "usados da reserva"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			accounts := &fakeAccounts{account: testAccount()}
			eng := &fakeLedger{
				result: &ledger.Result{Account: testAccount()},
			}
			p := testProcessor(accounts, eng)

			reply := p.Process(context.Background(), msg(tt.text))

			assert.Equal(t, tt.wantOp, eng.lastOp)
			assert.Equal(t, tt.wantAmount, eng.lastAmount)
			assert.Contains(t, reply, tt.wantReply)
		})
	}
}

func TestProcessBalanceViews(t *testing.T) {
	accounts := &fakeAccounts{account: &domain.Account{
		ID: 7, TelegramID: 42, Name: "Ana",
		CheckingBalance: 300, SavingsBalance: 120, EmergencyBalance: 80,
	}}
	p := testProcessor(accounts, &fakeLedger{})

	assert.Contains(t, p.Process(context.Background(), msg("/saldo")), "Total: R$ 500,00")
	assert.Contains(t, p.Process(context.Background(), msg("/poupanca")), "R$ 120,00")
	assert.Contains(t, p.Process(context.Background(), msg("/emergencia")), "R$ 80,00")
}

func TestProcessDeclined(t *testing.T) {
	accounts := &fakeAccounts{account: testAccount()}
	eng := &fakeLedger{
		result: &ledger.Result{
			Declined:  true,
			Reason:    ledger.ReasonInsufficientFunds,
			Available: 30,
		},
	}
	p := testProcessor(accounts, eng)

	reply := p.Process(context.Background(), msg("/guardar 100"))

	assert.Contains(t, reply, "Saldo insuficiente")
	assert.Contains(t, reply, "R$ 30,00")
}

func TestProcessReport(t *testing.T) {
	accounts := &fakeAccounts{account: testAccount()}
	eng := &fakeLedger{
		totals: []domain.CategoryTotal{
			{CategoryName: "Mercado", CategoryEmoji: "🛒", Count: 2, Total: 90},
		},
		stats: &domain.ExpenseStats{Count: 2, Total: 90, Average: 45, Max: 60, Min: 30},
	}
	p := testProcessor(accounts, eng)

	reply := p.Process(context.Background(), msg("/relatorio semana"))

	assert.Contains(t, reply, "Relatório semanal")
	assert.Contains(t, reply, "🛒 Mercado: R$ 90,00 (2)")
}

func TestProcessUnknown(t *testing.T) {
	accounts := &fakeAccounts{account: testAccount()}
	p := testProcessor(accounts, &fakeLedger{})

	reply := p.Process(context.Background(), msg("bom dia"))

	assert.Contains(t, reply, "Não entendi")
}

func TestProcessStartAndHelp(t *testing.T) {
	accounts := &fakeAccounts{account: testAccount()}
	p := testProcessor(accounts, &fakeLedger{})

	assert.Contains(t, p.Process(context.Background(), msg("/start")), "Ana")
	assert.Contains(t, p.Process(context.Background(), msg("/ajuda")), "/relatorio")
}

func TestProcessEngineFailure(t *testing.T) {
	accounts := &fakeAccounts{account: testAccount()}
	eng := &fakeLedger{err: errors.New("connection refused")}
	p := testProcessor(accounts, eng)

	reply := p.Process(context.Background(), msg("/guardar 100"))

	assert.NotEmpty(t, reply)
	assert.Contains(t, reply, "⚠️")
}

func TestProcessResolveFailure(t *testing.T) {
	accounts := &fakeAccounts{err: errors.New("db down")}
	p := testProcessor(accounts, &fakeLedger{})

	reply := p.Process(context.Background(), msg("/saldo"))

	assert.NotEmpty(t, reply)
}

func TestKeyedMutexSerializes(t *testing.T) {
	km := newKeyedMutex()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock(7)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestReportWindows(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

	from, to := dailyWindow(now)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, now, to)

	from, _ = weeklyWindow(now)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), from)

	from, _ = monthlyWindow(now)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), from)
}
