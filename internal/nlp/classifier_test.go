package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifyCommand(t *testing.T) {
	testCases := []struct {
		name       string
		text       string
		cmd        Command
		wantAmount bool
		amount     float64
	}{
		{name: "get balance", text: "/saldo", cmd: CmdGetBalance},
		{name: "get balance trailing space", text: "/saldo  ", cmd: CmdGetBalance},
		{name: "set balance", text: "/saldo 150", cmd: CmdSetBalance, wantAmount: true, amount: 150},
		{name: "set balance comma decimal", text: "/saldo 150,75", cmd: CmdSetBalance, wantAmount: true, amount: 150.75},
		{name: "set balance uppercase", text: "/SALDO 150", cmd: CmdSetBalance, wantAmount: true, amount: 150},
		{name: "add balance", text: "/adicionar 30", cmd: CmdAddBalance, wantAmount: true, amount: 30},
		{name: "get savings plain", text: "/poupanca", cmd: CmdGetSavings},
		{name: "get savings accented", text: "/poupança", cmd: CmdGetSavings},
		{name: "deposit savings", text: "/guardar 200", cmd: CmdDepositSavings, wantAmount: true, amount: 200},
		{name: "withdraw savings", text: "/retirar 50,50", cmd: CmdWithdrawSavings, wantAmount: true, amount: 50.50},
		{name: "get emergency", text: "/emergencia", cmd: CmdGetEmergency},
		{name: "deposit emergency", text: "/reservar 80", cmd: CmdDepositEmergency, wantAmount: true, amount: 80},
		{name: "withdraw emergency", text: "/usar 25", cmd: CmdWithdrawEmergency, wantAmount: true, amount: 25},
		{name: "report daily", text: "/relatorio hoje", cmd: CmdReportDaily},
		{name: "report weekly", text: "/relatorio semana", cmd: CmdReportWeekly},
		{name: "report monthly", text: "/relatorio mes", cmd: CmdReportMonthly},
		{name: "help", text: "/ajuda", cmd: CmdHelp},
		{name: "help english", text: "/help", cmd: CmdHelp},
		{name: "start", text: "/start", cmd: CmdStart},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Classify(tc.text)
			assert.Equal(t, KindCommand, res.Kind)
			assert.Equal(t, tc.cmd, res.Command)
			assert.Equal(t, tc.wantAmount, res.HasAmount)
			if tc.wantAmount {
				assert.InDelta(t, tc.amount, res.Amount, 1e-9)
			}
		})
	}
}

// Every pattern in the command table must be reachable: priority is list
// order, so a pattern shadowed by an earlier one is a table bug.
func TestCommandTableCoverage(t *testing.T) {
	samples := map[Command]string{
		CmdSetBalance:        "/saldo 10",
		CmdGetBalance:        "/saldo",
		CmdAddBalance:        "/adicionar 10",
		CmdGetSavings:        "/poupanca",
		CmdDepositSavings:    "/guardar 10",
		CmdWithdrawSavings:   "/retirar 10",
		CmdGetEmergency:      "/emergencia",
		CmdDepositEmergency:  "/reservar 10",
		CmdWithdrawEmergency: "/usar 10",
		CmdReportDaily:       "/relatorio hoje",
		CmdReportWeekly:      "/relatorio semana",
		CmdReportMonthly:     "/relatorio mensal",
		CmdHelp:              "/comandos",
		CmdStart:             "/comecar",
	}

	for _, cp := range commandPatterns {
		sample, ok := samples[cp.cmd]
		if !ok {
			t.Fatalf("no sample text for command %q", cp.cmd)
		}

		got, _, matched := identifyCommand(sample)
		if !matched {
			t.Errorf("sample %q matched no command, want %q", sample, cp.cmd)
			continue
		}
		if got != cp.cmd {
			t.Errorf("sample %q matched %q, want %q", sample, got, cp.cmd)
		}
	}
}

func TestExtractAmount(t *testing.T) {
	testCases := []struct {
		name   string
		text   string
		amount float64
		ok     bool
	}{
		{name: "verb and number", text: "gastei 50", amount: 50, ok: true},
		{name: "verb currency and comma", text: "paguei r$ 12,30 na padaria", amount: 12.30, ok: true},
		{name: "currency prefix", text: "R$ 25,90", amount: 25.90, ok: true},
		{name: "unit word", text: "30 reais", amount: 30, ok: true},
		{name: "currency suffix", text: "42RS no posto", amount: 42, ok: true},
		{name: "leading bare number", text: "15 lanche", amount: 15, ok: true},
		{name: "no amount", text: "almocei no ifood", ok: false},
		{name: "number not leading", text: "uns 3 pastel", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			amount, ok := ExtractAmount(tc.text)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.amount, amount, 1e-9)
			}
		})
	}
}

func TestClassifyExpense(t *testing.T) {
	testCases := []struct {
		name        string
		text        string
		amount      float64
		description string
	}{
		{name: "verb with place", text: "gastei 50 no mercado", amount: 50, description: "mercado"},
		{name: "currency and comma", text: "paguei R$ 25,90 de uber", amount: 25.90, description: "uber"},
		{name: "unit word", text: "30 reais de gasolina", amount: 30, description: "gasolina"},
		{name: "bare number", text: "15 lanche", amount: 15, description: "lanche"},
		{name: "amount only", text: "gastei 80", amount: 80, description: DefaultDescription},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Classify(tc.text)
			assert.Equal(t, KindExpense, res.Kind)
			assert.InDelta(t, tc.amount, res.Amount, 1e-9)
			assert.Equal(t, tc.description, res.Description)
		})
	}
}

func TestClassifyUnknown(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{name: "plain chatter", text: "bom dia"},
		{name: "keyword without amount", text: "almocei no ifood"},
		{name: "amount at upper bound", text: "gastei 1000000"},
		{name: "amount above bound", text: "gastei 2000000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Classify(tc.text)
			assert.Equal(t, KindUnknown, res.Kind)
		})
	}
}

func TestClassifyBoundary(t *testing.T) {
	res := Classify("gastei 999999.99")
	assert.Equal(t, KindExpense, res.Kind)
	assert.InDelta(t, 999999.99, res.Amount, 1e-9)

	assert.False(t, ValidAmount(0))
	assert.False(t, ValidAmount(-1))
	assert.False(t, ValidAmount(MaxAmount))
	assert.True(t, ValidAmount(MaxAmount-0.01))
}

// Classifying the same text twice must yield the same result.
func TestClassifyIdempotent(t *testing.T) {
	for _, text := range []string{"/saldo 150", "gastei 50 no mercado", "bom dia"} {
		first := Classify(text)
		second := Classify(text)
		assert.Equal(t, first, second, "text %q", text)
	}
}
