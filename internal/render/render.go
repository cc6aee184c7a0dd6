// Package render formats the bot's pt-BR replies. It is the only place that
// turns ledger values into user-facing text.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/devaqn/financeira-bot/internal/domain"
	"github.com/devaqn/financeira-bot/internal/ledger"
)

// Money formats a value as Brazilian currency with a comma decimal separator.
func Money(v float64) string {
	return "R$ " + strings.ReplaceAll(fmt.Sprintf("%.2f", v), ".", ",")
}

// Balance renders the full balance overview.
func Balance(acct *domain.Account) string {
	var b strings.Builder
	b.WriteString("💰 *Seu saldo*\n\n")
	fmt.Fprintf(&b, "Conta: %s\n", Money(acct.CheckingBalance))
	fmt.Fprintf(&b, "🐷 Poupança: %s\n", Money(acct.SavingsBalance))
	fmt.Fprintf(&b, "🚨 Emergência: %s\n\n", Money(acct.EmergencyBalance))
	fmt.Fprintf(&b, "Total: %s", Money(acct.TotalFunds()))
	return b.String()
}

// Savings renders the savings balance.
func Savings(acct *domain.Account) string {
	return fmt.Sprintf("🐷 Poupança: %s", Money(acct.SavingsBalance))
}

// Emergency renders the emergency fund balance.
func Emergency(acct *domain.Account) string {
	return fmt.Sprintf("🚨 Reserva de emergência: %s", Money(acct.EmergencyBalance))
}

// ExpenseRecorded confirms a recorded expense.
func ExpenseRecorded(res *ledger.Result, cat domain.Category) string {
	txn := res.Transaction

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Gasto registrado: %s - %s", Money(txn.Amount), txn.Description)
	if cat.Name != "" {
		fmt.Fprintf(&b, " (%s %s)", cat.Emoji, cat.Name)
	}
	fmt.Fprintf(&b, "\n💰 Saldo: %s", Money(res.Account.CheckingBalance))

	if res.Account.CheckingBalance < 0 {
		b.WriteString("\n⚠️ Atenção: seu saldo ficou negativo!")
	}

	return b.String()
}

// BalanceSet confirms a balance redefinition.
func BalanceSet(acct *domain.Account) string {
	return fmt.Sprintf("✅ Saldo definido: %s", Money(acct.CheckingBalance))
}

// BalanceAdded confirms an administrative deposit.
func BalanceAdded(amount float64, acct *domain.Account) string {
	return fmt.Sprintf("✅ %s adicionados!\n💰 Saldo: %s", Money(amount), Money(acct.CheckingBalance))
}

// SavingsDeposited confirms a transfer into savings.
func SavingsDeposited(amount float64, acct *domain.Account) string {
	return fmt.Sprintf("🐷 %s guardados na poupança!\nPoupança: %s\n💰 Saldo: %s",
		Money(amount), Money(acct.SavingsBalance), Money(acct.CheckingBalance))
}

// SavingsWithdrawn confirms a transfer out of savings.
func SavingsWithdrawn(amount float64, acct *domain.Account) string {
	return fmt.Sprintf("🐷 %s retirados da poupança.\nPoupança: %s\n💰 Saldo: %s",
		Money(amount), Money(acct.SavingsBalance), Money(acct.CheckingBalance))
}

// EmergencyDeposited confirms a transfer into the emergency fund.
func EmergencyDeposited(amount float64, acct *domain.Account) string {
	return fmt.Sprintf("🚨 %s reservados para emergências!\nReserva: %s\n💰 Saldo: %s",
		Money(amount), Money(acct.EmergencyBalance), Money(acct.CheckingBalance))
}

// EmergencyWithdrawn confirms a transfer out of the emergency fund.
func EmergencyWithdrawn(amount float64, acct *domain.Account) string {
	return fmt.Sprintf("🚨 %s usados da reserva de emergência.\nReserva: %s\n💰 Saldo: %s",
		Money(amount), Money(acct.EmergencyBalance), Money(acct.CheckingBalance))
}

// Declined renders a refused ledger operation.
func Declined(res *ledger.Result) string {
	switch res.Reason {
	case ledger.ReasonInsufficientFunds:
		return fmt.Sprintf("❌ Saldo insuficiente. Disponível: %s", Money(res.Available))
	case ledger.ReasonInvalidAmount:
		return "❌ Valor inválido. Use um número maior que zero, por exemplo: gastei 25,90 no mercado"
	case ledger.ReasonAccountNotFound:
		return "❌ Conta não encontrada. Envie /start para começar."
	default:
		return "❌ Não consegui concluir a operação. Tente novamente."
	}
}

// Report renders the per-category totals and stats of a period.
func Report(title string, totals []domain.CategoryTotal, stats *domain.ExpenseStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *%s*\n\n", title)

	if len(totals) == 0 {
		b.WriteString("Nenhum gasto registrado no período. 🎉")
		return b.String()
	}

	var periodTotal float64
	for _, ct := range totals {
		fmt.Fprintf(&b, "%s %s: %s (%d)\n", ct.CategoryEmoji, ct.CategoryName, Money(ct.Total), ct.Count)
		periodTotal += ct.Total
	}
	fmt.Fprintf(&b, "\nTotal do período: %s", Money(periodTotal))

	if stats != nil && stats.Count > 0 {
		fmt.Fprintf(&b, "\n\n📈 Geral: %d gastos, média %s, maior %s",
			stats.Count, Money(stats.Average), Money(stats.Max))
	}

	return b.String()
}

// LowBalance renders the low balance warning sent by the reminder sweep.
func LowBalance(acct *domain.Account, threshold float64) string {
	return fmt.Sprintf("⚠️ Atenção, %s! Seu saldo está baixo: %s (abaixo de %s).",
		acct.Name, Money(acct.CheckingBalance), Money(threshold))
}

// Start greets a new or returning user.
func Start(name string) string {
	return fmt.Sprintf(
		"👋 Olá, %s! Eu sou seu assistente financeiro.\n\n"+
			"Me conte seus gastos em linguagem natural, por exemplo:\n"+
			"• gastei 50 no mercado\n"+
			"• paguei R$ 25,90 de uber\n\n"+
			"Envie /ajuda para ver todos os comandos.", name)
}

// Help lists the available commands.
func Help() string {
	return "📋 *Comandos*\n\n" +
		"/saldo - ver saldo\n" +
		"/saldo <valor> - definir saldo\n" +
		"/adicionar <valor> - adicionar dinheiro\n" +
		"/poupanca - ver poupança\n" +
		"/guardar <valor> - guardar na poupança\n" +
		"/retirar <valor> - retirar da poupança\n" +
		"/emergencia - ver reserva de emergência\n" +
		"/reservar <valor> - reservar para emergências\n" +
		"/usar <valor> - usar a reserva\n" +
		"/relatorio hoje|semana|mes - relatório de gastos\n\n" +
		"Ou apenas me diga o que gastou: gastei 30 de uber 🚗"
}

// Unknown nudges the user toward a supported phrasing.
func Unknown() string {
	return "🤔 Não entendi. Tente algo como: gastei 50 no mercado\nOu envie /ajuda para ver os comandos."
}

// PeriodTitle names the report window in pt-BR.
func PeriodTitle(from, to time.Time, label string) string {
	const layout = "02/01"
	return fmt.Sprintf("Relatório %s (%s a %s)", label, from.Format(layout), to.Format(layout))
}
