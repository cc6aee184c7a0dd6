package nlp

import "regexp"

// Command identifies a recognized chat command.
type Command string

const (
	CmdSetBalance        Command = "setBalance"
	CmdGetBalance        Command = "getBalance"
	CmdAddBalance        Command = "addBalance"
	CmdGetSavings        Command = "getSavings"
	CmdDepositSavings    Command = "depositSavings"
	CmdWithdrawSavings   Command = "withdrawSavings"
	CmdGetEmergency      Command = "getEmergency"
	CmdDepositEmergency  Command = "depositEmergency"
	CmdWithdrawEmergency Command = "withdrawEmergency"
	CmdReportDaily       Command = "reportDaily"
	CmdReportWeekly      Command = "reportWeekly"
	CmdReportMonthly     Command = "reportMonthly"
	CmdHelp              Command = "help"
	CmdStart             Command = "start"
)

const number = `(\d+(?:[.,]\d{1,2})?)`

// commandPattern pairs a matcher with the command it produces. The slice is
// evaluated in declaration order and the first match wins, so priority is
// list position, not pattern specificity.
type commandPattern struct {
	re  *regexp.Regexp
	cmd Command
}

var commandPatterns = []commandPattern{
	{regexp.MustCompile(`(?i)^/saldo\s+` + number), CmdSetBalance},
	{regexp.MustCompile(`(?i)^/saldo\s*$`), CmdGetBalance},
	{regexp.MustCompile(`(?i)^/adicionar\s+` + number), CmdAddBalance},

	{regexp.MustCompile(`(?i)^/poupan[cç]a\s*$`), CmdGetSavings},
	{regexp.MustCompile(`(?i)^/guardar\s+` + number), CmdDepositSavings},
	{regexp.MustCompile(`(?i)^/retirar\s+` + number), CmdWithdrawSavings},

	{regexp.MustCompile(`(?i)^/emerg[eê]ncia\s*$`), CmdGetEmergency},
	{regexp.MustCompile(`(?i)^/reservar\s+` + number), CmdDepositEmergency},
	{regexp.MustCompile(`(?i)^/usar\s+` + number), CmdWithdrawEmergency},

	{regexp.MustCompile(`(?i)^/relatorio\s+(?:hoje|diário|diario|day|daily)`), CmdReportDaily},
	{regexp.MustCompile(`(?i)^/relatorio\s+(?:semana|semanal|week|weekly)`), CmdReportWeekly},
	{regexp.MustCompile(`(?i)^/relatorio\s+(?:mês|mes|mensal|month|monthly)`), CmdReportMonthly},

	{regexp.MustCompile(`(?i)^/ajuda|^/help|^/comandos`), CmdHelp},
	{regexp.MustCompile(`(?i)^/start|^/começar|^/comecar`), CmdStart},
}

// moneyPatterns extract an amount from free-form text, tried in priority
// order: verb + optional currency marker, currency marker prefix, number with
// a unit word, number with a currency suffix, bare number at the start.
var moneyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:gastei|paguei|comprei|saiu|foi|custou|deu)\s+(?:r\$|rs)?\s*` + number),
	regexp.MustCompile(`(?i)(?:r\$|rs)\s*` + number),
	regexp.MustCompile(`(?i)` + number + `\s*(?:reais|real|conto|contos|pila|pilas|pau|mangos)`),
	regexp.MustCompile(`(?i)` + number + `\s*(?:r\$|rs)`),
	regexp.MustCompile(`^` + number + `\s+`),
}

// expenseKeywords mark a message as an expense candidate even when no amount
// can be extracted yet.
var expenseKeywords = []string{
	"gastei", "paguei", "comprei", "saiu", "foi", "custou",
	"deu", "comprando", "no mercado", "na farmácia", "almocei",
	"jantei", "lanchou", "tomei",
}

var (
	leadingVerbRe        = regexp.MustCompile(`(?i)^(?:gastei|paguei|comprei|saiu|foi|custou|deu)\s+`)
	currencyMarkerRe     = regexp.MustCompile(`(?i)(?:r\$|rs)\s*`)
	leadingPrepositionRe = regexp.MustCompile(`(?i)^\s*(?:em|de|com|no|na|para|pro|pra)\s+`)
)
