package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewInvalidAmountError covers unparsable amounts and amounts outside the
// accepted (0, 1000000) range.
func NewInvalidAmountError(raw string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     fmt.Sprintf("invalid amount: %s", raw),
		UserMessage: "❌ Valor inválido. Use um número maior que zero, por exemplo: /saldo 1500",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewUnknownIntentError marks a message that neither matched a command nor
// passed the expense heuristic.
func NewUnknownIntentError(text string) *AppError {
	return &AppError{
		Code:        "E110",
		Message:     fmt.Sprintf("unknown intent: %s", text),
		UserMessage: "🤔 Não entendi. Envie /ajuda para ver os comandos disponíveis",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

func NewAccountNotFoundError(identity string) *AppError {
	return &AppError{
		Code:        "E120",
		Message:     fmt.Sprintf("account not found: %s", identity),
		UserMessage: "❌ Conta não encontrada. Envie /start para começar",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       nil,
	}
}

// NewInsufficientFundsError reports a declined transfer; no balances change.
func NewInsufficientFundsError(bucket string, available float64) *AppError {
	return &AppError{
		Code:        "E130",
		Message:     fmt.Sprintf("insufficient funds in %s: available %.2f", bucket, available),
		UserMessage: fmt.Sprintf("❌ Saldo insuficiente. Disponível: R$ %.2f", available),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

func NewDatabaseError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("database error: %s", underlyingMsg),
		UserMessage: "⚠️ Problema temporário, tente novamente em instantes",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

func NewTransportError(cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     "transport error: failed to deliver message",
		UserMessage: "⚠️ Falha ao enviar a mensagem, tente novamente",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}
