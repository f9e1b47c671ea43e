package document

import (
	"errors"
	"fmt"
)

// Client-facing messages. They match the wording existing clients already
// display.
const (
	MsgNoFile                = "Nenhum arquivo enviado"
	MsgEmptyFilename         = "Nome do arquivo vazio"
	MsgNoTargetLanguage      = "Idioma de destino não especificado"
	MsgInvalidTargetLanguage = "Idioma de destino inválido"
	MsgNoSourceLanguage      = "Idioma de origem não especificado"
	MsgUnreadablePDF         = "Não foi possível ler o PDF"
	MsgTranslationFailed     = "Falha no serviço de tradução"
	MsgCorrectionFailed      = "Falha no serviço de correção"
	MsgInternal              = "Erro interno no servidor"
)

// Kind classifies a processing failure for the transport layer.
type Kind string

const (
	KindInvalidInput     Kind = "invalid_input"
	KindExtractionFailed Kind = "extraction_failed"
	KindUpstreamFailed   Kind = "upstream_failed"
	KindInternal         Kind = "internal"
)

// Error carries a stable client-facing message. Err holds the raw cause,
// which is meant for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var docErr *Error
	if errors.As(err, &docErr) {
		return docErr.Kind
	}
	return KindInternal
}

// PublicMessage returns the message that is safe to show a client.
func PublicMessage(err error) string {
	var docErr *Error
	if errors.As(err, &docErr) && docErr.Message != "" {
		return docErr.Message
	}
	return MsgInternal
}
