package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leosep/bank-chatbot/internal/domain"
)

const strictPromptTemplate = "Eres un asistente virtual llamado 'Banco Assistant', cuyo único objetivo es responder preguntas basadas **estrictamente** en el siguiente manual proporcionado.\nSi la pregunta no se puede responder con la información del manual, debes decir que no tienes información al respecto y ofrecer agendar una llamada. **No utilices conocimiento externo**. El manual de referencia es:\n\n%s\n\nPregunta: %s\n\nRespuesta:"

const (
	msgNoInformation = "No tengo información al respecto. Si necesitas más ayuda, puedo agendar una llamada con un representante."

	msgGenerationFailed = "❌ Disculpa, no pude obtener una respuesta en este momento.\nPor favor, intenta de nuevo o agenda una llamada con un representante."
)

const (
	categoryGenerated = "Asistente IA - General"
	categoryReferral  = "Asistente IA - Referido"
	categoryError     = "Asistente IA - Error"
)

// unknownMarkers are phrasings the model uses to admit it can't answer
// from the supplied context. This is a heuristic with known
// false-positive and false-negative risk, kept as an explicit list so it
// can be audited and tuned.
var unknownMarkers = []string{
	"no puedo responder",
	"no tengo información",
	"no encontré información",
}

// generate answers the residual long tail: retrieve document context,
// run a strict-context completion, and normalize the result. Any
// dependency failure degrades to a fixed apology.
func (e *Engine) generate(ctx context.Context, question string) domain.Reply {
	docContext, err := e.retriever.Context(ctx, question, e.retrieveK)
	if err != nil {
		slog.Error("corpus retrieval failed", "error", err)
		return domain.Reply{Answer: msgGenerationFailed, Category: categoryError}
	}

	prompt := fmt.Sprintf(strictPromptTemplate, docContext, question)
	text, err := e.generator.Complete(ctx, prompt)
	if err != nil {
		slog.Error("generation failed", "error", err)
		return domain.Reply{Answer: msgGenerationFailed, Category: categoryError}
	}

	text = strings.TrimSpace(text)
	if admitsIgnorance(text) {
		return domain.Reply{Answer: msgNoInformation, Category: categoryReferral}
	}
	return domain.Reply{Answer: formatAnswer(text), Category: categoryGenerated}
}

// admitsIgnorance reports whether the generated text contains one of
// the "I don't know" marker phrases.
func admitsIgnorance(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range unknownMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
