// Package assistant implements the conversation engine: the identity
// verification gate and the layered intent-resolution pipeline.
package assistant

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/leosep/bank-chatbot/internal/callback"
	"github.com/leosep/bank-chatbot/internal/directory"
	"github.com/leosep/bank-chatbot/internal/domain"
	"github.com/leosep/bank-chatbot/internal/identity"
	"github.com/leosep/bank-chatbot/internal/requestlog"
	"github.com/leosep/bank-chatbot/internal/store"
)

// Retriever returns document context relevant to a question.
type Retriever interface {
	Context(ctx context.Context, query string, k int) (string, error)
}

// Generator produces a completion for a single-turn prompt.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Deps are the collaborators injected into the Engine.
type Deps struct {
	Sessions  store.Repository
	Directory directory.Directory
	Retriever Retriever
	Generator Generator
	Scheduler callback.Scheduler
	Log       *requestlog.Store
	RetrieveK int
}

// Engine drives one conversation turn: session gate, verification flow,
// intent pipeline, generative fallback, and request logging.
type Engine struct {
	sessions  store.Repository
	directory directory.Directory
	retriever Retriever
	generator Generator
	scheduler callback.Scheduler
	log       *requestlog.Store
	retrieveK int
	rules     []intentRule
}

// New creates a conversation engine.
func New(deps Deps) *Engine {
	k := deps.RetrieveK
	if k <= 0 {
		k = 4
	}
	return &Engine{
		sessions:  deps.Sessions,
		directory: deps.Directory,
		retriever: deps.Retriever,
		generator: deps.Generator,
		scheduler: deps.Scheduler,
		log:       deps.Log,
		retrieveK: k,
		rules:     intentRules(),
	}
}

// Respond handles one inbound message and always produces an answer.
// External failures are degraded to categorized fallback messages; this
// method never returns an error to the transport layer.
func (e *Engine) Respond(ctx context.Context, senderID, question string) domain.Reply {
	lower := strings.ToLower(strings.TrimSpace(question))

	session := e.loadSession(ctx, senderID)

	var reply domain.Reply
	if !session.Verified {
		reply = e.verifyFlow(ctx, session, lower)
	} else {
		reply = e.resolve(ctx, session, question, lower)
	}

	entry := requestlog.Entry{
		SenderID:   senderID,
		EmployeeID: session.EmployeeID,
		Question:   question,
		Answer:     reply.Answer,
		Category:   reply.Category,
	}
	if err := e.log.Append(entry); err != nil {
		slog.Error("failed to append request log entry", "sender_id", senderID, "error", err)
	}

	return reply
}

// loadSession fetches the sender's session, degrading any storage
// problem to a fresh unverified session so the request can proceed.
func (e *Engine) loadSession(ctx context.Context, senderID string) *domain.Session {
	session, err := e.sessions.GetSession(ctx, senderID)
	if err != nil {
		slog.Warn("session read failed, treating sender as unverified", "sender_id", senderID, "error", err)
		session = nil
	}
	if session == nil {
		now := time.Now()
		session = &domain.Session{SenderID: senderID, CreatedAt: now}
	}
	session.LastActive = time.Now()
	return session
}

// saveSession persists the session, logging instead of failing the
// request when the store is unavailable.
func (e *Engine) saveSession(ctx context.Context, session *domain.Session) {
	if err := e.sessions.UpsertSession(ctx, session); err != nil {
		slog.Error("failed to save session", "sender_id", session.SenderID, "error", err)
	}
}

// verifyFlow runs the identity-verification state machine for an
// unverified sender.
func (e *Engine) verifyFlow(ctx context.Context, session *domain.Session, lower string) domain.Reply {
	if session.AwaitingCode && session.ProvidedCedula != "" {
		return e.checkEmployeeCode(ctx, session, lower)
	}

	cedula, ok := identity.ExtractCedula(lower)
	if !ok {
		e.saveSession(ctx, session)
		return domain.Reply{Answer: msgWelcomeIdentity, Category: "Welcome/Identity Prompt"}
	}

	session.ProvidedCedula = cedula
	session.AwaitingCode = true
	e.saveSession(ctx, session)
	return domain.Reply{Answer: msgAskEmployeeCode, Category: "Identity Prompt - Cedula Provided"}
}

func (e *Engine) checkEmployeeCode(ctx context.Context, session *domain.Session, lower string) domain.Reply {
	code, ok := identity.ExtractEmployeeCode(lower)
	if !ok {
		return domain.Reply{Answer: msgRepromptCode, Category: "Identity Prompt - Code"}
	}

	employeeID, err := e.directory.Verify(ctx, session.ProvidedCedula, code)
	if err != nil {
		if err != directory.ErrNotFound && err != directory.ErrInvalidCode {
			slog.Error("directory verification query failed", "sender_id", session.SenderID, "error", err)
		}
		// A failed attempt resets the flow: the sender restarts from the
		// cédula.
		session.Reset()
		e.saveSession(ctx, session)
		return domain.Reply{Answer: msgVerificationFailed, Category: "Identity Verification Failed"}
	}

	name := e.employeeName(ctx, employeeID)
	session.EmployeeID = employeeID
	session.Verified = true
	session.AwaitingCode = false
	session.ProvidedCedula = ""
	e.saveSession(ctx, session)

	return domain.Reply{
		Answer:   "🎉 ¡Bienvenido, " + name + "! 🎉\nTu identidad ha sido verificada. ¿En qué puedo ayudarte hoy?",
		Category: "Identity Verification Success",
	}
}

// resolve runs the intent pipeline for a verified sender: the ordered
// rule list is evaluated first-match-wins, and anything unmatched goes
// to the generative fallback.
func (e *Engine) resolve(ctx context.Context, session *domain.Session, question, lower string) domain.Reply {
	e.saveSession(ctx, session)

	for _, rule := range e.rules {
		if rule.match(lower) {
			return rule.handle(ctx, e, session, lower)
		}
	}
	return e.generate(ctx, question)
}

// employeeName resolves the employee's display name, falling back to a
// generic salutation when the directory can't answer.
func (e *Engine) employeeName(ctx context.Context, employeeID string) string {
	name, err := e.directory.EmployeeName(ctx, employeeID)
	if err != nil {
		if err != directory.ErrNotFound {
			slog.Warn("employee name lookup failed", "employee_id", employeeID, "error", err)
		}
		return "Colaborador"
	}
	return name
}
