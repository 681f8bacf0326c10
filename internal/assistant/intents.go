package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leosep/bank-chatbot/internal/callback"
	"github.com/leosep/bank-chatbot/internal/domain"
	"github.com/leosep/bank-chatbot/internal/identity"
)

// Sentinel preferred time for callback requests raised from chat.
const preferredTimeASAP = "Lo antes posible"

const (
	msgWelcomeIdentity = "👋 ¡Hola! Soy tu Asistente virtual Banco.\n\nPara poder apoyarte, primero necesito verificar tu identidad. Por favor, comparte tu Cédula."

	msgAskEmployeeCode = "Gracias. Ahora, por favor proporciona tu código de empleado."

	msgRepromptCode = "Por favor, proporciona tu código de empleado."

	msgVerificationFailed = "❌ Lo siento, no pude verificar tu identidad.\n\nPor favor, asegúrate de que tu Cédula y Código de Empleado sean correctos e inténtalo de nuevo."
)

// intentRule pairs a predicate over the lower-cased message with its
// handler. Rules are evaluated in slice order, first match wins.
type intentRule struct {
	name   string
	match  func(lower string) bool
	handle func(ctx context.Context, e *Engine, session *domain.Session, lower string) domain.Reply
}

func containsAny(lower string, phrases ...string) bool {
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func static(answer, category string) func(context.Context, *Engine, *domain.Session, string) domain.Reply {
	return func(context.Context, *Engine, *domain.Session, string) domain.Reply {
		return domain.Reply{Answer: answer, Category: category}
	}
}

// intentRules returns the ordered intent pipeline. The ordering is part
// of the product behavior: earlier rules shadow later ones, and the
// callback phrases are checked before the narrower help intents on
// purpose.
func intentRules() []intentRule {
	return []intentRule{
		{
			name:  "saludo",
			match: func(l string) bool { return containsAny(l, "hola", "saludos") },
			handle: static(
				"👋 ¡Hola! Soy tu Asistente virtual Banco.\n\nEstamos por esta vía para apoyarte. ¿En qué puedo ayudarte hoy?",
				"Welcome",
			),
		},
		{
			name:  "certificado de empleo",
			match: func(l string) bool { return containsAny(l, "certificado de empleo", "carta de trabajo") },
			handle: static(
				"📄 Solicitud de Certificado de Empleo\n\nPuedes hacerlo directamente desde el Sistema Interno.\n\nPasos:\n1. Ingresa con tu usuario y contraseña.\n2. Selecciona la opción Recursos Humanos.\n3. Elige Certificado de Empleo y completa la información solicitada.\n\n¡Listo! 😊",
				"Certificado de Empleo",
			),
		},
		{
			name:   "vacaciones",
			match:  func(l string) bool { return containsAny(l, "tiempo libre", "vacaciones") },
			handle: handleVacations,
		},
		{
			name:   "permisos",
			match:  func(l string) bool { return containsAny(l, "permiso", "licencia") },
			handle: handleLeave,
		},
		{
			name:  "horas faltantes",
			match: func(l string) bool { return containsAny(l, "faltan horas", "salario", "falta de horas") },
			handle: static(
				"⏰ Horas Faltantes en Salario\n\nPor favor indícanos:\n- Puesto de Servicio y turno\n- Día pendiente\n- Cantidad de Horas faltantes\n\nEl equipo revisará el caso y te contactará en un máximo de 48 horas.",
				"Salario - Horas Faltantes",
			),
		},
		{
			name:  "descuento no reconocido",
			match: func(l string) bool { return strings.Contains(l, "descuento no reconocido") },
			handle: static(
				"💸 Descuento No Reconocido\n\nPuedes ver tus descuentos en Sistema Interno > Mis Pagos.\nSi crees que hay un error, responde con 'RECLAMO DESCUENTO'.\nNuestro equipo validará la información pronto.",
				"Salario - Descuento",
			),
		},
		{
			name:  "fecha de pago",
			match: func(l string) bool { return containsAny(l, "fecha de pago", "cuando pagan") },
			handle: static(
				"📅 Fechas de Pago de Salario\n\n- Horas del 29 al 13: pagan el día 21 del mismo mes.\n- Horas del 14 al 28: pagan el día 6 del siguiente mes.",
				"Fecha de Pago",
			),
		},
		{
			name:  "préstamos",
			match: func(l string) bool { return containsAny(l, "préstamos", "prestamos") },
			handle: static(
				"💳 Préstamos\n\nEstamos trabajando para mejorar y aperturar este servicio.\nEste canal está disponible 24 horas con tu Asistente Virtual Banco.\n¡Gracias por contactarte!",
				"Préstamos",
			),
		},
		{
			name: "agendar llamada",
			match: func(l string) bool {
				return containsAny(l,
					"agendar", "llamada", "hablar con alguien", "contactar representante",
					"necesito ayuda", "quiero hablar", "llamenme", "comunicarme")
			},
			handle: handleScheduleCall,
		},
		{
			name:  "ayuda sistema",
			match: func(l string) bool { return containsAny(l, "ayuda sistema", "ayuda rrhh") },
			handle: static(
				"🖥️ Ayuda con Sistema Interno\n\nPuedes consultar los instructivos o enlaces proporcionados.\nSi aún necesitas asistencia, podemos agendar una llamada.",
				"Sistema Interno Help",
			),
		},
		{
			name:  "comprobante de pagos",
			match: func(l string) bool { return strings.Contains(l, "comprobante de pagos") },
			handle: static(
				"📄 Comprobante de Pagos\n\nPuedes ver tus comprobantes en Sistema Interno > Mis Pagos.",
				"Comprobante de Pagos",
			),
		},
		{
			name:  "prestaciones",
			match: func(l string) bool { return strings.Contains(l, "prestaciones") },
			handle: static(
				"🎁 Prestaciones\n\nPara información, completa el formulario con:\n- Nombre\n- Cédula\n- Teléfono\n- Código RRHH\n\nEsto nos ayudará a asistirte adecuadamente.",
				"Prestaciones",
			),
		},
	}
}

// handleVacations answers the time-off branch. A payment question takes
// precedence over the general vacation answer when both keyword sets
// appear in the message.
func handleVacations(ctx context.Context, e *Engine, session *domain.Session, lower string) domain.Reply {
	if containsAny(lower, "pago", "no me han pagado") {
		return domain.Reply{
			Answer:   "💰 Pago de Beneficios de Descanso\n\nEl pago se realiza cada año según fecha de ingreso.\nPuedes revisar en Sistema Interno > Mis Pagos.\nSi no aparece, responde 'RECLAMO BENEFICIOS'.",
			Category: "Beneficios - Pago",
		}
	}

	hireDateInfo := ""
	if hired, err := e.directory.HireDate(ctx, session.EmployeeID); err == nil {
		anniversary := hired.AddDate(1, 0, 0)
		hireDateInfo = " el día " + spanishDate(anniversary)
	} else {
		slog.Debug("hire date unavailable for vacation reply", "employee_id", session.EmployeeID, "error", err)
	}

	answer := fmt.Sprintf(
		"🏖️ Beneficios de Descanso\n\nCumples beneficios%s.\nTienes 14 días para disfrutar y pagar cada año.\nCon 5 años en adelante son 18 días pagados + 14 días de disfrute.\n\nPara solicitar:\n1. Ve al Sistema Interno.\n2. Ingresa con tu usuario y contraseña.\n3. Selecciona Solicitud de Beneficios.\n4. Completa la información.\n\nSi necesitas ayuda con el Sistema Interno, responde 'AYUDA SISTEMA'.\nDebe estar aprobado por tu supervisor.\nSe genera automáticamente tras aprobación.",
		hireDateInfo,
	)
	return domain.Reply{Answer: answer, Category: "Beneficios de Descanso"}
}

// handleLeave answers the leave-of-absence branch with sub-branches for
// birth, bereavement, and marriage.
func handleLeave(_ context.Context, _ *Engine, _ *domain.Session, lower string) domain.Reply {
	switch {
	case strings.Contains(lower, "nacimiento"):
		return domain.Reply{
			Answer:   "👶 Permiso por Nacimiento\n\n2 días laborables pagados.\nTraer el Acta de nacimiento del bebé.\nRecuerda compartir la justificación con el supervisor.",
			Category: "Permisos - Nacimiento",
		}
	case strings.Contains(lower, "fallecimiento"):
		return domain.Reply{
			Answer:   "🙏 Permiso por Fallecimiento\n\n3 días laborables pagados por la empresa.\nPor fallecimiento de madre, padre, hijos, abuelos o cónyuge.\nTraer el Acta de defunción.\nRecuerda compartir la justificación con el supervisor.",
			Category: "Permisos - Fallecimiento",
		}
	case strings.Contains(lower, "matrimonio"):
		return domain.Reply{
			Answer:   "💍 Permiso por Matrimonio\n\n5 días laborables pagados.\nTraer el Acta de matrimonio.\nRecuerda compartir la justificación con el supervisor.",
			Category: "Permisos - Matrimonio",
		}
	default:
		return domain.Reply{
			Answer:   "📋 Tipos de Permisos\n\nSegún el Código Laboral de la República Dominicana:\n- Nacimiento de hijo: 2 días\n- Fallecimiento (madre, padre, hijos, abuelos, cónyuge): 3 días\n- Matrimonio: 5 días\n\nRecuerda compartir la justificación con el supervisor.",
			Category: "Permisos - General",
		}
	}
}

// handleScheduleCall submits a call-back request to the call-management
// service. A scheduling failure becomes a user-facing apology, never an
// error to the caller.
func handleScheduleCall(ctx context.Context, e *Engine, session *domain.Session, _ string) domain.Reply {
	name := e.employeeName(ctx, session.EmployeeID)
	phone := identity.DisplayPhone(session.SenderID)

	req := callback.Request{
		Sender:        session.SenderID,
		FullName:      name,
		Phone:         phone,
		PreferredTime: preferredTimeASAP,
	}
	if err := e.scheduler.Schedule(ctx, req); err != nil {
		slog.Error("failed to schedule callback", "sender_id", session.SenderID, "error", err)
		return domain.Reply{
			Answer:   "❌ Lo siento, no pude agendar la llamada en este momento.\nPor favor, inténtalo más tarde.",
			Category: "Agendar Llamada - Error",
		}
	}

	return domain.Reply{
		Answer:   fmt.Sprintf("✅ ¡Perfecto, %s! Hemos agendado tu solicitud para una llamada.\nUn representante se pondrá en contacto contigo lo antes posible.\nGracias por contactarte con BancoBot!", name),
		Category: "Agendar Llamada - Success",
	}
}
