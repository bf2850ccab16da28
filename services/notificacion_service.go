package services

import (
	"fmt"
	"log"
	"time"

	"backend_resto/config"
	"backend_resto/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"
)

// NotificacionService despacha las alertas de límites pendientes por
// Telegram. Sin token configurado trabaja en modo solo-log: las alertas
// igual se marcan enviadas para no reintentar indefinidamente.
type NotificacionService struct {
	db          *gorm.DB
	alertas     *AlertaService
	bot         *tgbotapi.BotAPI
	adminChatID int64
}

// NewNotificacionService crea una nueva instancia de NotificacionService
func NewNotificacionService(db *gorm.DB, cfg *config.Config) *NotificacionService {
	ns := &NotificacionService{
		db:          db,
		alertas:     NewAlertaService(db),
		adminChatID: cfg.External.TelegramAdminChatID,
	}

	if cfg.External.TelegramBotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.External.TelegramBotToken)
		if err != nil {
			log.Printf("⚠️ No se pudo inicializar el bot de Telegram: %v", err)
		} else {
			ns.bot = bot
			log.Printf("✅ Bot de Telegram autorizado como @%s", bot.Self.UserName)
		}
	}

	return ns
}

// DispatchPendingAlerts envía las alertas pendientes de hasta 7 días y
// las marca como enviadas. Devuelve cuántas se despacharon.
func (ns *NotificacionService) DispatchPendingAlerts() (int, error) {
	alertas, err := ns.alertas.GetPendingNotification()
	if err != nil {
		return 0, err
	}

	enviadas := 0
	for _, alerta := range alertas {
		if err := ns.notificarAlerta(&alerta); err != nil {
			log.Printf("❌ Error al notificar alerta %d: %v", alerta.ID, err)
			continue
		}

		if _, err := ns.alertas.MarkSent(alerta.ID); err != nil {
			log.Printf("❌ Error al marcar alerta %d como enviada: %v", alerta.ID, err)
			continue
		}
		enviadas++
	}

	if len(alertas) > 0 {
		log.Printf("📨 Alertas despachadas: %d/%d", enviadas, len(alertas))
	}
	return enviadas, nil
}

// notificarAlerta envía una alerta al chat del restaurante y copia las
// críticas al chat administrativo
func (ns *NotificacionService) notificarAlerta(alerta *models.AlertaLimite) error {
	texto := ns.formatearMensaje(alerta)

	if ns.bot == nil {
		log.Printf("📢 [solo-log] Restaurante %d: %s", alerta.IDRestaurante, alerta.Mensaje)
		return nil
	}

	var restaurante models.Restaurante
	if err := ns.db.First(&restaurante, alerta.IDRestaurante).Error; err != nil {
		return fmt.Errorf("restaurante no encontrado: %w", err)
	}

	if restaurante.TelegramChatID != 0 {
		if err := ns.enviar(restaurante.TelegramChatID, texto); err != nil {
			return err
		}
	}

	if alerta.NivelUrgencia == models.UrgenciaCritica && ns.adminChatID != 0 {
		admin := fmt.Sprintf("🚨 <b>%s</b>\n%s", restaurante.Nombre, texto)
		if err := ns.enviar(ns.adminChatID, admin); err != nil {
			log.Printf("⚠️ No se pudo copiar la alerta crítica al chat administrativo: %v", err)
		}
	}

	return nil
}

// formatearMensaje arma el texto HTML del mensaje de Telegram
func (ns *NotificacionService) formatearMensaje(alerta *models.AlertaLimite) string {
	icono := "⚠️"
	switch alerta.NivelUrgencia {
	case models.UrgenciaCritica:
		icono = "🚨"
	case models.UrgenciaAlta:
		icono = "🔴"
	}

	return fmt.Sprintf("%s <b>Alerta de límite</b>\n%s\n\nUso: %d/%d (%.0f%%)",
		icono, alerta.Mensaje, alerta.ValorActual, alerta.ValorLimite, alerta.PorcentajeUso)
}

// enviar manda un mensaje HTML a un chat de Telegram
func (ns *NotificacionService) enviar(chatID int64, texto string) error {
	msg := tgbotapi.NewMessage(chatID, texto)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := ns.bot.Send(msg); err != nil {
		return fmt.Errorf("error al enviar mensaje de Telegram: %w", err)
	}
	return nil
}

// NotifyExpiringSubscriptions avisa a los restaurantes cuya suscripción
// vence dentro de los próximos días
func (ns *NotificacionService) NotifyExpiringSubscriptions(dias int) (int, error) {
	suscripciones := NewSuscripcionService(ns.db)
	porVencer, err := suscripciones.GetExpiringSoon(dias)
	if err != nil {
		return 0, err
	}

	avisadas := 0
	for _, s := range porVencer {
		restantes, _ := s.DiasRestantes(time.Now())
		texto := fmt.Sprintf("⏰ Tu suscripción al plan <b>%s</b> vence en %d días. Renueva para no perder el servicio.",
			s.Plan.Nombre, restantes)

		if ns.bot == nil {
			log.Printf("📢 [solo-log] Restaurante %d: suscripción vence en %d días", s.IDRestaurante, restantes)
			avisadas++
			continue
		}

		var restaurante models.Restaurante
		if err := ns.db.First(&restaurante, s.IDRestaurante).Error; err != nil || restaurante.TelegramChatID == 0 {
			continue
		}
		if err := ns.enviar(restaurante.TelegramChatID, texto); err != nil {
			log.Printf("❌ Error al avisar vencimiento al restaurante %d: %v", s.IDRestaurante, err)
			continue
		}
		avisadas++
	}

	return avisadas, nil
}
