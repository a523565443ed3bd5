package notify

import (
	"encoding/json"
	"log"

	"github.com/veyra-io/docflowgo/internal/models"
	"github.com/veyra-io/docflowgo/internal/routing"
	"github.com/veyra-io/docflowgo/internal/websocket"
	"gorm.io/gorm"
)

// Service turns routing engine events into per-user notification rows and
// pushes them to connected users over the websocket hub. Delivery beyond the
// hub (email, SMS) is somebody else's job; this service is the fan-out point
// they would subscribe at.
type Service struct {
	db  *gorm.DB
	hub *websocket.Hub
}

// NewService creates the notification fan-out
func NewService(db *gorm.DB, hub *websocket.Hub) *Service {
	return &Service{db: db, hub: hub}
}

// Notify implements routing.Notifier. Failures are logged, never propagated:
// a lost notification must not fail the routing mutation that caused it.
func (s *Service) Notify(event routing.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ Notify: could not encode event %s: %v", event.Type, err)
		return
	}

	for _, userID := range event.Recipients {
		if userID == "" || userID == event.ActorID {
			continue
		}
		row := models.Notification{
			UserID:     userID,
			DocumentID: event.DocumentID,
			Event:      event.Type,
			Payload:    payload,
		}
		if err := s.db.Create(&row).Error; err != nil {
			log.Printf("⚠️ Notify: could not persist %s for user %s: %v", event.Type, userID, err)
			continue
		}
		if s.hub != nil {
			s.hub.SendToUser(userID, row)
		}
	}
}
