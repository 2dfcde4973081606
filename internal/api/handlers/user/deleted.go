package user

import (
	"context"
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/hackfiles/file-vault/internal/services"
)

type UserDeletedPayload struct {
	UserID string `json:"user_id"`
}

// HandleUserDeleted purges a departed user's whole namespace: every metadata
// row, then every object under the owner-id prefix.
func HandleUserDeleted(msg *nats.Msg) {
	var payload UserDeletedPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Printf("[NATS] users.deleted: invalid JSON: %v", err)
		nak(msg)
		return
	}

	if payload.UserID == "" {
		log.Printf("[NATS] users.deleted: missing user_id")
		nak(msg)
		return
	}

	log.Printf("[NATS] Processing users.deleted for user_id: %s", payload.UserID)
	ctx := context.Background()

	deletedCount, err := services.GetPostgres().DeleteAllEntriesForOwner(ctx, payload.UserID)
	if err != nil {
		log.Printf("[NATS] Failed to delete entries for user %s: %v", payload.UserID, err)
		nak(msg)
		return
	}
	log.Printf("[NATS] Deleted %d entries for user %s", deletedCount, payload.UserID)

	minioSvc := services.GetMinioService()
	if minioSvc == nil {
		log.Printf("[NATS] MinIO service not available, skipping object deletion")
	} else {
		// Every object key starts with the owner id, so the id is the prefix.
		if err := minioSvc.DeleteByPrefix(ctx, payload.UserID); err != nil {
			log.Printf("[NATS] Failed to delete objects for user %s: %v", payload.UserID, err)
			nak(msg)
			return
		}
		log.Printf("[NATS] Deleted objects with prefix: %s", payload.UserID)
	}

	log.Printf("[NATS] Successfully cleaned up user %s", payload.UserID)
	ack(msg)
}

// ack safely acknowledges the message
func ack(msg *nats.Msg) {
	if err := msg.Ack(); err != nil {
		log.Printf("[NATS] Failed to ack message: %v", err)
	}
}

// nak negatively acknowledges (retry)
func nak(msg *nats.Msg) {
	if err := msg.Nak(); err != nil {
		log.Printf("[NATS] Failed to nak message: %v", err)
	}
}
