package handlers

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/hackfiles/file-vault/internal/api/handlers/util"
)

// FileUploadedPayload is the files.uploaded event body.
type FileUploadedPayload struct {
	EntryID   string `json:"entry_id"`
	ObjectKey string `json:"object_key"`
	OwnerID   string `json:"owner_id"`
	Size      int64  `json:"size"`
}

// HandleFileUploaded runs the malware scan for each committed upload.
func HandleFileUploaded(msg *nats.Msg) {
	var payload FileUploadedPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Printf("[NATS] files.uploaded: invalid JSON: %v", err)
		nak(msg)
		return
	}
	if payload.EntryID == "" || payload.ObjectKey == "" {
		log.Printf("[NATS] files.uploaded: missing entry_id or object_key")
		nak(msg)
		return
	}

	util.ScanEntry(payload.EntryID, payload.ObjectKey)
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
