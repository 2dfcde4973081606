package nats

import (
	"github.com/nats-io/nats.go"

	"github.com/hackfiles/file-vault/internal/api/handlers"
	"github.com/hackfiles/file-vault/internal/api/handlers/user"
)

func Routes() map[string]nats.MsgHandler {
	return map[string]nats.MsgHandler{

		// User events
		"users.deleted": user.HandleUserDeleted,

		// File events
		"files.uploaded": handlers.HandleFileUploaded,
	}
}
