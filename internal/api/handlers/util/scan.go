package util

import (
	"context"
	"log"
	"time"

	clamd "github.com/dutchcoders/go-clamd"

	"github.com/hackfiles/file-vault/internal/models"
	"github.com/hackfiles/file-vault/internal/services"
)

var clamAvURL string

// InitScanner records the ClamAV address for subsequent scans.
func InitScanner(url string) {
	clamAvURL = url
}

// ScanEntry streams an uploaded object through ClamAV. Infected payloads are
// deleted from the object store and the entry flagged; the metadata row
// stays so the owner can see what happened.
func ScanEntry(entryID, objectKey string) {
	minioService := services.GetMinioService()
	if minioService == nil {
		log.Println("Scan skipped: storage service not available")
		return
	}

	ctx := context.Background()
	rc, err := minioService.Get(ctx, objectKey)
	if err != nil {
		log.Println("Failed to fetch object for scanning:", err)
		return
	}
	defer rc.Close()

	c := clamd.NewClamd(clamAvURL)
	response, err := c.ScanStream(rc, make(chan bool))
	if err != nil {
		log.Println("Scan failed:", err)
		return
	}

	status := models.ScanClean
	for res := range response {
		if res.Status == clamd.RES_FOUND {
			log.Printf("Virus detected in %s: %s", entryID, res.Description)
			status = models.ScanInfected

			// delete infected payload
			if err := minioService.Delete(ctx, objectKey); err != nil {
				log.Println("Failed to delete infected object:", err)
				return
			}
		}
	}

	if err := services.GetPostgres().UpdateScanStatus(ctx, entryID, status, time.Now()); err != nil {
		log.Println("Failed to update scan status:", err)
	} else {
		log.Printf("Scan finished for %s: %s", entryID, status)
	}
}
