package trial

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// RecordVersion is the persisted record format version.
const RecordVersion = "1.0"

// Record is the single persisted trial entity. It is created once at
// activation and read-only thereafter: a tampered or expired record is
// reported, never repaired.
type Record struct {
	MachineID  string `json:"machine_id"`
	StartTime  int64  `json:"start_time"`
	ExpiryTime int64  `json:"expiry_time"`
	AppName    string `json:"app_name"`
	Version    string `json:"version"`
	Checksum   string `json:"checksum"`
}

// newRecord creates an activated record starting at now. The expiry is
// fixed at creation and never extended.
func newRecord(machineID, appName string, now time.Time, length time.Duration) Record {
	start := now.Unix()
	return Record{
		MachineID:  machineID,
		StartTime:  start,
		ExpiryTime: start + int64(length.Seconds()),
		AppName:    appName,
		Version:    RecordVersion,
		Checksum:   recordChecksum(machineID, start, appName),
	}
}

// recordChecksum binds the identity fields of a record for tamper
// evidence. This is a plain digest, not a MAC: it detects in-place
// edits of the decrypted record, nothing more.
func recordChecksum(machineID string, startTime int64, appName string) string {
	data := fmt.Sprintf("%s%d%s", machineID, startTime, appName)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// checksumValid reports whether the stored checksum matches the record
// fields it binds.
func (r Record) checksumValid() bool {
	return r.Checksum == recordChecksum(r.MachineID, r.StartTime, r.AppName)
}
