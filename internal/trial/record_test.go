package trial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRecord(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	record := newRecord("machine-abc", "TicketZero", now, DefaultTrialLength)

	assert.Equal(t, "machine-abc", record.MachineID)
	assert.Equal(t, now.Unix(), record.StartTime)
	assert.Equal(t, now.Unix()+3*24*60*60, record.ExpiryTime)
	assert.Equal(t, "TicketZero", record.AppName)
	assert.Equal(t, RecordVersion, record.Version)
	assert.True(t, record.checksumValid())
}

func TestRecordChecksumDetectsFieldEdits(t *testing.T) {
	now := time.Now()
	base := newRecord("machine-abc", "TicketZero", now, DefaultTrialLength)

	tests := []struct {
		name   string
		mutate func(r *Record)
	}{
		{name: "machine id", mutate: func(r *Record) { r.MachineID = "machine-xyz" }},
		{name: "start time", mutate: func(r *Record) { r.StartTime += 24 * 60 * 60 }},
		{name: "app name", mutate: func(r *Record) { r.AppName = "OtherApp" }},
		{name: "checksum", mutate: func(r *Record) { r.Checksum = "deadbeef" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := base
			tt.mutate(&record)
			assert.False(t, record.checksumValid())
		})
	}
}

func TestRecordChecksumIgnoresExpiry(t *testing.T) {
	// The checksum binds identity fields only; the expiry field is
	// protected by the encrypted container, not the checksum.
	record := newRecord("machine-abc", "TicketZero", time.Now(), DefaultTrialLength)
	record.ExpiryTime += 365 * 24 * 60 * 60

	assert.True(t, record.checksumValid())
}
