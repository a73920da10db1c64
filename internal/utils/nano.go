package utils

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	NanoidSize     = 32
	nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	recordSuffixSize     = 7
	recordSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

func NanoID() string {
	return NanoIDSize(NanoidSize)
}

func NanoIDSize(size int) string {
	if size == 0 {
		size = NanoidSize
	}

	return gonanoid.MustGenerate(nanoidAlphabet, size)
}

// RecordID returns "<prefix>_<unix millis>_<7 random chars>". Ids sort
// roughly by creation time; the suffix keeps ids from the same millisecond
// apart.
func RecordID(prefix string) string {
	return RecordIDAt(prefix, time.Now())
}

func RecordIDAt(prefix string, at time.Time) string {
	suffix := gonanoid.MustGenerate(recordSuffixAlphabet, recordSuffixSize)
	return fmt.Sprintf("%s_%d_%s", prefix, at.UnixMilli(), suffix)
}

// Timestamp formats t the way records carry created_at.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
