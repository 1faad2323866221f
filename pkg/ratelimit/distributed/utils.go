package distributed

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
)

// LockSuffix marks a lock name as a rate limit lock.
const LockSuffix = ":ratelimit"

// LockName returns the distributed lock name DoLocked uses for subject.
func LockName(subject string) string {
	return subject + LockSuffix
}

// generateInstanceID creates a unique identifier for this application instance.
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%d-%s", hostname, os.Getpid(), uuid.NewString()[:8])
}

// bucketField is the hash field holding bucket idx.
func bucketField(idx int) string {
	return strconv.Itoa(idx)
}

func bucketFields(buckets []int) []string {
	fields := make([]string, len(buckets))
	for i, b := range buckets {
		fields[i] = bucketField(b)
	}
	return fields
}
