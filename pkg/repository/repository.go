package repository

// Store is a local durable key-value store. It backs the meeting
// collection when no remote is configured and serves as the best-effort
// fallback channel when the remote is unreachable.
type Store interface {
	// Get retrieves the value for a key. The second return value is
	// false when the key has never been set.
	Get(key string) (string, bool)

	// Set stores a value under a key, replacing any previous value.
	Set(key, value string) error
}

// Keys used by the application.
const (
	// KeyMeetings holds the serialized meeting collection snapshot.
	KeyMeetings = "meetings"

	// KeyReminderState holds the reminder bookkeeping side table. It is
	// only meaningful within a running session and is ignored at startup.
	KeyReminderState = "reminder-state"
)
