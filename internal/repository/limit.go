package repository

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// listLimit maps a caller-supplied page size onto 1..maxListLimit.
func listLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return defaultListLimit
	}
	return limit
}
