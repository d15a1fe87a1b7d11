package domain

// Actor identifies the caller of an engine operation. The HTTP layer builds
// it from token claims; tests construct it directly.
type Actor struct {
	UserID int32
	Admin  bool
}
