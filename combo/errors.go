package combo

import "errors"

// Construction-time configuration errors. The engine validates its
// registry eagerly and fails loudly rather than producing undefined
// runtime behavior from a malformed combo.
var (
	ErrEmptyMatch      = errors.New("combo: match tuple must not be empty")
	ErrNonPositiveWait = errors.New("combo: timeout must be positive")
	ErrDuplicateCombo  = errors.New("combo: duplicate combo definition")
)
