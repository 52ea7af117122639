package domain

import "fmt"

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// DefaultSymbols returns the first n capital letters.
func DefaultSymbols(n int) ([]string, error) {
	if n < 1 || n > len(alphabet) {
		return nil, fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidPairCount, n, len(alphabet))
	}

	symbols := make([]string, n)
	for i := 0; i < n; i++ {
		symbols[i] = alphabet[i : i+1]
	}
	return symbols, nil
}

// ValidateSymbols checks that symbols is non-empty and holds distinct,
// non-empty values.
func ValidateSymbols(symbols []string) error {
	if len(symbols) == 0 {
		return fmt.Errorf("%w: no symbols", ErrInvalidPairCount)
	}

	seen := make(map[string]struct{}, len(symbols))
	for i, s := range symbols {
		if s == "" {
			return fmt.Errorf("%w: position %d", ErrEmptySymbol, i)
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateSymbol, s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

// SelectSymbols returns the symbols a game of pairCount pairs is dealt from:
// the first pairCount entries of custom, or the default alphabet when custom
// is empty.
func SelectSymbols(pairCount int, custom []string) ([]string, error) {
	if len(custom) == 0 {
		return DefaultSymbols(pairCount)
	}
	if pairCount < 1 || pairCount > len(custom) {
		return nil, fmt.Errorf("%w: %d (have %d symbols)", ErrInvalidPairCount, pairCount, len(custom))
	}

	symbols := make([]string, pairCount)
	copy(symbols, custom[:pairCount])
	if err := ValidateSymbols(symbols); err != nil {
		return nil, err
	}
	return symbols, nil
}
