package domain

import "fmt"

// Priority enumerates incident urgency as the gateway tracks it. The
// backend speaks a different vocabulary (BAIXA/MEDIA/ALTA/CRITICA); the
// translation lives in Wire and ParsePriority so nothing else in the
// codebase ever sees both.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// AllPriorities returns every valid priority, lowest first.
func AllPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// IsValid reports whether the priority is one of the canonical values.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

func (p Priority) String() string {
	return string(p)
}

// Wire maps the priority to the backend enum. Unknown input maps to BAIXA;
// that default is documented behavior, not an error.
func (p Priority) Wire() string {
	switch p {
	case PriorityLow:
		return "BAIXA"
	case PriorityMedium:
		return "MEDIA"
	case PriorityHigh:
		return "ALTA"
	case PriorityCritical:
		return "CRITICA"
	default:
		return "BAIXA"
	}
}

// Rank orders priorities for sorting, lowest urgency first. Unknown values
// sort below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return 0
	}
}

// ParsePriority accepts either vocabulary, case- and accent-insensitively
// ("Crítica" and "CRITICA" both parse).
func ParsePriority(raw string) (Priority, error) {
	switch Fold(raw) {
	case "low", "baixa":
		return PriorityLow, nil
	case "medium", "media":
		return PriorityMedium, nil
	case "high", "alta":
		return PriorityHigh, nil
	case "critical", "critica":
		return PriorityCritical, nil
	default:
		return "", fmt.Errorf("invalid incident priority: %q", raw)
	}
}

// NormalizePriority is ParsePriority with the documented BAIXA-side
// default for unrecognized input.
func NormalizePriority(raw string) Priority {
	priority, err := ParsePriority(raw)
	if err != nil {
		return PriorityLow
	}
	return priority
}
