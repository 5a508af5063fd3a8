package domain

import "fmt"

// Status enumerates incident lifecycle states. The canonical values are
// the backend's Portuguese vocabulary; the English spellings some older
// call sites wrote ("open", "in_progress", "resolved") are accepted on
// parse and never emitted.
type Status string

const (
	StatusOpen       Status = "aberto"
	StatusInProgress Status = "em_andamento"
	StatusResolved   Status = "solucionado"
)

// AllStatuses returns every valid status.
func AllStatuses() []Status {
	return []Status{StatusOpen, StatusInProgress, StatusResolved}
}

// IsValid reports whether the status is one of the canonical values.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are expected. Resolved
// incidents intentionally remain non-terminal: the assigned technician may
// keep commenting and re-resolving, matching current product behavior.
func (s Status) Terminal() bool {
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus normalizes a raw status value into a canonical Status.
// Matching is case- and accent-insensitive and accepts the legacy aliases
// scattered across the old front end.
func ParseStatus(raw string) (Status, error) {
	switch Fold(raw) {
	case "aberto", "open":
		return StatusOpen, nil
	case "em_andamento", "em_atendimento", "in_progress":
		return StatusInProgress, nil
	case "solucionado", "resolved", "closed":
		return StatusResolved, nil
	default:
		return "", fmt.Errorf("invalid incident status: %q", raw)
	}
}

// NormalizeStatus is ParseStatus with a fallback: values the gateway does
// not recognize come back unchanged so they still render, they just never
// match a canonical state.
func NormalizeStatus(raw string) Status {
	status, err := ParseStatus(raw)
	if err != nil {
		return Status(Fold(raw))
	}
	return status
}
