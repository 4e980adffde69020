package data

import (
	"fmt"
	"strings"
)

// RiskTier classifies how likely a crafting route is to ruin the item.
// The zero value means "not classified".
type RiskTier int

const (
	RiskUnset RiskTier = iota
	RiskLow
	RiskMedium
	RiskHigh
)

var riskNames = [...]string{"", "low", "medium", "high"}

// RiskTiers lists every classified risk tier in ascending order.
var RiskTiers = []RiskTier{RiskLow, RiskMedium, RiskHigh}

func (r RiskTier) String() string {
	if r >= 0 && int(r) < len(riskNames) {
		return riskNames[r]
	}
	return "unknown"
}

// ParseRisk accepts "low", "medium" or "high" in any case, with "-"/"_"/" " ignored
// around the word. Empty input yields RiskUnset.
func ParseRisk(s string) (RiskTier, error) {
	switch tierWord(s) {
	case "":
		return RiskUnset, nil
	case "low":
		return RiskLow, nil
	case "medium", "med", "moderate":
		return RiskMedium, nil
	case "high":
		return RiskHigh, nil
	}
	return RiskUnset, fmt.Errorf("unknown risk tier %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (r RiskTier) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RiskTier) UnmarshalText(text []byte) error {
	v, err := ParseRisk(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// BudgetTier classifies the currency investment of a crafting route.
// The zero value means "not classified".
type BudgetTier int

const (
	BudgetUnset BudgetTier = iota
	BudgetLow
	BudgetStandard
	BudgetLuxury
)

var budgetNames = [...]string{"", "budget", "standard", "luxury"}

// BudgetTiers lists every classified budget tier in ascending order.
var BudgetTiers = []BudgetTier{BudgetLow, BudgetStandard, BudgetLuxury}

func (b BudgetTier) String() string {
	if b >= 0 && int(b) < len(budgetNames) {
		return budgetNames[b]
	}
	return "unknown"
}

// ParseBudget accepts "budget", "standard" or "luxury". Empty input yields BudgetUnset.
func ParseBudget(s string) (BudgetTier, error) {
	switch tierWord(s) {
	case "":
		return BudgetUnset, nil
	case "budget", "cheap", "low":
		return BudgetLow, nil
	case "standard", "medium", "mid":
		return BudgetStandard, nil
	case "luxury", "expensive", "high":
		return BudgetLuxury, nil
	}
	return BudgetUnset, fmt.Errorf("unknown budget tier %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (b BudgetTier) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BudgetTier) UnmarshalText(text []byte) error {
	v, err := ParseBudget(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

func tierWord(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, "-_ ")
	s = strings.TrimSuffix(s, " tier")
	s = strings.TrimSuffix(s, "_tier")
	return s
}
