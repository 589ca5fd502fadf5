package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Number of units of the underlying covered by one option contract
const ContractSize = 100.0

// The type of an option contract
type ContractType int

const (
	ContractTypeCall ContractType = iota
	ContractTypePut
)

func (t ContractType) String() string {
	switch t {
	case ContractTypeCall:
		return "Call"
	case ContractTypePut:
		return "Put"
	default:
		return fmt.Sprintf("ContractType(%d)", int(t))
	}
}

// ParseContractType parses "Call" or "Put", ignoring case
func ParseContractType(s string) (ContractType, error) {
	switch {
	case strings.EqualFold(s, "call"):
		return ContractTypeCall, nil
	case strings.EqualFold(s, "put"):
		return ContractTypePut, nil
	default:
		return 0, fmt.Errorf("unknown contract type %q, expected \"Call\" or \"Put\"", s)
	}
}

func (t ContractType) MarshalText() ([]byte, error) {
	switch t {
	case ContractTypeCall, ContractTypePut:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("invalid contract type %d", int(t))
	}
}

func (t *ContractType) UnmarshalText(text []byte) error {
	parsed, err := ParseContractType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// The stock and cash movement caused by exercising an option leg
type ExerciseResult struct {
	AmountChange float64
	CashChange   float64
}

// OptionLeg is one grouping of identical option contracts within a position
type OptionLeg struct {
	ContractType ContractType `json:"contractType"`
	StrikePrice  float64      `json:"strikePrice"`
	Premium      float64      `json:"premium"` // per unit, not per contract
	Amount       float64      `json:"amount"`  // contracts
}

// Premiums is the total premium paid or received for the leg
func (o OptionLeg) Premiums() float64 {
	return o.Premium * o.Amount * ContractSize
}

// Exercise returns the holder's stock and cash movement when the leg is exercised.
// The writer of the leg sees the same movement with the signs inverted.
func (o OptionLeg) Exercise() ExerciseResult {
	units := o.Amount * ContractSize
	if o.ContractType == ContractTypeCall {
		return ExerciseResult{
			AmountChange: units,
			CashChange:   -o.StrikePrice * units,
		}
	}
	return ExerciseResult{
		AmountChange: -units,
		CashChange:   o.StrikePrice * units,
	}
}

// ShouldExercise reports whether the leg finishes in the money at expectedPrice
func (o OptionLeg) ShouldExercise(expectedPrice float64) bool {
	if o.ContractType == ContractTypeCall {
		return o.StrikePrice < expectedPrice
	}
	return o.StrikePrice > expectedPrice
}

// BreakevenPoint is the underlying price at which the leg's intrinsic value equals its premium
func (o OptionLeg) BreakevenPoint(bought bool) float64 {
	// a bought call and a sold put both need the price to move up by the premium
	if (o.ContractType == ContractTypeCall) == bought {
		return o.StrikePrice + o.Premium
	}
	return o.StrikePrice - o.Premium
}

type optionLegJSON struct {
	ContractType *ContractType `json:"contractType"`
	StrikePrice  *float64      `json:"strikePrice"`
	Premium      *float64      `json:"premium"`
	Amount       *float64      `json:"amount"`
}

func (o *OptionLeg) UnmarshalJSON(data []byte) error {
	var raw optionLegJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.ContractType == nil:
		return missingField("contractType")
	case raw.StrikePrice == nil:
		return missingField("strikePrice")
	case raw.Premium == nil:
		return missingField("premium")
	case raw.Amount == nil:
		return missingField("amount")
	}

	*o = OptionLeg{
		ContractType: *raw.ContractType,
		StrikePrice:  *raw.StrikePrice,
		Premium:      *raw.Premium,
		Amount:       *raw.Amount,
	}
	return nil
}

// Position is a snapshot of a holding in one underlying plus the option legs written on it
type Position struct {
	Price         float64     `json:"price"`
	AmountOwned   float64     `json:"amountOwned"`
	OptionsBought []OptionLeg `json:"optionsBought"`
	OptionsSold   []OptionLeg `json:"optionsSold"`
}

// Creates a Position holding only the underlying
func NewStockPosition(price, amountOwned float64) *Position {
	return &Position{
		Price:         price,
		AmountOwned:   amountOwned,
		OptionsBought: make([]OptionLeg, 0),
		OptionsSold:   make([]OptionLeg, 0),
	}
}

// LegCount returns the number of bought and sold legs
func (p *Position) LegCount() int {
	return len(p.OptionsBought) + len(p.OptionsSold)
}

type positionJSON struct {
	Price         *float64    `json:"price"`
	AmountOwned   *float64    `json:"amountOwned"`
	OptionsBought []OptionLeg `json:"optionsBought"`
	OptionsSold   []OptionLeg `json:"optionsSold"`
}

// UnmarshalJSON requires price and amountOwned; missing leg lists decode as empty
func (p *Position) UnmarshalJSON(data []byte) error {
	var raw positionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Price == nil {
		return missingField("price")
	}
	if raw.AmountOwned == nil {
		return missingField("amountOwned")
	}
	if raw.OptionsBought == nil {
		raw.OptionsBought = make([]OptionLeg, 0)
	}
	if raw.OptionsSold == nil {
		raw.OptionsSold = make([]OptionLeg, 0)
	}

	*p = Position{
		Price:         *raw.Price,
		AmountOwned:   *raw.AmountOwned,
		OptionsBought: raw.OptionsBought,
		OptionsSold:   raw.OptionsSold,
	}
	return nil
}

func missingField(name string) error {
	return fmt.Errorf("missing required field %q", name)
}
