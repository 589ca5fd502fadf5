package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContractType(t *testing.T) {
	tests := []struct {
		input   string
		want    ContractType
		wantErr bool
	}{
		{input: "Call", want: ContractTypeCall},
		{input: "call", want: ContractTypeCall},
		{input: "PUT", want: ContractTypePut},
		{input: "Put", want: ContractTypePut},
		{input: "straddle", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseContractType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionLeg_Premiums(t *testing.T) {
	leg := OptionLeg{ContractType: ContractTypeCall, StrikePrice: 14.5, Premium: 0.25, Amount: 2}
	assert.InDelta(t, 50.0, leg.Premiums(), 1e-9)
}

func TestOptionLeg_Exercise(t *testing.T) {
	call := OptionLeg{ContractType: ContractTypeCall, StrikePrice: 14.5, Premium: 0.25, Amount: 1}
	assert.Equal(t, ExerciseResult{AmountChange: 100, CashChange: -1450}, call.Exercise())

	put := OptionLeg{ContractType: ContractTypePut, StrikePrice: 14.5, Premium: 0.25, Amount: 2}
	assert.Equal(t, ExerciseResult{AmountChange: -200, CashChange: 2900}, put.Exercise())
}

func TestOptionLeg_ShouldExercise(t *testing.T) {
	call := OptionLeg{ContractType: ContractTypeCall, StrikePrice: 10}
	assert.False(t, call.ShouldExercise(9))
	assert.False(t, call.ShouldExercise(10), "at the money is not exercised")
	assert.True(t, call.ShouldExercise(11))

	put := OptionLeg{ContractType: ContractTypePut, StrikePrice: 10}
	assert.True(t, put.ShouldExercise(9))
	assert.False(t, put.ShouldExercise(10), "at the money is not exercised")
	assert.False(t, put.ShouldExercise(11))
}

func TestOptionLeg_BreakevenPoint(t *testing.T) {
	call := OptionLeg{ContractType: ContractTypeCall, StrikePrice: 16, Premium: 0.15, Amount: 1}
	put := OptionLeg{ContractType: ContractTypePut, StrikePrice: 14.5, Premium: 0.25, Amount: 1}

	assert.InDelta(t, 16.15, call.BreakevenPoint(true), 1e-9)
	assert.InDelta(t, 15.85, call.BreakevenPoint(false), 1e-9)
	assert.InDelta(t, 14.25, put.BreakevenPoint(true), 1e-9)
	assert.InDelta(t, 14.75, put.BreakevenPoint(false), 1e-9)
}

func TestPosition_UnmarshalJSON(t *testing.T) {
	body := `{
		"price": 15,
		"amountOwned": 100,
		"optionsBought": [{"contractType": "Put", "strikePrice": 14.5, "amount": 1, "premium": 0.25}],
		"optionsSold": [{"contractType": "call", "strikePrice": 16, "amount": 1, "premium": 0.15}]
	}`

	var position Position
	require.NoError(t, json.Unmarshal([]byte(body), &position))

	assert.Equal(t, 15.0, position.Price)
	assert.Equal(t, 100.0, position.AmountOwned)
	require.Len(t, position.OptionsBought, 1)
	require.Len(t, position.OptionsSold, 1)
	assert.Equal(t, OptionLeg{ContractType: ContractTypePut, StrikePrice: 14.5, Premium: 0.25, Amount: 1}, position.OptionsBought[0])
	assert.Equal(t, ContractTypeCall, position.OptionsSold[0].ContractType)
	assert.Equal(t, 2, position.LegCount())
}

func TestPosition_UnmarshalJSON_DefaultsLegLists(t *testing.T) {
	var position Position
	require.NoError(t, json.Unmarshal([]byte(`{"price": 15, "amountOwned": 500, "optionsSold": null}`), &position))

	assert.NotNil(t, position.OptionsBought)
	assert.NotNil(t, position.OptionsSold)
	assert.Empty(t, position.OptionsBought)
	assert.Empty(t, position.OptionsSold)
}

func TestPosition_UnmarshalJSON_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{name: "missing price", body: `{"amountOwned": 1}`, errMsg: `"price"`},
		{name: "missing amountOwned", body: `{"price": 1}`, errMsg: `"amountOwned"`},
		{name: "null body", body: `null`, errMsg: `"price"`},
		{name: "price as string", body: `{"price": "15", "amountOwned": 1}`, errMsg: "price"},
		{
			name:   "unknown contract type",
			body:   `{"price": 1, "amountOwned": 1, "optionsBought": [{"contractType": "Swap", "strikePrice": 1, "amount": 1, "premium": 1}]}`,
			errMsg: "unknown contract type",
		},
		{
			name:   "leg without premium",
			body:   `{"price": 1, "amountOwned": 1, "optionsSold": [{"contractType": "Put", "strikePrice": 1, "amount": 1}]}`,
			errMsg: `"premium"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var position Position
			err := json.Unmarshal([]byte(tt.body), &position)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPosition_MarshalJSON(t *testing.T) {
	position := NewStockPosition(15, 100)
	position.OptionsBought = append(position.OptionsBought, OptionLeg{ContractType: ContractTypePut, StrikePrice: 14.5, Premium: 0.25, Amount: 1})

	data, err := json.Marshal(position)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"price": 15,
		"amountOwned": 100,
		"optionsBought": [{"contractType": "Put", "strikePrice": 14.5, "premium": 0.25, "amount": 1}],
		"optionsSold": []
	}`, string(data))
}

func TestNewReturnData(t *testing.T) {
	rd := NewReturnData([]ChartPoint{{X: 1, Y: -2}, {X: 3, Y: 4}})
	assert.Equal(t, []float64{1, 3}, rd.Labels)
	assert.Equal(t, []float64{-2, 4}, rd.Data)
}
