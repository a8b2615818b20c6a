package sui_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/checkpoint-indexer/pkg/sui"
	"github.com/ava-labs/checkpoint-indexer/pkg/sui/suitest"
)

func TestStructured_RoundTripAfterDecode(t *testing.T) {
	t.Parallel()
	original := suitest.Minting(suitest.Sequence, suitest.Address(0xab))

	decoded, err := sui.Decode(suitest.MustEncode(original))
	require.NoError(t, err)

	doc, err := sui.ToStructured(decoded)
	require.NoError(t, err)

	back, err := sui.FromStructured(doc)
	require.NoError(t, err)

	require.Equal(t, decoded.Sequence(), back.Sequence())
	require.Equal(t, decoded.Transactions, back.Transactions)
	require.Equal(t, decoded, back)
}

func TestToStructured_Shape(t *testing.T) {
	t.Parallel()
	doc, err := sui.ToStructured(suitest.Minting(suitest.Sequence, suitest.Address(0xab)))
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, json.Unmarshal(doc, &tree))

	summary := tree["checkpoint_summary"].(map[string]any)["data"].(map[string]any)
	assert.EqualValues(t, suitest.Sequence, summary["sequence_number"])
	assert.Contains(t, tree["checkpoint_contents"], "V1")

	tx := tree["transactions"].([]any)[0].(map[string]any)
	entry := tx["transaction"].(map[string]any)["data"].([]any)[0].(map[string]any)
	v1 := entry["intent_message"].(map[string]any)["value"].(map[string]any)["V1"].(map[string]any)
	assert.Equal(t, "0x"+repeat("ab", 32), v1["sender"])
	assert.Equal(t, "None", v1["expiration"])

	ptb := v1["kind"].(map[string]any)["ProgrammableTransaction"].(map[string]any)
	cmds := ptb["commands"].([]any)
	require.Len(t, cmds, 2)
	call := cmds[0].(map[string]any)["MoveCall"].(map[string]any)
	assert.Equal(t, suitest.TargetPackage, call["package"])
	assert.Equal(t, "mint", call["function"])
	assert.Contains(t, cmds[1].(map[string]any), "TransferObjects")
	inputs := ptb["inputs"].([]any)
	require.Len(t, inputs, 2)
	assert.Equal(t, []any{42.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0}, inputs[0].(map[string]any)["Pure"], "pure bytes render as numbers")

	gas := tx["effects"].(map[string]any)["V2"].(map[string]any)["gas_used"].(map[string]any)
	assert.EqualValues(t, suitest.Gas.ComputationCost, gas["computationCost"])
	assert.Contains(t, tx, "events")
	assert.Len(t, tx["input_objects"], 1)
	assert.Len(t, tx["output_objects"], 1)
}

func TestStructured_LiveRoundTrip(t *testing.T) {
	t.Parallel()
	blob := suitest.Live(suitest.Sequence, suitest.Address(0xab))
	cp, err := sui.Decode(blob)
	require.NoError(t, err)

	doc, err := sui.ToStructured(cp)
	require.NoError(t, err)
	back, err := sui.FromStructured(doc)
	require.NoError(t, err)

	out, err := sui.Encode(back)
	require.NoError(t, err)
	assert.Equal(t, blob, out)
}

func TestFromStructured_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: "{"},
		{name: "unknown enum variant", doc: `{"transactions":[{"effects":{"V9":{}}}]}`},
		{name: "two variants", doc: `{"transactions":[{"effects":{"V1":{},"V2":{}}}]}`},
		{name: "unit name for payload variant", doc: `{"transactions":[{"effects":"V2"}]}`},
		{name: "bad address", doc: `{"transactions":[{"transaction":{"data":[{"intent_message":{"value":{"V1":{"sender":"0xnope"}}}}]}}]}`},
		{name: "bad digest", doc: `{"checkpoint_summary":{"data":{"content_digest":"abc"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := sui.FromStructured(sui.Document(tt.doc))
			require.Error(t, err)
		})
	}
}

func TestEnum_Variant(t *testing.T) {
	t.Parallel()
	cmd := suitest.MoveCall(suitest.Address(1), "m", "f")
	assert.Equal(t, "MoveCall", cmd.Variant())
	assert.Equal(t, "", sui.Command{}.Variant())

	_, err := json.Marshal(sui.Command{})
	require.Error(t, err)
}

func TestTransactionEffects_GasUsed(t *testing.T) {
	t.Parallel()
	gas, ok := suitest.Tx().Effects.GasUsed()
	require.True(t, ok)
	assert.Equal(t, suitest.Gas, gas)

	_, ok = sui.TransactionEffects{}.GasUsed()
	assert.False(t, ok)
}

func TestAddress_ShortForm(t *testing.T) {
	t.Parallel()
	a, err := sui.ParseAddress("0x2")
	require.NoError(t, err)
	assert.Equal(t, "0x"+repeat("00", 31)+"02", a.String())
}

func repeat(s string, n int) string {
	out := ""
	for range n {
		out += s
	}
	return out
}
