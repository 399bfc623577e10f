package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/topupbot/internal/engine"
)

func TestActionCodecRoundTrip(t *testing.T) {
	for kind, key := range kindToKey {
		action := engine.Action{Kind: kind}
		if idKinds[kind] {
			action.ID = 42
		}

		gotKey, payload := encodeAction(action)
		assert.Equal(t, key, gotKey)

		decoded, ok := decodeAction(gotKey, payload)
		require.True(t, ok, "key %s", key)
		assert.Equal(t, action, decoded, "key %s", key)
	}
}

func TestDecodeActionRejectsBadInput(t *testing.T) {
	_, ok := decodeAction("user:unknown", "")
	assert.False(t, ok)

	_, ok = decodeAction(keyReviewOrder, "")
	assert.False(t, ok)

	_, ok = decodeAction(keyReviewOrder, "abc")
	assert.False(t, ok)

	_, ok = decodeAction(keyReviewOrder, "-1")
	assert.False(t, ok)

	// Actions without an id ignore stray payloads.
	a, ok := decodeAction(keyBackMain, "999")
	require.True(t, ok)
	assert.Equal(t, engine.Action{Kind: engine.ActionBackMain}, a)
}

func TestMarkupForBuildsInlineKeyboard(t *testing.T) {
	rows := [][]engine.Button{
		{
			{Label: "UC PUBG", Action: engine.Action{Kind: engine.ActionSelectProduct, ID: 1}},
			{Label: "Robux", Action: engine.Action{Kind: engine.ActionSelectProduct, ID: 2}},
		},
		{
			{Label: "Back", Action: engine.Action{Kind: engine.ActionBackMain}},
		},
	}

	m := markupFor(rows)
	require.NotNil(t, m)
	require.Len(t, m.InlineKeyboard, 2)
	require.Len(t, m.InlineKeyboard[0], 2)
	require.Len(t, m.InlineKeyboard[1], 1)

	assert.Equal(t, "UC PUBG", m.InlineKeyboard[0][0].Text)
	assert.Equal(t, keySelectProduct, m.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "1", m.InlineKeyboard[0][0].Data)
	assert.Equal(t, keyBackMain, m.InlineKeyboard[1][0].Unique)
	assert.Empty(t, m.InlineKeyboard[1][0].Data)

	assert.Nil(t, markupFor(nil))
}
