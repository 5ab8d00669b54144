package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"care-chat/errors"
)

func TestModerator_Censor_ReplacesWord(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"oxycodone"}, '*')
	req.NoError(err)

	censored, found := moderator.Censor("can you prescribe Oxycodone again")

	req.Equal("can you prescribe ********* again", censored)
	req.Equal([]string{"oxycodone"}, found)
}

func TestModerator_Censor_MatchesSpacedVariant(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"badword"}, '#')
	req.NoError(err)

	censored, found := moderator.Censor("b-a-d-w-o-r-d in the middle")

	req.Equal([]string{"badword"}, found)
	req.NotContains(censored, "b-a-d-w-o-r-d")
}

func TestModerator_Censor_NoMatchPassthrough(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"badword"}, '*')
	req.NoError(err)

	original := "a perfectly clean sentence"
	censored, found := moderator.Censor(original)

	req.Equal(original, censored)
	req.Empty(found)
}

func TestModerator_Censor_EmptyText(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"badword"}, '*')
	req.NoError(err)

	censored, found := moderator.Censor("")
	req.Equal("", censored)
	req.Empty(found)
}

func TestNewModerator_EmptyWords(t *testing.T) {
	req := require.New(t)

	_, err := NewModerator(nil, '*')
	req.ErrorIs(err, errors.ErrEmptyWords)
}
