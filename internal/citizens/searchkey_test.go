package citizens

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchKeyFoldsAccents(t *testing.T) {
	require.Equal(t, "jose nunez", SearchKey("José Núñez"))
	require.Equal(t, "francois", SearchKey("FRANÇOIS"))
}

func TestSearchKeyCollapsesWhitespace(t *testing.T) {
	require.Equal(t, "maria da silva", SearchKey("  Maria   da  Silva "))
}

func TestSearchKeyPlainASCIIUnchanged(t *testing.T) {
	require.Equal(t, "john smith", SearchKey("John Smith"))
}
