package utils_test

import (
	"encoding/hex"
	"testing"

	"github.com/jrsteele09/tenant-auth-server/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	a, err := utils.GenerateToken()
	require.NoError(t, err)
	b, err := utils.GenerateToken()
	require.NoError(t, err)

	require.Len(t, a, 64)
	require.NotEqual(t, a, b)
	_, err = hex.DecodeString(a)
	require.NoError(t, err)
}

func TestPointerHelpers(t *testing.T) {
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, 0, utils.Value[int](nil))
}
