package utils_test

import (
	"testing"

	"github.com/jrsteele09/fitcamp-session/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestSplitCSV(t *testing.T) {
	require.Equal(t, []string{"a.png", "b.png"}, utils.SplitCSV(" a.png, ,b.png,"))
	require.Empty(t, utils.SplitCSV(""))
}

func TestValueAndPtr(t *testing.T) {
	require.Equal(t, 0, utils.Value[int](nil))
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
}
