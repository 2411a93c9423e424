package dplog_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ensembl-dp/dpc/internal/dp/dplog"
)

func TestNewScopesComponentField(t *testing.T) {
	entry := dplog.New("compiler", dplog.Quiet)
	require.Equal(t, "compiler", entry.Data["component"])
	require.Equal(t, logrus.ErrorLevel, entry.Logger.Level)
}

func TestVerboseLevelsRaiseLogLevel(t *testing.T) {
	cases := []struct {
		v     dplog.Verbose
		level logrus.Level
	}{
		{dplog.Info, logrus.InfoLevel},
		{dplog.Debug, logrus.DebugLevel},
		{dplog.Trace, logrus.TraceLevel},
	}
	for _, tc := range cases {
		entry := dplog.New("pass", tc.v)
		require.Equal(t, tc.level, entry.Logger.Level)
	}
}

func TestNoopDiscardsOutput(t *testing.T) {
	entry := dplog.Noop()
	require.NotPanics(t, func() {
		entry.Info("should be discarded")
	})
}
