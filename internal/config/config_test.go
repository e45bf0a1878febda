package config

import (
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	type want struct {
		apiURL     string
		stateFile  string
		runAddress string
		adminIDs   []int64
	}

	tests := []struct {
		name  string
		env   map[string]string
		flags []string
		want  want
	}{
		{
			name: "defaults",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "tg-token",
				"CRYPTO_BOT_TOKEN":   "cp-token",
			},
			flags: []string{},
			want: want{
				apiURL:     "https://pay.crypt.bot/api",
				stateFile:  "database.json",
				runAddress: ":8080",
			},
		},
		{
			name: "env only",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "tg-token",
				"CRYPTO_BOT_TOKEN":   "cp-token",
				"CRYPTO_BOT_API_URL": "http://localhost:9090/api",
				"STATE_FILE":         "/tmp/state.json",
				"RUN_ADDRESS":        "localhost:9999",
				"ADMIN_IDS":          "1,2,3",
			},
			flags: []string{},
			want: want{
				apiURL:     "http://localhost:9090/api",
				stateFile:  "/tmp/state.json",
				runAddress: "localhost:9999",
				adminIDs:   []int64{1, 2, 3},
			},
		},
		{
			name: "flags only",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "tg-token",
				"CRYPTO_BOT_TOKEN":   "cp-token",
			},
			flags: []string{
				"-c", "http://flag:9090/api",
				"-f", "flag-state.json",
				"-a", "localhost:7777",
			},
			want: want{
				apiURL:     "http://flag:9090/api",
				stateFile:  "flag-state.json",
				runAddress: "localhost:7777",
			},
		},
		{
			name: "env overrides flags",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "tg-token",
				"CRYPTO_BOT_TOKEN":   "cp-token",
				"RUN_ADDRESS":        "env:9000",
			},
			flags: []string{
				"-a", "flag:8000",
			},
			want: want{
				apiURL:     "https://pay.crypt.bot/api",
				stateFile:  "database.json",
				runAddress: "env:9000",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			os.Args = append([]string{"test"}, tt.flags...)

			cfg, err := Parse()
			require.NoError(t, err)

			assert.Equal(t, tt.want.apiURL, cfg.CryptoBotAPIURL)
			assert.Equal(t, tt.want.stateFile, cfg.StateFile)
			assert.Equal(t, tt.want.runAddress, cfg.RunAddress)
			assert.Equal(t, tt.want.adminIDs, cfg.AdminIDs)
		})
	}
}

func TestParseConfig_RequiredTokens(t *testing.T) {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	os.Args = []string{"test"}

	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("CRYPTO_BOT_TOKEN", "cp-token")

	_, err := Parse()
	require.Error(t, err)
}
