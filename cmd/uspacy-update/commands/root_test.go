package commands

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uspacy-tools/uspacy-update/internal/constants"
)

func TestSanitize(t *testing.T) {
	tests := map[string]struct {
		config   appConfig
		envToken string

		wantToken string
		wantErr   bool
	}{
		"Complete": {
			config:    appConfig{BaseURL: "https://x.uspacy.ua", Entity: "companies", File: "f.csv", WebhookToken: "tok"},
			wantToken: "tok",
		},
		"Token from environment": {
			config:    appConfig{BaseURL: "https://x.uspacy.ua", Entity: "companies", File: "f.csv"},
			envToken:  "env-tok",
			wantToken: "env-tok",
		},
		"Flag wins over environment": {
			config:    appConfig{BaseURL: "https://x.uspacy.ua", Entity: "companies", File: "f.csv", WebhookToken: "tok"},
			envToken:  "env-tok",
			wantToken: "tok",
		},

		"Missing base URL": {config: appConfig{Entity: "companies", File: "f.csv", WebhookToken: "tok"}, wantErr: true},
		"Missing entity":   {config: appConfig{BaseURL: "https://x.uspacy.ua", File: "f.csv", WebhookToken: "tok"}, wantErr: true},
		"Missing file":     {config: appConfig{BaseURL: "https://x.uspacy.ua", Entity: "companies", WebhookToken: "tok"}, wantErr: true},
		"Missing token":    {config: appConfig{BaseURL: "https://x.uspacy.ua", Entity: "companies", File: "f.csv"}, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(constants.WebhookTokenEnv, tc.envToken)

			err := tc.config.sanitize()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantToken, tc.config.WebhookToken)
		})
	}
}

func TestResolveSearchField(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		header    []string
		requested string

		want    string
		wantErr bool
	}{
		"Defaults to first column":     {header: []string{"cod_1c", "title"}, want: "cod_1c"},
		"Skips blank leading columns":  {header: []string{"", "cod_1c"}, want: "cod_1c"},
		"Requested field present":      {header: []string{"cod_1c", "title"}, requested: "title", want: "title"},
		"Requested field absent":       {header: []string{"cod_1c", "title"}, requested: "missing", wantErr: true},
		"Header without any field ids": {header: []string{"", ""}, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveSearchField(tc.header, tc.requested)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
