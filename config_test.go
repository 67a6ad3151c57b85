package docpager

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		key     string
		want    Config
		wantErr bool
	}{
		{
			name: "section",
			yaml: "docpager:\n  secret: s3cr3t\n  max_limit: 50\n",
			key:  "docpager",
			want: Config{Secret: "s3cr3t", MaxLimit: 50},
		},
		{
			name: "root",
			yaml: "secret: s3cr3t\n",
			want: Config{Secret: "s3cr3t"},
		},
		{
			name: "missing section",
			yaml: "other:\n  secret: nope\n",
			key:  "docpager",
			want: Config{},
		},
		{
			name:    "negative max_limit",
			yaml:    "docpager:\n  max_limit: -1\n",
			key:     "docpager",
			wantErr: true,
		},
		{
			name:    "malformed max_limit",
			yaml:    "docpager:\n  max_limit: lots\n",
			key:     "docpager",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.SetConfigType("yaml")
			require.NoError(t, v.ReadConfig(strings.NewReader(tt.yaml)))

			cfg, err := LoadConfig(v, tt.key)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}

	cfg, err := LoadConfig(nil, "docpager")
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func Test_WithConfig(t *testing.T) {
	s, err := NewSession[map[string]any](Request{Paging: Paging{Limit: 500}}, WithConfig(Config{Secret: "s3cr3t", MaxLimit: 50}))
	require.NoError(t, err)

	assert.Equal(t, 50, s.Limit())
	assert.True(t, s.codec.Signed())

	s, err = NewSession[map[string]any](Request{Paging: Paging{Limit: 500}}, WithConfig(Config{}))
	require.NoError(t, err)

	assert.Equal(t, 500, s.Limit(), "zero max_limit passes the limit through")
	assert.False(t, s.codec.Signed())
}
