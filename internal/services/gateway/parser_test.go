package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/models"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		want        models.Command
		wantErr     bool
		wantUnknown bool
	}{
		{
			name: "renew with amount",
			text: "renew 42 30 20",
			want: models.RenewCommand{TelegramID: 42, Days: 30, Amount: 20},
		},
		{
			name: "renew without amount",
			text: "renew 42 30",
			want: models.RenewCommand{TelegramID: 42, Days: 30, Amount: 0},
		},
		{
			name: "renew uppercase and extra spaces",
			text: "  RENEW   42  30 ",
			want: models.RenewCommand{TelegramID: 42, Days: 30},
		},
		{
			name: "stats",
			text: "stats",
			want: models.StatsCommand{},
		},
		{
			name:        "empty text ignored",
			text:        "   ",
			wantUnknown: true,
		},
		{
			name:        "unknown command ignored",
			text:        "hello there",
			wantUnknown: true,
		},
		{
			name:    "non-numeric days rejected, not coerced",
			text:    "renew 42 abc",
			wantErr: true,
		},
		{
			name:    "non-numeric amount rejected",
			text:    "renew 42 30 twenty",
			wantErr: true,
		},
		{
			name:    "non-numeric id rejected",
			text:    "renew alice 30",
			wantErr: true,
		},
		{
			name:    "missing arguments rejected",
			text:    "renew 42",
			wantErr: true,
		},
		{
			name:    "too many arguments rejected",
			text:    "renew 42 30 20 extra",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.text)

			switch {
			case tt.wantUnknown:
				assert.ErrorIs(t, err, ErrUnknownCommand)
			case tt.wantErr:
				require.Error(t, err)
				assert.NotErrorIs(t, err, ErrUnknownCommand)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
