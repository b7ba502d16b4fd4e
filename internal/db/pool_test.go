package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDBPoolParams_ConnString(t *testing.T) {
	tests := []struct {
		name   string
		params NewDBPoolParams
		want   string
	}{
		{
			name: "default user, no password",
			params: NewDBPoolParams{
				DBHost: "localhost",
				DBPort: "5432",
				DBName: "workoutlog",
			},
			want: "postgres://postgres@localhost:5432/workoutlog",
		},
		{
			name: "user and password",
			params: NewDBPoolParams{
				DBHost:     "db",
				DBPort:     "5433",
				DBName:     "wl",
				DBUser:     "serj",
				DBPassword: "s3cr3t",
			},
			want: "postgres://serj:s3cr3t@db:5433/wl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.ConnString())
		})
	}
}
