package core_test

import (
	"testing"

	"invoice-agent/internal/core"

	"github.com/stretchr/testify/assert"
)

func TestIsListQuery(t *testing.T) {
	for _, q := range []string{"", "  ", "all", "ALL", "list", "Show All"} {
		assert.True(t, core.IsListQuery(q), q)
	}
	for _, q := range []string{"acme", "all clients", "lists"} {
		assert.False(t, core.IsListQuery(q), q)
	}
}

func TestMatchesName(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"Acme Corp", "acme", true},
		{"Acme Corp", "ACME CORP", true},
		{"Hosting Server (Basic)", "Hosting", true},
		{"Hosting Server (Basic)", "servers", true},
		{"Hosting Server (Basic)", "basic hosting", true},
		{"Stark Industries", "industry", true},
		{"Annual Maintenance Contract", "maintenance contracts", true},
		{"Web Development Service", "services", true},
		{"Web Development Service", "web hosting", false},
		{"Wayne Enterprises", "stark", false},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, core.MatchesName(tt.name, tt.query))
		})
	}
}
