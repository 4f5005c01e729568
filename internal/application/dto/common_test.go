package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_DefaultPage(t *testing.T) {
	p := PageRequest{Offset: -3}
	p.DefaultPage()
	assert.Equal(t, DefaultPageLimit, p.Limit)
	assert.Zero(t, p.Offset)
}

func TestPageRequest_Response(t *testing.T) {
	tests := []struct {
		name     string
		page     PageRequest
		returned int
		want     PageResponse
	}{
		{"página incompleta", PageRequest{Limit: 20, Offset: 40}, 7, PageResponse{Limit: 20, Offset: 40}},
		{"página vacía", PageRequest{Limit: 20}, 0, PageResponse{Limit: 20}},
		{"página llena", PageRequest{Limit: 20, Offset: 40}, 20, PageResponse{Limit: 20, Offset: 40, HasMore: true, NextOffset: 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.page.Response(tt.returned))
		})
	}
}
