package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"id", "ID"},
		{"postId", "post ID"},
		{"commentId", "comment ID"},
		{"notificationId", "notification ID"},
		{"slug", "slug"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, humanizeParam(tt.in), tt.in)
	}
}

func TestSplitCamel(t *testing.T) {
	assert.Equal(t, []string{"daily", "Task"}, splitCamel("dailyTask"))
	assert.Equal(t, []string{"post"}, splitCamel("post"))
}
