package generate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRemote struct {
	code string
	err  error
	hits int
}

func (s *stubRemote) Generate(_ context.Context, _ string, _ []string) (string, error) {
	s.hits++
	return s.code, s.err
}

func TestCode_RemotePreferred(t *testing.T) {
	remote := &stubRemote{code: `result = df.head(3)`}
	c := NewCoordinator(remote, nil)

	code := c.Code(context.Background(), "show me some rows", []string{"date", "sales"})

	assert.Equal(t, `result = df.head(3)`, code)
	assert.Equal(t, 1, remote.hits)
}

func TestCode_RemoteFailureFallsBack(t *testing.T) {
	remote := &stubRemote{err: errors.New("api unreachable")}
	c := NewCoordinator(remote, nil)

	code := c.Code(context.Background(), "total sales by region", nil)

	assert.Equal(t, `result = df.groupby("region").sum("sales")`, code)
	assert.Equal(t, 1, remote.hits)
}

func TestCode_NoRemoteUsesTranslator(t *testing.T) {
	c := NewCoordinator(nil, nil)

	code := c.Code(context.Background(), "something nobody asked before", nil)

	assert.Equal(t, `result = df.head(10)`, code)
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"bare json", `{"code": "result = df.count()"}`, `result = df.count()`},
		{"fenced", "```json\n{\"code\": \"result = df.count()\"}\n```", `result = df.count()`},
		{"fenced no language", "```\n{\"code\": \"result = df.count()\"}\n```", `result = df.count()`},
		{"surrounding whitespace", "  {\"code\": \"result = df.count()\"}\n", `result = df.count()`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractCode(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractCode_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "result = df.head(10)"},
		{"empty code", `{"code": "  "}`},
		{"missing code field", `{"expression": "result = 1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractCode(tt.text)
			assert.Error(t, err)
		})
	}
}
