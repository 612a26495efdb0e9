package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/pulseboard/social-listener/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	gen, err := New(context.Background(), &config.Config{
		LLMProvider:     "anthropic",
		AnthropicAPIKey: "test-key",
		AnthropicModel:  "claude-sonnet-4-20250514",
	})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-sonnet-4-20250514", gen.Name())

	_, err = New(context.Background(), &config.Config{LLMProvider: "anthropic"})
	assert.Error(t, err)

	_, err = New(context.Background(), &config.Config{LLMProvider: "llama"})
	assert.Error(t, err)
}

func TestStub(t *testing.T) {
	stub := NewStub("first", "second")

	out, err := stub.Generate(context.Background(), "sys", "one")
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	out, _ = stub.Generate(context.Background(), "sys", "two")
	assert.Equal(t, "second", out)

	out, _ = stub.Generate(context.Background(), "sys", "three")
	assert.Equal(t, "second", out)

	calls := stub.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "two", calls[1].User)
}

func TestStub_Failures(t *testing.T) {
	boom := errors.New("rate limited")
	_, err := NewFailingStub(boom).Generate(context.Background(), "", "x")
	assert.ErrorIs(t, err, boom)

	_, err = NewStub().Generate(context.Background(), "", "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewStub("ok").Generate(ctx, "", "x")
	assert.ErrorIs(t, err, context.Canceled)
}
