// Package llm simulates an expensive language-model backend that the cache
// sits in front of.
package llm

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/krisalay/expiring-cache/types"
)

// ErrGenerationFailed is returned when the backend fails to answer a prompt.
var ErrGenerationFailed = errors.New("llm: generation failed")

// Prompt is the text a user sends. It is also the cache key.
type Prompt string

// Response is one generated answer.
type Response struct {
	ID        string    `json:"id"`
	Prompt    Prompt    `json:"prompt"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}

// String renders the response the way the data endpoint and the removal log show it.
func (r Response) String() string {
	return "LLMResponse(answer=\"" + r.Answer + "\", createdAt=" + strconv.FormatInt(r.CreatedAt.UnixMilli(), 10) + ")"
}

// Generator produces a response for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (Response, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt Prompt) (Response, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt Prompt) (Response, error) {
	return f(ctx, prompt)
}

// NewLoader lets the cache call a Generator on a miss.
func NewLoader(gen Generator) types.Loader[Prompt, Response] {
	return types.LoaderFunc[Prompt, Response](func(ctx context.Context, prompt Prompt) (Response, error) {
		return gen.Generate(ctx, prompt)
	})
}
