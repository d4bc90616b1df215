package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatAPI struct {
	resp    openai.ChatCompletionResponse
	err     error
	listErr error
	lastReq openai.ChatCompletionRequest
}

func (f *fakeChatAPI) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeChatAPI) ListModels(context.Context) (openai.ModelsList, error) {
	return openai.ModelsList{}, f.listErr
}

func chatResponse(text string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: " " + text + " "},
			FinishReason: openai.FinishReasonStop,
		}},
		Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

func TestOpenAIClientComplete(t *testing.T) {
	api := &fakeChatAPI{resp: chatResponse("Abrimos a las 8:00.")}
	c := newOpenAIClientWithAPI(api, "")

	resp, err := c.Complete(context.Background(), Request{
		System:      []string{"Eres la asistente virtual.", "  "},
		Messages:    []Message{{Role: RoleAssistant, Content: "Hola"}, {Role: "other", Content: "¿A qué hora abren?"}, {Role: RoleUser, Content: " "}},
		MaxTokens:   200,
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "Abrimos a las 8:00.", resp.Text)
	assert.Equal(t, "stop", resp.StopReason)
	assert.Equal(t, int32(15), resp.Usage.TotalTokens)

	req := api.lastReq
	assert.Equal(t, DefaultGroqModel, req.Model)
	assert.Equal(t, 200, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, req.Messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[2].Role)
}

func TestOpenAIClientNegativeTemperatureOmitted(t *testing.T) {
	api := &fakeChatAPI{resp: chatResponse("ok")}
	c := newOpenAIClientWithAPI(api, "llama-3.1-8b-instant")

	_, err := c.Complete(context.Background(), Request{Model: "gpt-4o-mini", Messages: []Message{{Role: RoleUser, Content: "hola"}}, Temperature: -1})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", api.lastReq.Model)
	assert.Zero(t, api.lastReq.Temperature)
}

func TestOpenAIClientErrors(t *testing.T) {
	c := newOpenAIClientWithAPI(&fakeChatAPI{err: errors.New("429")}, "")
	_, err := c.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hola"}}})
	assert.ErrorContains(t, err, "429")

	c = newOpenAIClientWithAPI(&fakeChatAPI{}, "")
	_, err = c.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hola"}}})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = NewOpenAIClient(" ", GroqBaseURL, "")
	assert.Error(t, err)
}

func TestOpenAIClientAvailable(t *testing.T) {
	assert.NoError(t, newOpenAIClientWithAPI(&fakeChatAPI{}, "").Available(context.Background()))
	err := newOpenAIClientWithAPI(&fakeChatAPI{listErr: errors.New("401")}, "").Available(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

type fakeConverse struct {
	out   *bedrockruntime.ConverseOutput
	err   error
	input *bedrockruntime.ConverseInput
}

func (f *fakeConverse) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = in
	return f.out, f.err
}

func converseText(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role:    brtypes.ConversationRoleAssistant,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: text}},
		}},
		StopReason: brtypes.StopReasonEndTurn,
		Usage:      &brtypes.TokenUsage{InputTokens: aws.Int32(7), OutputTokens: aws.Int32(3), TotalTokens: aws.Int32(10)},
	}
}

func TestBedrockClientComplete(t *testing.T) {
	api := &fakeConverse{out: converseText("Claro que sí.")}
	c, err := NewBedrockClient(api, "anthropic.claude-3-haiku")
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), Request{
		System:      []string{"persona"},
		Messages:    []Message{{Role: RoleSystem, Content: "extra"}, {Role: RoleUser, Content: "hola"}},
		MaxTokens:   100,
		Temperature: 0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "Claro que sí.", resp.Text)
	assert.Equal(t, int32(10), resp.Usage.TotalTokens)
	assert.Equal(t, "anthropic.claude-3-haiku", aws.ToString(api.input.ModelId))
	assert.Len(t, api.input.System, 2)
	require.Len(t, api.input.Messages, 1)
	assert.Equal(t, int32(100), aws.ToInt32(api.input.InferenceConfig.MaxTokens))
}

func TestBedrockClientRejectsBadInput(t *testing.T) {
	_, err := NewBedrockClient(nil, "model")
	assert.Error(t, err)

	c, err := NewBedrockClient(&fakeConverse{out: converseText("x")}, "")
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hola"}}})
	assert.ErrorContains(t, err, "model id")

	c, _ = NewBedrockClient(&fakeConverse{out: converseText("x")}, "model")
	_, err = c.Complete(context.Background(), Request{Messages: []Message{{Role: "tool", Content: "hola"}}})
	assert.ErrorContains(t, err, "unsupported role")

	c, _ = NewBedrockClient(&fakeConverse{out: converseText("   ")}, "model")
	_, err = c.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hola"}}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

type stubClient struct {
	text     string
	err      error
	probeErr error
	calls    int
	lastReq  Request
}

func (s *stubClient) Complete(_ context.Context, req Request) (Response, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return Response{}, s.err
	}
	return Response{Text: s.text}, nil
}

func (s *stubClient) Available(context.Context) error { return s.probeErr }

type plainClient struct{}

func (plainClient) Complete(context.Context, Request) (Response, error) { return Response{}, nil }

func TestFallbackClientRetriesOnce(t *testing.T) {
	primary := &stubClient{err: errors.New("primary down")}
	fallback := &stubClient{text: "respuesta"}
	c := NewFallbackClient(primary, fallback, nil)

	resp, err := c.Complete(context.Background(), Request{Model: "llama", Messages: []Message{{Role: RoleUser, Content: "hola"}}})
	require.NoError(t, err)
	assert.Equal(t, "respuesta", resp.Text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
	assert.Empty(t, fallback.lastReq.Model)
}

func TestFallbackClientSkipsFallbackWhenContextDone(t *testing.T) {
	primary := &stubClient{err: context.DeadlineExceeded}
	fallback := &stubClient{text: "tarde"}
	c := NewFallbackClient(primary, fallback, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Complete(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, fallback.calls)
}

func TestFallbackClientAvailable(t *testing.T) {
	down := &stubClient{probeErr: ErrUnavailable}
	up := &stubClient{}
	assert.NoError(t, NewFallbackClient(down, up, nil).Available(context.Background()))
	assert.ErrorIs(t, NewFallbackClient(down, nil, nil).Available(context.Background()), ErrUnavailable)
	assert.NoError(t, NewFallbackClient(down, plainClient{}, nil).Available(context.Background()))
}

func TestProbe(t *testing.T) {
	assert.ErrorIs(t, Probe(context.Background(), nil), ErrUnavailable)
	assert.NoError(t, Probe(context.Background(), plainClient{}))
	assert.ErrorIs(t, Probe(context.Background(), &stubClient{probeErr: ErrUnavailable}), ErrUnavailable)
}

func TestGenerate(t *testing.T) {
	c := &stubClient{text: "  Hola, ¿en qué le ayudo?  "}
	text, err := Generate(context.Background(), c, "hola", "persona", 200, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "Hola, ¿en qué le ayudo?", text)
	assert.Equal(t, []string{"persona"}, c.lastReq.System)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "hola"}}, c.lastReq.Messages)

	_, err = Generate(context.Background(), &stubClient{text: " "}, "hola", "", 200, 0.7)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = Generate(context.Background(), nil, "hola", "", 200, 0.7)
	assert.ErrorIs(t, err, ErrUnavailable)
}
