package openai

import (
	"context"
	"errors"
	"sync"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/specwright/ConstructQA/internal/config"
	"github.com/specwright/ConstructQA/internal/rag/llm"
	"github.com/specwright/ConstructQA/pkg/logger_i"
)

// Low temperature keeps extraction output close to deterministic.
const completionTemperature = 0.1

type llmClient struct {
	client    oa.Client
	modelName string
}

var logger *logger_i.Logger
var openaiClient *llmClient
var once sync.Once

func GetOpenAIClient(modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		if apikey == "" {
			logger.Error("OpenAI API key missing")
			return
		}
		openaiClient = &llmClient{
			client:    oa.NewClient(option.WithAPIKey(apikey)),
			modelName: modelName,
		}
		logger.Info("OpenAI client created", "model", modelName)
	})

	if openaiClient == nil {
		return nil
	}
	return openaiClient
}

func (c *llmClient) Complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.ModelCallTimeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(callCtx, oa.ChatCompletionNewParams{
		Model:       oa.ChatModel(c.modelName),
		Temperature: oa.Float(completionTemperature),
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
