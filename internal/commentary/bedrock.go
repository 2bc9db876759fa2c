package commentary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockAdvisor implements Advisor with the Bedrock Converse API.
type BedrockAdvisor struct {
	api     bedrockConverseAPI
	modelID string
}

// NewBedrockAdvisor wraps api. modelID is required.
func NewBedrockAdvisor(api bedrockConverseAPI, modelID string) (*BedrockAdvisor, error) {
	if api == nil {
		return nil, errors.New("commentary: bedrock converse client is required")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("commentary: bedrock model id is required")
	}
	return &BedrockAdvisor{api: api, modelID: modelID}, nil
}

// Comment asks the configured Bedrock model for a note on in.
func (a *BedrockAdvisor) Comment(ctx context.Context, in Input) (string, error) {
	out, err := a.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(a.modelID),
		System: []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: systemPrompt},
		},
		Messages: []brtypes.Message{{
			Role: brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{
				&brtypes.ContentBlockMemberText{Value: buildPrompt(in)},
			},
		}},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(256),
			Temperature: aws.Float32(0.3),
		},
	})
	if err != nil {
		return "", fmt.Errorf("commentary: bedrock converse failed: %w", err)
	}
	text, err := bedrockOutputText(out)
	if err != nil {
		return "", err
	}
	return capOutput(text), nil
}

func bedrockOutputText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil {
		return "", errors.New("commentary: bedrock response is nil")
	}
	msgOut, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("commentary: bedrock response did not include a message output")
	}

	var builder strings.Builder
	for _, block := range msgOut.Value.Content {
		if textBlock, ok := block.(*brtypes.ContentBlockMemberText); ok {
			builder.WriteString(textBlock.Value)
		}
	}
	if strings.TrimSpace(builder.String()) == "" {
		return "", errors.New("commentary: bedrock response contained no text content blocks")
	}
	return builder.String(), nil
}

var _ Advisor = (*BedrockAdvisor)(nil)
