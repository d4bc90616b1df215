package mainconfig

import (
	"context"
	"testing"

	appconfig "github.com/wolfman30/clinic-chat-assistant/internal/config"
)

func TestUsesBedrock(t *testing.T) {
	cases := []struct {
		primary, fallback string
		want              bool
	}{
		{"groq", "", false},
		{"bedrock", "", true},
		{"groq", "bedrock", true},
	}
	for _, tc := range cases {
		cfg := &appconfig.Config{LLMProvider: tc.primary, LLMFallbackProvider: tc.fallback}
		if got := UsesBedrock(cfg); got != tc.want {
			t.Fatalf("UsesBedrock(%q, %q) = %v, want %v", tc.primary, tc.fallback, got, tc.want)
		}
	}
}

func TestLoadAWSConfigUsesStaticCredentials(t *testing.T) {
	cfg := &appconfig.Config{
		AWSRegion:           "us-east-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "secret",
		AWSEndpointOverride: "http://localhost:4566",
	}
	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if awsCfg.Region != "us-east-1" {
		t.Fatalf("expected region us-east-1, got %q", awsCfg.Region)
	}
	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("retrieve credentials: %v", err)
	}
	if creds.AccessKeyID != "test" {
		t.Fatalf("expected static access key, got %q", creds.AccessKeyID)
	}

	client, err := NewBedrockRuntime(context.Background(), cfg)
	if err != nil || client == nil {
		t.Fatalf("expected bedrock client, got %v", err)
	}
}
