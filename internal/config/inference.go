package config

import (
	"os"
	"strconv"

	"github.com/kbristol/sift/internal/inference"
)

const (
	EnvInferenceBaseURL        = "SIFT_INFERENCE_BASE_URL"
	EnvInferenceAPIKey         = "SIFT_INFERENCE_API_KEY"
	EnvInferenceModel          = "SIFT_INFERENCE_MODEL"
	EnvInferenceEmbeddingModel = "SIFT_INFERENCE_EMBEDDING_MODEL"
	EnvInferenceEmbeddingDims  = "SIFT_INFERENCE_EMBEDDING_DIMENSIONS"
	EnvInferenceTimeout        = "SIFT_INFERENCE_TIMEOUT"
)

// FinalizeInference applies the three-phase finalize pattern to the inference
// config: defaults, environment variable overrides, and validation.
func FinalizeInference(c *inference.Config) error {
	c.LoadDefaults()
	loadInferenceEnv(c)
	return c.Validate()
}

func loadInferenceEnv(c *inference.Config) {
	if v := os.Getenv(EnvInferenceBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvInferenceAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvInferenceModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvInferenceEmbeddingModel); v != "" {
		c.EmbeddingModel = v
	}
	if v := os.Getenv(EnvInferenceEmbeddingDims); v != "" {
		if dims, err := strconv.Atoi(v); err == nil {
			c.EmbeddingDimensions = dims
		}
	}
	if v := os.Getenv(EnvInferenceTimeout); v != "" {
		c.Timeout = v
	}
}
