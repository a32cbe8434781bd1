package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvPipelineBatchConcurrency = "CHRONICLE_PIPELINE_BATCH_CONCURRENCY"
	EnvPipelineRetrievalLimit   = "CHRONICLE_PIPELINE_RETRIEVAL_LIMIT"
	EnvPipelineChunkSize        = "CHRONICLE_PIPELINE_CHUNK_SIZE"
	EnvPipelineMemoryCap        = "CHRONICLE_PIPELINE_MEMORY_CAP"
)

// PipelineConfig holds processing parameters for pipeline runs.
type PipelineConfig struct {
	// BatchConcurrency bounds parallel documents in a batch run.
	BatchConcurrency int `toml:"batch_concurrency"`
	// RetrievalLimit bounds chunks returned per question-answering search.
	RetrievalLimit int `toml:"retrieval_limit"`
	// ChunkSize bounds the length of a searchable chunk.
	ChunkSize int `toml:"chunk_size"`
	// MemoryCap bounds retained turns per conversation.
	MemoryCap int `toml:"memory_cap"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.BatchConcurrency != 0 {
		c.BatchConcurrency = overlay.BatchConcurrency
	}
	if overlay.RetrievalLimit != 0 {
		c.RetrievalLimit = overlay.RetrievalLimit
	}
	if overlay.ChunkSize != 0 {
		c.ChunkSize = overlay.ChunkSize
	}
	if overlay.MemoryCap != 0 {
		c.MemoryCap = overlay.MemoryCap
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.BatchConcurrency == 0 {
		c.BatchConcurrency = 3
	}
	if c.RetrievalLimit == 0 {
		c.RetrievalLimit = 5
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 1200
	}
	if c.MemoryCap == 0 {
		c.MemoryCap = 20
	}
}

func (c *PipelineConfig) loadEnv() {
	setInt := func(envVar string, target *int) {
		if v := os.Getenv(envVar); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*target = n
			}
		}
	}

	setInt(EnvPipelineBatchConcurrency, &c.BatchConcurrency)
	setInt(EnvPipelineRetrievalLimit, &c.RetrievalLimit)
	setInt(EnvPipelineChunkSize, &c.ChunkSize)
	setInt(EnvPipelineMemoryCap, &c.MemoryCap)
}

func (c *PipelineConfig) validate() error {
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("batch_concurrency must be positive")
	}
	if c.RetrievalLimit < 1 {
		return fmt.Errorf("retrieval_limit must be positive")
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.MemoryCap < 2 {
		return fmt.Errorf("memory_cap must allow at least two turns")
	}
	return nil
}
