package server

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// PromptLog appends submitted prompts to a plain text file. Write failures
// are logged and swallowed so logging never blocks an analysis.
type PromptLog struct {
	mu   sync.Mutex
	path string
	log  *zap.Logger
}

func NewPromptLog(path string, log *zap.Logger) *PromptLog {
	if log == nil {
		log = zap.NewNop()
	}
	return &PromptLog{path: path, log: log}
}

// Record appends one prompt entry, creating the log directory on first use.
func (p *PromptLog) Record(prompt, model string) {
	if p.path == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			p.log.Warn("failed to create prompt log directory", zap.Error(err))
			return
		}
	}

	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		p.log.Warn("failed to open prompt log", zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "--- User Prompt (Model: %s) ---\n%s\n\n", model, prompt); err != nil {
		p.log.Warn("failed to write prompt log entry", zap.Error(err))
	}
}
