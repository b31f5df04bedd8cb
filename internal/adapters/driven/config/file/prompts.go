package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves chat prompt templates from <dir>/<name>.txt.
// Missing or unreadable files fall back to the built-in defaults.
//
// Nothing touches the disk until the first Load, which creates the
// directory and seeds any default file that does not exist yet.
type PromptStore struct {
	mu       sync.RWMutex
	dir      string
	cache    map[string]string
	initOnce sync.Once
	initErr  error
}

//nolint:lll // prompt text is kept on one line per paragraph
var defaultPrompts = map[string]string{
	driven.PromptChatSystem: `You are a helpful AI assistant that answers questions based on the provided document context.

%s

Guidelines:
- Be accurate and cite the source documents when possible
- If you're unsure or the context doesn't contain the answer, say so
- Provide comprehensive answers when the context supports it
- Be conversational and helpful`,

	driven.PromptChatContext: `Use the following context to answer the user's question. If the context doesn't contain relevant information, let the user know that you don't have enough information in the provided documents to answer their question.

CONTEXT:
%s`,

	driven.PromptChatNoContext: `You don't have access to any specific document context for this question. Provide a helpful general response.`,
}

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// NewPromptStore returns a store rooted at dir, or ~/.docrag/prompts when dir is empty.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "prompts")
	}

	return &PromptStore{
		dir:   dir,
		cache: make(map[string]string),
	}, nil
}

// Load returns the template for name, reading it from disk on first use.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if p, ok := defaultPrompts[name]; ok {
			return p, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	p, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := s.readFile(name)
	if err != nil || p == "" {
		if def, ok := defaultPrompts[name]; ok {
			return def, nil
		}
		if err == nil {
			err = fmt.Errorf("empty file")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		p = cached
	} else {
		s.cache[name] = p
	}
	s.mu.Unlock()

	return p, nil
}

// Reload drops cached templates so the next Load reads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		if err := writeIfMissing(filepath.Join(s.dir, name+".txt"), content); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}

	if err := writeIfMissing(filepath.Join(s.dir, "README.md"), promptReadme); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) readFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0600)
}

const promptReadme = "# docrag prompts\n\n" +
	"These files shape the system prompt sent to the chat model.\n\n" +
	"- `chat_system.txt` wraps every turn. Its `%s` receives either the context or no-context text.\n" +
	"- `chat_context.txt` introduces retrieved passages. Its `%s` receives the numbered context block.\n" +
	"- `chat_no_context.txt` is used when retrieval found nothing. It takes no placeholders.\n\n" +
	"Edits apply to the next chat turn after a reload or restart.\n" +
	"Keep each `%s` in place, and write a literal percent sign as `%%`.\n"
