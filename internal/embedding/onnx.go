package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var errModelNotLoaded = errors.New("model not loaded")

type ONNXConfig struct {
	ModelName     string
	ModelPath     string
	VocabPath     string
	SharedLibPath string
	Dimension     int
	MaxTokens     int
}

// ONNXEmbedder runs a sentence-transformer exported to ONNX (inputs
// input_ids, attention_mask, token_type_ids; output last_hidden_state) and
// mean-pools the token states into one normalised vector per text.
type ONNXEmbedder struct {
	mu  sync.Mutex
	cfg ONNXConfig

	tokenizer *WordPiece
	session   *ort.DynamicAdvancedSession
	inited    bool
	initErr   error
}

// NewONNXEmbedder returns an embedder that loads the runtime, vocabulary and
// model on first use.
func NewONNXEmbedder(cfg ONNXConfig) *ONNXEmbedder {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 256
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 384
	}
	return &ONNXEmbedder{cfg: cfg}
}

// initOnce loads everything under e.mu; a failed load is remembered so every
// later call reports the same ModelError.
func (e *ONNXEmbedder) initOnce() error {
	if e.inited {
		return nil
	}
	if e.initErr != nil {
		return e.initErr
	}

	if err := e.load(); err != nil {
		e.initErr = &ModelError{Model: e.cfg.ModelName, Err: fmt.Errorf("%w: %v", errModelNotLoaded, err)}
		return e.initErr
	}
	e.inited = true
	return nil
}

func (e *ONNXEmbedder) load() error {
	f, err := os.Open(e.cfg.VocabPath)
	if err != nil {
		return fmt.Errorf("open vocab: %w", err)
	}
	defer f.Close()
	tokenizer, err := LoadVocab(f)
	if err != nil {
		return err
	}

	if e.cfg.SharedLibPath != "" {
		ort.SetSharedLibraryPath(e.cfg.SharedLibPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("onnx init environment: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(e.cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"}, nil)
	if err != nil {
		return fmt.Errorf("onnx new session: %w", err)
	}

	e.tokenizer = tokenizer
	e.session = session
	return nil
}

func (e *ONNXEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.initOnce(); err != nil {
		return nil, err
	}

	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.embedOne(text)
		if err != nil {
			return nil, &ModelError{Model: e.cfg.ModelName, Err: err}
		}
		out = append(out, vec)
	}
	return out, nil
}

func (e *ONNXEmbedder) embedOne(text string) ([]float32, error) {
	ids := e.tokenizer.Encode(text, e.cfg.MaxTokens)
	n := int64(len(ids))
	mask := make([]int64, n)
	types := make([]int64, n)
	for i := range mask {
		mask[i] = 1
	}

	shape := ort.NewShape(1, n)
	idsTensor, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("onnx input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("onnx attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()
	typesTensor, err := ort.NewTensor(shape, types)
	if err != nil {
		return nil, fmt.Errorf("onnx token_type_ids tensor: %w", err)
	}
	defer typesTensor.Destroy()

	hidden, err := ort.NewEmptyTensor[float32](ort.NewShape(1, n, int64(e.cfg.Dimension)))
	if err != nil {
		return nil, fmt.Errorf("onnx output tensor: %w", err)
	}
	defer hidden.Destroy()

	if err := e.session.Run(
		[]ort.Value{idsTensor, maskTensor, typesTensor},
		[]ort.Value{hidden},
	); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	return meanPool(hidden.GetData(), mask, e.cfg.Dimension), nil
}

// meanPool averages the hidden states of unmasked tokens and L2-normalises.
func meanPool(hidden []float32, mask []int64, dim int) []float32 {
	vec := make([]float32, dim)
	var count float32
	for tok, m := range mask {
		if m == 0 {
			continue
		}
		row := hidden[tok*dim : (tok+1)*dim]
		for i, x := range row {
			vec[i] += x
		}
		count++
	}
	if count > 0 {
		for i := range vec {
			vec[i] /= count
		}
	}
	normalize(vec)
	return vec
}

func (e *ONNXEmbedder) Dimension() int {
	return e.cfg.Dimension
}

func (e *ONNXEmbedder) ModelName() string {
	return e.cfg.ModelName
}

// Close releases the ONNX session. The shared runtime environment stays up.
func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	e.inited = false
	return err
}
