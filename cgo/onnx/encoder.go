//go:build onnx

package onnx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/weave-nn/weave/internal/core/ports/driven"
)

// Ensure Encoder implements the interface.
var _ driven.EmbeddingProvider = (*Encoder)(nil)

// DefaultDimensions matches all-MiniLM-L6-v2.
const DefaultDimensions = 384

// maxSequence is the BERT input window: tokens beyond it are truncated.
const maxSequence = 256

// Config holds configuration for the ONNX encoder.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string

	// TokenizerPath is the path to the tokenizer.json vocabulary.
	TokenizerPath string

	// LibraryPath overrides the ONNX Runtime shared library location.
	LibraryPath string

	// Dimensions is the embedding vector size (default 384).
	Dimensions int
}

// Encoder generates embeddings with a local ONNX model. Output is
// mean-pooled over attended tokens and deliberately not normalised;
// similarity scoring downstream handles magnitude.
type Encoder struct {
	mu         sync.Mutex
	session    *ort.DynamicAdvancedSession
	tokenizer  *wordPieceTokenizer
	modelPath  string
	dimensions int
}

var initOnce sync.Once

// New creates an ONNX encoder over a MiniLM-class sentence model.
func New(cfg Config) (*Encoder, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("onnx: model path is required")
	}
	if cfg.TokenizerPath == "" {
		cfg.TokenizerPath = filepath.Join(filepath.Dir(cfg.ModelPath), "tokenizer.json")
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	var initErr error
	initOnce.Do(func() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return nil, fmt.Errorf("onnx: initialising runtime: %w", initErr)
	}

	tokenizer, err := loadWordPieceTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: loading tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: creating session: %w", err)
	}

	return &Encoder{
		session:    session,
		tokenizer:  tokenizer,
		modelPath:  cfg.ModelPath,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (e *Encoder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.encode(text)
}

// EmbedBatch generates embeddings for multiple texts. A failing item
// fails the whole batch.
func (e *Encoder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.encode(text)
		if err != nil {
			return nil, fmt.Errorf("onnx: item %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// encode runs one forward pass and mean-pools the hidden states.
func (e *Encoder) encode(text string) ([]float32, error) {
	inputIDs, attentionMask := e.tokenizer.encode(text, maxSequence)
	seqLen := int64(len(inputIDs))
	tokenTypeIDs := make([]int64, seqLen)

	shape := ort.NewShape(1, seqLen)

	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("creating input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("creating attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	typeTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("creating token_type_ids tensor: %w", err)
	}
	defer typeTensor.Destroy()

	outputs := []ort.Value{nil}

	e.mu.Lock()
	err = e.session.Run([]ort.Value{idsTensor, maskTensor, typeTensor}, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("running inference: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}

	return e.meanPool(hidden, attentionMask)
}

// meanPool averages hidden states over attended positions. The result
// is not normalised.
func (e *Encoder) meanPool(hidden *ort.Tensor[float32], attentionMask []int64) ([]float32, error) {
	data := hidden.GetData()
	shape := hidden.GetShape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}

	seqLen := int(shape[1])
	hiddenSize := int(shape[2])
	if hiddenSize != e.dimensions {
		return nil, fmt.Errorf("hidden size %d does not match configured dimension %d", hiddenSize, e.dimensions)
	}

	vec := make([]float32, hiddenSize)
	var attended float32
	for i := 0; i < seqLen && i < len(attentionMask); i++ {
		if attentionMask[i] == 0 {
			continue
		}
		attended++
		offset := i * hiddenSize
		for j := 0; j < hiddenSize; j++ {
			vec[j] += data[offset+j]
		}
	}
	if attended == 0 {
		return vec, nil
	}
	for j := range vec {
		vec[j] /= attended
	}
	return vec, nil
}

// Dimensions returns the embedding vector size.
func (e *Encoder) Dimensions() int {
	return e.dimensions
}

// ModelVersion identifies the model and its dimension.
func (e *Encoder) ModelVersion() string {
	return fmt.Sprintf("onnx:%s@%d", filepath.Base(e.modelPath), e.dimensions)
}

// Ping runs one short inference to confirm the session works.
func (e *Encoder) Ping(ctx context.Context) error {
	_, err := e.Embed(ctx, "ping")
	return err
}

// Close releases the ONNX session.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		if err := e.session.Destroy(); err != nil {
			return err
		}
		e.session = nil
	}
	return nil
}

// BERT special token ids shared by MiniLM checkpoints.
const (
	clsTokenID = 101
	sepTokenID = 102
	unkTokenID = 100
)

// wordPieceTokenizer is a greedy longest-match WordPiece tokenizer
// over the vocabulary shipped in tokenizer.json.
type wordPieceTokenizer struct {
	vocab map[string]int64
}

func loadWordPieceTokenizer(path string) (*wordPieceTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Model struct {
			Vocab map[string]int64 `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Model.Vocab) == 0 {
		return nil, fmt.Errorf("empty vocabulary in %s", path)
	}

	return &wordPieceTokenizer{vocab: file.Model.Vocab}, nil
}

// encode produces [CLS] tokens... [SEP] ids with a matching attention
// mask, truncated to maxLen.
func (t *wordPieceTokenizer) encode(text string, maxLen int) ([]int64, []int64) {
	ids := []int64{clsTokenID}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		ids = append(ids, t.tokenizeWord(word)...)
		if len(ids) >= maxLen-1 {
			ids = ids[:maxLen-1]
			break
		}
	}
	ids = append(ids, sepTokenID)

	mask := make([]int64, len(ids))
	for i := range mask {
		mask[i] = 1
	}
	return ids, mask
}

// tokenizeWord splits one word into WordPiece ids by greedy longest
// match, falling back to [UNK] when no prefix is in the vocabulary.
func (t *wordPieceTokenizer) tokenizeWord(word string) []int64 {
	var ids []int64
	runes := []rune(word)
	start := 0
	for start < len(runes) {
		end := len(runes)
		var match int64 = -1
		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := t.vocab[piece]; ok {
				match = id
				break
			}
			end--
		}
		if match < 0 {
			return []int64{unkTokenID}
		}
		ids = append(ids, match)
		start = end
	}
	return ids
}
