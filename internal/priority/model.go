package priority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/breaker"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
)

const maxModelInput = 512

var ErrModelUnavailable = errors.New("priority model unavailable")

type ModelConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// ModelClassifier asks a zero-shot text classification endpoint to pick one
// of the priority labels. Any transport or decoding problem is an error; the
// engine falls back to keywords.
type ModelClassifier struct {
	cfg     ModelConfig
	labels  []models.Priority
	client  *http.Client
	breaker *breaker.Breaker
}

func NewModelClassifier(cfg ModelConfig, labels []models.Priority, log *logging.Logger) (*ModelClassifier, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: no endpoint configured", ErrModelUnavailable)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if len(labels) == 0 {
		labels = FourLevel.Labels()
	}

	return &ModelClassifier{
		cfg:     cfg,
		labels:  labels,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker.New(breaker.DefaultConfig("priority-model"), log),
	}, nil
}

type zeroShotRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters zeroShotParams `json:"parameters"`
}

type zeroShotParams struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type zeroShotResult struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (m *ModelClassifier) Classify(ctx context.Context, text string, _ *time.Time) (models.Priority, error) {
	var result models.Priority
	err := m.breaker.Execute(ctx, func(ctx context.Context) error {
		p, err := m.infer(ctx, truncateRunes(text, maxModelInput))
		result = p
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return result, nil
}

func (m *ModelClassifier) infer(ctx context.Context, text string) (models.Priority, error) {
	labels := make([]string, len(m.labels))
	for i, l := range m.labels {
		labels[i] = string(l)
	}

	body, err := json.Marshal(zeroShotRequest{Inputs: text, Parameters: zeroShotParams{CandidateLabels: labels}})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+m.cfg.Token)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model endpoint returned %d", resp.StatusCode)
	}

	top, err := topLabel(raw)
	if err != nil {
		return "", err
	}
	return models.ParsePriority(top)
}

// topLabel accepts both the {labels, scores} object and the list of
// {label, score} pairs that inference servers return.
func topLabel(raw []byte) (string, error) {
	var obj zeroShotResult
	if err := json.Unmarshal(raw, &obj); err == nil && len(obj.Labels) > 0 {
		best := 0
		for i := range obj.Scores {
			if i < len(obj.Labels) && obj.Scores[i] > obj.Scores[best] {
				best = i
			}
		}
		return obj.Labels[best], nil
	}

	var pairs []labelScore
	if err := json.Unmarshal(raw, &pairs); err == nil && len(pairs) > 0 {
		best := pairs[0]
		for _, p := range pairs[1:] {
			if p.Score > best.Score {
				best = p
			}
		}
		return best.Label, nil
	}

	return "", errors.New("unrecognised model response")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
