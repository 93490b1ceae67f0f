package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/educhain/certchain/internal/config"
	"github.com/educhain/certchain/internal/util"
	"go.uber.org/zap"
)

var ErrCredentialsMissing = errors.New("pinata credentials not configured, set PINATA_JWT or PINATA_API_KEY and PINATA_SECRET_KEY")

// Pinner uploads a JSON document to a pinning service and returns its CID.
type Pinner interface {
	PinJSON(ctx context.Context, name string, doc any) (string, error)
}

type PinataClient struct {
	baseURL    string
	jwt        string
	apiKey     string
	secretKey  string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

func NewPinata(cfg config.PinataConfig, logger *zap.SugaredLogger) *PinataClient {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}

	return &PinataClient{
		baseURL:    cfg.BASE_URL,
		jwt:        cfg.JWT,
		apiKey:     cfg.API_KEY,
		secretKey:  cfg.SECRET_KEY,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (p *PinataClient) hasCredentials() bool {
	return p.jwt != "" || (p.apiKey != "" && p.secretKey != "")
}

type pinJSONRequest struct {
	PinataContent  any            `json:"pinataContent"`
	PinataMetadata pinataMetadata `json:"pinataMetadata"`
}

type pinataMetadata struct {
	Name string `json:"name,omitempty"`
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// Pinata returns either {"error": "text"} or {"error": {"reason": "...", "details": "..."}}.
type pinErrorResponse struct {
	Error json.RawMessage `json:"error"`
}

func (e pinErrorResponse) message() string {
	if len(e.Error) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(e.Error, &text); err == nil {
		return text
	}

	var detailed struct {
		Reason  string `json:"reason"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(e.Error, &detailed); err == nil {
		if detailed.Details != "" {
			return detailed.Details
		}
		return detailed.Reason
	}

	return string(e.Error)
}

func (p *PinataClient) PinJSON(ctx context.Context, name string, doc any) (string, error) {
	if !p.hasCredentials() {
		return "", ErrCredentialsMissing
	}

	body, err := json.Marshal(pinJSONRequest{
		PinataContent:  doc,
		PinataMetadata: pinataMetadata{Name: name},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/pinning/pinJSONToIPFS", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.jwt != "" {
		req.Header.Set("Authorization", "Bearer "+p.jwt)
	} else {
		req.Header.Set("pinata_api_key", p.apiKey)
		req.Header.Set("pinata_secret_api_key", p.secretKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Errorw("Error uploading to IPFS", "error", err)
		return "", fmt.Errorf("failed to upload to IPFS: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read pinata response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var perr pinErrorResponse
		_ = json.Unmarshal(raw, &perr)
		msg := perr.message()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		p.logger.Errorw("Error uploading to IPFS", "status", resp.StatusCode, "error", msg)
		return "", fmt.Errorf("failed to upload to IPFS: %s (status %d)", msg, resp.StatusCode)
	}

	var pinned pinResponse
	if err := json.Unmarshal(raw, &pinned); err != nil {
		return "", fmt.Errorf("invalid response from pinata: %w", err)
	}
	if pinned.IpfsHash == "" {
		return "", errors.New("invalid response from pinata: missing IpfsHash")
	}

	p.logger.Debugw("Pinned metadata", "name", name, "cid", pinned.IpfsHash, "size", pinned.PinSize)
	return pinned.IpfsHash, nil
}
