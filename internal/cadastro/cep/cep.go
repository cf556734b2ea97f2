// Package cep looks up Brazilian postal codes (CEP) using cep.la with
// ViaCEP as a fallback, caching successful lookups.
package cep

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	e "github.com/gartstein/cadastro/internal/cadastro/errors"
	"go.uber.org/zap"
)

const (
	DefaultCepLaURL  = "http://cep.la"
	DefaultViaCEPURL = "https://viacep.com.br"

	sourceCepLa  = "cep.la"
	sourceViaCEP = "viacep"

	maxBodyBytes = 1 << 16
)

// Address is the location a CEP resolves to.
type Address struct {
	CEP        string `json:"cep"`
	UF         string `json:"uf"`
	Localidade string `json:"localidade"`
	Bairro     string `json:"bairro,omitempty"`
	Logradouro string `json:"logradouro,omitempty"`
	Source     string `json:"fonte"`
}

// Cache stores resolved addresses keyed by normalized CEP.
type Cache interface {
	Get(ctx context.Context, cep string) (*Address, bool, error)
	Set(ctx context.Context, addr *Address) error
}

type Config struct {
	CepLaURL  string
	ViaCEPURL string
	Timeout   time.Duration
}

type Client struct {
	httpClient *http.Client
	cepLaURL   string
	viaCEPURL  string
	cache      Cache
	logger     *zap.Logger
}

// NewClient builds a lookup client. cache may be nil.
func NewClient(cfg Config, cache Cache, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	cepLa := cfg.CepLaURL
	if cepLa == "" {
		cepLa = DefaultCepLaURL
	}
	viaCEP := cfg.ViaCEPURL
	if viaCEP == "" {
		viaCEP = DefaultViaCEPURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cepLaURL:   strings.TrimRight(cepLa, "/"),
		viaCEPURL:  strings.TrimRight(viaCEP, "/"),
		cache:      cache,
		logger:     logger.Named("cep_client"),
	}
}

// Normalize strips dots, dashes and spaces and requires exactly 8 digits.
func Normalize(raw string) (string, error) {
	cep := strings.NewReplacer(".", "", "-", "", " ", "").Replace(strings.TrimSpace(raw))
	if len(cep) != 8 {
		return "", fmt.Errorf("%w: cep must have exactly 8 digits", e.ErrInvalidInput)
	}
	for _, r := range cep {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: cep must have exactly 8 digits", e.ErrInvalidInput)
		}
	}
	return cep, nil
}

// Lookup resolves a CEP. An unknown CEP yields ErrNotFound and ErrUnavailable
// is returned when no provider could answer.
func (c *Client) Lookup(ctx context.Context, raw string) (*Address, error) {
	cep, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		addr, ok, err := c.cache.Get(ctx, cep)
		if err != nil {
			c.logger.Warn("cep cache read failed", zap.String("cep", cep), zap.Error(err))
		} else if ok {
			return addr, nil
		}
	}

	addr, err := c.fromCepLa(ctx, cep)
	if err != nil {
		c.logger.Debug("cep.la lookup failed, trying viacep", zap.String("cep", cep), zap.Error(err))
		if addr, err = c.fromViaCEP(ctx, cep); err != nil {
			return nil, err
		}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, addr); err != nil {
			c.logger.Warn("cep cache write failed", zap.String("cep", cep), zap.Error(err))
		}
	}
	return addr, nil
}

type cepLaResponse struct {
	CEP        string `json:"cep"`
	UF         string `json:"uf"`
	Cidade     string `json:"cidade"`
	Bairro     string `json:"bairro"`
	Logradouro string `json:"logradouro"`
}

func (c *Client) fromCepLa(ctx context.Context, cep string) (*Address, error) {
	body, status, err := c.get(ctx, c.cepLaURL+"/"+cep)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("cep.la returned status %d", status)
	}
	var resp cepLaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("cep.la returned an unexpected body: %w", err)
	}
	if resp.UF == "" {
		return nil, fmt.Errorf("cep.la has no data for %s", cep)
	}
	return &Address{
		CEP:        cep,
		UF:         resp.UF,
		Localidade: resp.Cidade,
		Bairro:     resp.Bairro,
		Logradouro: resp.Logradouro,
		Source:     sourceCepLa,
	}, nil
}

type viaCEPResponse struct {
	CEP        string      `json:"cep"`
	UF         string      `json:"uf"`
	Localidade string      `json:"localidade"`
	Bairro     string      `json:"bairro"`
	Logradouro string      `json:"logradouro"`
	Erro       interface{} `json:"erro"`
}

// notFound reports ViaCEP's error flag, sent either as a boolean or a string.
func (r *viaCEPResponse) notFound() bool {
	switch v := r.Erro.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

func (c *Client) fromViaCEP(ctx context.Context, cep string) (*Address, error) {
	body, status, err := c.get(ctx, c.viaCEPURL+"/ws/"+cep+"/json/")
	if err != nil {
		return nil, fmt.Errorf("%w: cep lookup failed: %v", e.ErrUnavailable, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: viacep returned status %d", e.ErrUnavailable, status)
	}
	var resp viaCEPResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: viacep returned an unexpected body", e.ErrUnavailable)
	}
	if resp.notFound() {
		return nil, fmt.Errorf("%w: cep %s", e.ErrNotFound, cep)
	}
	return &Address{
		CEP:        cep,
		UF:         resp.UF,
		Localidade: resp.Localidade,
		Bairro:     resp.Bairro,
		Logradouro: resp.Logradouro,
		Source:     sourceViaCEP,
	}, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
