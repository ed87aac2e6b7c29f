// Command health-check checks the health endpoint of bingo-srv and exits with a
// non-zero status unless it reports ok. Meant for container health checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/bloops-games/bingo/internal/logging"
	"github.com/bloops-games/bingo/internal/shutdown"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	URL      string        `envconfig:"BINGO_HEALTH_URL" default:"http://127.0.0.1:1234/health"`
	Username string        `envconfig:"BINGO_HEALTH_USERNAME"`
	Password string        `envconfig:"BINGO_HEALTH_PASSWORD"`
	Timeout  time.Duration `envconfig:"BINGO_HEALTH_TIMEOUT" default:"5s"`
}

type okResponse struct {
	Status string `json:"status"`
}

func main() {
	ctx, cancel := shutdown.New()
	defer cancel()
	logger := logging.FromContext(ctx)

	config := Config{}
	if err := envconfig.Process("", &config); err != nil {
		logger.Fatalf("processing the config: %v", err)
	}

	status, err := check(ctx, &http.Client{Timeout: config.Timeout}, &config)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stdout, err)
		os.Exit(1)
	}

	_, _ = fmt.Fprintln(os.Stdout, status)
}

func check(ctx context.Context, client *http.Client, config *Config) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.URL, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	if config.Username != "" {
		req.SetBasicAuth(config.Username, config.Password)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", config.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var ok okResponse
	if err := json.NewDecoder(resp.Body).Decode(&ok); err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}

	if ok.Status != "ok" {
		return "", fmt.Errorf("unhealthy: %q", ok.Status)
	}

	return ok.Status, nil
}
