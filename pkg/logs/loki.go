package logs

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/udelar-dtx/dtx_backend/config"
)

const lokiPushPath = "/loki/api/v1/push"

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

// lokiWriter is an io.Writer that pushes each JSON log line to Loki.
type lokiWriter struct {
	client *resty.Client
	labels map[string]string
	now    func() time.Time
}

func newLokiWriter(endpoint, username, password string, labels map[string]string) *lokiWriter {
	c := resty.New().
		SetBaseURL(strings.TrimRight(endpoint, "/")).
		SetTimeout(3*time.Second).
		SetHeader("Content-Type", "application/json")
	if username != "" {
		c.SetBasicAuth(username, password)
	}
	return &lokiWriter{client: c, labels: labels, now: time.Now}
}

func newLokiHandler(cfg *config.Config, level slog.Level) slog.Handler {
	lw := newLokiWriter(
		cfg.Logging.Output.Loki.Endpoint,
		cfg.Logging.Output.Loki.Username,
		cfg.Logging.Output.Loki.Password,
		map[string]string{
			"service": cfg.Observability.ServiceName,
			"env":     cfg.Server.Environment,
		},
	)
	return slog.NewJSONHandler(lw, &slog.HandlerOptions{Level: level})
}

func (lw *lokiWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	body := lokiPush{Streams: []lokiStream{{
		Stream: lw.labels,
		Values: [][2]string{{strconv.FormatInt(lw.now().UnixNano(), 10), line}},
	}}}

	resp, err := lw.client.R().SetBody(body).Post(lokiPushPath)
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("loki push: %s", resp.Status())
	}
	return len(p), nil
}
