package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/perimeter/pkg/observability"
)

// logHooks reports observability events at debug level. Per-frame events
// are left out; at 30 fps they would drown everything else.
type logHooks struct {
	observability.NoopFrameHooks
	logger *log.Logger
}

func (c *CLI) installHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetFrameHooks(h)
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *logHooks) OnMeasure(sections, hinges int, d time.Duration) {
	h.logger.Debug("measure", "sections", sections, "hinges", hinges, "elapsed", d)
}

func (h *logHooks) OnSimulateStart(_ context.Context, sections, ticks int) {
	h.logger.Debug("simulate start", "sections", sections, "ticks", ticks)
}

func (h *logHooks) OnSimulateComplete(_ context.Context, ticks int, d time.Duration) {
	h.logger.Debug("simulate done", "ticks", ticks, "elapsed", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", formats, "elapsed", d, "err", err)
		return
	}
	h.logger.Debug("render done", "formats", formats, "elapsed", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(context.Context, string, string) {}

func (h *logHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("http", "method", method, "route", route, "status", status, "elapsed", d)
}
