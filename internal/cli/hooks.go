package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockfit/pkg/observability"
)

// logHooks forwards library events to the CLI logger at debug level.
type logHooks struct {
	logger *log.Logger
}

func installHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetEditorHooks(h)
	observability.SetRenderHooks(h)
	observability.SetScriptHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnGestureEnd(kind string, index int, accepted bool) {
	h.logger.Debug("gesture end", "kind", kind, "block", index, "accepted", accepted)
}

func (h logHooks) OnBlockAdded(index int, nudged bool) {
	h.logger.Debug("block added", "block", index, "nudged", nudged)
}

func (h logHooks) OnCalibrated(pxPerMeter float64, ok bool) {
	if !ok {
		h.logger.Debug("calibration cancelled")
		return
	}
	h.logger.Debug("calibrated", "px_per_meter", pxPerMeter)
}

func (h logHooks) OnHistory(action string, cursor, length int) {
	h.logger.Debug("history", "action", action, "cursor", cursor, "len", length)
}

func (h logHooks) OnRenderComplete(format string, blocks, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("rendered", "format", format, "blocks", blocks, "bytes", size, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnStep(_ context.Context, index int, kind string, err error) {
	if err != nil {
		h.logger.Warn("step refused", "step", index+1, "kind", kind, "err", err)
		return
	}
	h.logger.Debug("step", "step", index+1, "kind", kind)
}

func (h logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "path", path, "status", status, "took", d.Round(time.Microsecond))
}
