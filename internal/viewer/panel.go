package viewer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/floorview/internal/poi"
	"github.com/Faultbox/floorview/internal/ui/sheet"
)

// panelSwitchDuration is how long the panel shows its switching state when
// the selection moves to another area.
const panelSwitchDuration = 300 * time.Millisecond

// fallbackMessage is shown over placeholder metadata when the lookup failed.
const fallbackMessage = "Could not load area details. Showing defaults."

// Panel is the area info shown in the sheet.
type Panel struct {
	Visible   bool
	Loading   bool
	Switching bool
	AreaID    string
	Info      poi.POI
	Message   string
}

// Title returns the display name of the area.
func (p Panel) Title() string {
	if p.Info.Name != "" {
		return p.Info.Name
	}
	return p.AreaID
}

// Caption names what is on screen: the floor, then the area shown in the
// panel once its details have loaded.
func (v *Viewer) Caption() string {
	caption := v.floor.Name
	if caption == "" {
		caption = v.floor.ID
	}
	if v.panel.Visible && !v.panel.Loading {
		caption += " - " + v.panel.Title()
	}
	return caption
}

// resolution is the outcome of one metadata lookup.
type resolution struct {
	seq    uint64
	areaID string
	info   poi.POI
	err    error
}

// Panel returns the area info panel.
func (v *Viewer) Panel() Panel {
	return v.panel
}

// DismissMessage hides the error message and keeps the panel.
func (v *Viewer) DismissMessage() {
	v.panel.Message = ""
}

func (v *Viewer) showPanel(areaID, previous string) {
	wasVisible := v.panel.Visible
	v.panel = Panel{Visible: true, Loading: true, AreaID: areaID}

	if wasVisible && previous != "" && previous != areaID {
		v.panel.Switching = true
		v.panelSwitch.Cancel()
		v.panelSwitch = v.sched.After(panelSwitchDuration, func() {
			v.panel.Switching = false
		})
	}
	if v.sheet.State() == sheet.Closed {
		v.sheet.Open()
	}
}

func (v *Viewer) hidePanel() {
	v.panelSwitch.Cancel()
	v.panel = Panel{}
	v.sheet.Close()
}

// resolve starts an asynchronous lookup for areaID. Only the latest lookup
// is applied.
func (v *Viewer) resolve(areaID string) {
	v.cancelResolve()
	v.seq++
	seq := v.seq

	if v.resolver == nil {
		v.applyResolution(resolution{seq: seq, areaID: areaID, info: poi.Placeholder(areaID)})
		return
	}

	ctx := v.ctx
	var cancel context.CancelFunc
	if v.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	v.cancel = cancel

	go func() {
		info, err := v.resolver.Resolve(ctx, areaID)
		select {
		case v.results <- resolution{seq: seq, areaID: areaID, info: info, err: err}:
		case <-v.ctx.Done():
		}
	}()
}

func (v *Viewer) cancelResolve() {
	// Bumping seq marks any lookup in flight as stale.
	v.seq++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

func (v *Viewer) drainResults() {
	for {
		select {
		case r := <-v.results:
			v.applyResolution(r)
		default:
			return
		}
	}
}

func (v *Viewer) applyResolution(r resolution) {
	if r.seq != v.seq || r.areaID != v.selected {
		v.log.Debug("dropping stale area lookup", zap.String("area", r.areaID))
		return
	}
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}

	switch {
	case r.err == nil:
		v.panel.Loading = false
		v.panel.Info = r.info
	case errors.Is(r.err, poi.ErrNotFound):
		v.log.Info("no metadata for area", zap.String("area", r.areaID))
		v.hidePanel()
	default:
		v.log.Warn("area lookup failed", zap.String("area", r.areaID), zap.Error(r.err))
		v.panel.Loading = false
		v.panel.Info = poi.Placeholder(r.areaID)
		v.panel.Message = fallbackMessage
	}
}
