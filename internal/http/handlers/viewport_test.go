package handlers

import (
	"testing"

	"github.com/hphuyvu-stack/inclusing/internal/domain"
	"github.com/hphuyvu-stack/inclusing/internal/realtime"
	"github.com/hphuyvu-stack/inclusing/internal/session"
)

func TestToViewportSkipsContentAndPanelEvents(t *testing.T) {
	for _, ev := range []realtime.SSEEvent{realtime.SSEEventContentChanged, realtime.SSEEventPanelToggled} {
		msg := realtime.SSEMessage{Event: ev, Data: domain.CourseContent{Reading: true}}
		if out, ok := toViewport(msg); ok {
			t.Fatalf("%s: got=%+v want skipped", ev, out)
		}
	}
}

func TestToViewportScroll(t *testing.T) {
	out, ok := toViewport(realtime.SSEMessage{
		Event: realtime.SSEEventScrollRequested,
		Data:  session.ScrollEvent{Top: 0, Behavior: "smooth"},
	})
	if !ok || out.Type != "scroll" || out.Top == nil || *out.Top != 0 || out.Behavior != "smooth" {
		t.Fatalf("scroll: got=%+v ok=%v", out, ok)
	}
}
