package eventbus

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestBus_DeliversInRegistrationOrder(t *testing.T) {
	b := New()

	var got []string
	b.OnUIEvent(TopicNewPlayer, func(any) { got = append(got, "a") })
	b.OnUIEvent(TopicNewPlayer, func(any) { got = append(got, "b") })
	b.OnUIEvent(TopicNewPlayer, func(any) { got = append(got, "c") })

	b.EmitToUI(TopicNewPlayer, nil)

	testutil.AssertEqual(t, "count", len(got), 3)
	testutil.AssertEqual(t, "order", got[0]+got[1]+got[2], "abc")
}

func TestBus_DirectionsAreSeparate(t *testing.T) {
	b := New()

	var sim, ui int
	b.OnSimulationEvent("shared", func(any) { sim++ })
	b.OnUIEvent("shared", func(any) { ui++ })

	b.EmitToSimulation("shared", nil)

	testutil.AssertEqual(t, "simulation", sim, 1)
	testutil.AssertEqual(t, "ui", ui, 0)
}

func TestBus_PayloadPassedThrough(t *testing.T) {
	b := New()

	type bubble struct{ Message string }
	var got bubble
	b.OnSimulationEvent(TopicMySpeechBubble, func(p any) { got = p.(bubble) })

	b.EmitToSimulation(TopicMySpeechBubble, bubble{Message: "hello"})

	testutil.AssertEqual(t, "message", got.Message, "hello")
}

func TestBus_NoReplay(t *testing.T) {
	b := New()

	b.EmitToUI(TopicOpenLoginModal, nil)

	calls := 0
	b.OnUIEvent(TopicOpenLoginModal, func(any) { calls++ })

	testutil.AssertEqual(t, "calls after late subscribe", calls, 0)

	b.EmitToUI(TopicOpenLoginModal, nil)
	testutil.AssertEqual(t, "calls after emit", calls, 1)
}

func TestBus_Unsubscribe(t *testing.T) {
	tests := map[string]struct {
		release func(b *Bus, s *Subscription)
	}{
		"release": {
			release: func(_ *Bus, s *Subscription) { s.Release() },
		},
		"off ui": {
			release: func(b *Bus, s *Subscription) { b.OffUIEvent(s) },
		},
		"released twice": {
			release: func(b *Bus, s *Subscription) {
				s.Release()
				b.OffUIEvent(s)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			b := New()

			calls := 0
			sub := b.OnUIEvent(TopicBlurChatInput, func(any) { calls++ })
			other := 0
			b.OnUIEvent(TopicBlurChatInput, func(any) { other++ })

			tt.release(b, sub)
			b.EmitToUI(TopicBlurChatInput, nil)

			testutil.AssertEqual(t, "released handler calls", calls, 0)
			testutil.AssertEqual(t, "other handler calls", other, 1)
			testutil.AssertEqual(t, "handler count", b.HandlerCount(ToUI, TopicBlurChatInput), 1)
		})
	}
}

func TestBus_UnsubscribeUnknownIsNoop(t *testing.T) {
	b := New()

	var nilSub *Subscription
	b.OffSimulationEvent(nilSub)
	b.OffUIEvent(&Subscription{})

	testutil.AssertEqual(t, "handler count", b.HandlerCount(ToUI, TopicNewPlayer), 0)
}

func TestBus_OffChecksDirection(t *testing.T) {
	b := New()
	other := New()

	calls := 0
	ui := b.OnUIEvent(TopicNewPlayer, func(any) { calls++ })
	sim := b.OnSimulationEvent(TopicLeftIsland, func(any) { calls++ })

	b.OffSimulationEvent(ui)
	b.OffUIEvent(sim)
	other.OffUIEvent(ui)
	testutil.AssertEqual(t, "ui kept", b.HandlerCount(ToUI, TopicNewPlayer), 1)
	testutil.AssertEqual(t, "sim kept", b.HandlerCount(ToSimulation, TopicLeftIsland), 1)

	b.OffUIEvent(ui)
	b.OffSimulationEvent(sim)
	b.EmitToUI(TopicNewPlayer, nil)
	b.EmitToSimulation(TopicLeftIsland, nil)
	testutil.AssertEqual(t, "calls", calls, 0)
}

func TestBus_ReleaseDuringEmit(t *testing.T) {
	b := New()

	var second *Subscription
	secondCalls := 0
	b.OnSimulationEvent(TopicLeftIsland, func(any) { second.Release() })
	second = b.OnSimulationEvent(TopicLeftIsland, func(any) { secondCalls++ })

	b.EmitToSimulation(TopicLeftIsland, nil)

	testutil.AssertEqual(t, "second calls", secondCalls, 0)
}

func TestBus_PanickingHandlerIsolated(t *testing.T) {
	b := New()

	calls := 0
	b.OnUIEvent(TopicActiveChatInput, func(any) { panic("bad handler") })
	b.OnUIEvent(TopicActiveChatInput, func(any) { calls++ })

	b.EmitToUI(TopicActiveChatInput, nil)

	testutil.AssertEqual(t, "calls", calls, 1)
}
