package eventbus

type Topic string

// UI to simulation.
const (
	TopicLeftIsland        Topic = "left-island"
	TopicChangeToMyIsland  Topic = "changeToMyIsland"
	TopicChangeToLoby      Topic = "changeToLoby"
	TopicMySpeechBubble    Topic = "mySpeechBubble"
	TopicOtherSpeechBubble Topic = "otherSpeechBubble"
)

// Simulation to UI.
const (
	TopicNewPlayer       Topic = "newPlayer"
	TopicPlayerLeftChat  Topic = "playerLeftChat"
	TopicActiveChatInput Topic = "activeChatInput"
	TopicBlurChatInput   Topic = "blurChatInput"
	TopicOpenLoginModal  Topic = "openLoginModal"
)

// Direction says which layer a topic is delivered to.
type Direction int

const (
	ToSimulation Direction = iota
	ToUI
)

func (d Direction) String() string {
	if d == ToUI {
		return "ui"
	}
	return "simulation"
}
