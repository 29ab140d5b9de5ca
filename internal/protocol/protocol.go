// Package protocol lists the namespaces, event names and payload shapes
// exchanged with the island server.
package protocol

// Namespaces.
const (
	NamespaceIsland = "island"
)

// Server to client events.
const (
	EventReceiveFriendRequest = "receiveFriendRequest"
	EventIslandInfoUpdated    = "islandInfoUpdated"
	EventMessageSent          = "messageSent"
	EventReceiveMessage       = "receiveMessage"
	EventPlayerJoin           = "playerJoin"
	EventPlayerLeft           = "playerLeft"
	EventJoinedIsland         = "joinedIsland"
	EventPlayerMoved          = "playerMoved"
)

// Client to server events.
const (
	EventSendMessage       = "sendMessage"
	EventJoinIsland        = "joinIsland"
	EventLeaveIsland       = "leaveIsland"
	EventMove              = "move"
	EventSendFriendRequest = "sendFriendRequest"
)

// UserInfo is the public profile of a player as the server describes it.
type UserInfo struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	AvatarKey string `json:"avatarKey"`
}

type IslandInfoUpdated struct {
	IslandID string `json:"islandId"`
}

type MessageSent struct {
	MessageID string `json:"messageId"`
	Message   string `json:"message"`
}

type ReceiveMessage struct {
	SenderID string `json:"senderId"`
	Message  string `json:"message"`
}

type SendMessage struct {
	Message string `json:"message"`
}

type PlayerJoin struct {
	UserInfo
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PlayerLeft struct {
	ID string `json:"id"`
}

// JoinedIsland is the roster handed to a player right after joining.
type JoinedIsland struct {
	IslandID string       `json:"islandId"`
	Players  []PlayerJoin `json:"players"`
}

type PlayerMoved struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type JoinIsland struct {
	IslandID string   `json:"islandId"`
	Profile  UserInfo `json:"profile"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
}

type LeaveIsland struct {
	IslandID string `json:"islandId"`
}

type Move struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type SendFriendRequest struct {
	TargetID string `json:"targetId"`
}
