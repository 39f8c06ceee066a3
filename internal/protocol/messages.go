package protocol

// Message types: Server → Client
const (
	MsgGameState = "game_state"
	MsgGameOver  = "game_over"
	MsgError     = "error"
)

// Message types: Client → Server
const (
	MsgChoose  = "choose"
	MsgNewGame = "new_game"
)

// ChooseMsg asks to turn over one card.
type ChooseMsg struct {
	CardID int `json:"card_id"`
}

// ErrorMsg is sent to a client on error.
type ErrorMsg struct {
	Message string `json:"message"`
}
